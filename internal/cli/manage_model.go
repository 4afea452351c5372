package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/goldcare-ai/goldctl/internal/api"
	"github.com/goldcare-ai/goldctl/internal/table"
	"github.com/goldcare-ai/goldctl/internal/view"
)

type manageMode int

const (
	manageNormal manageMode = iota
	// manageFilter edits the prefix filter text.
	manageFilter
	// manageStage edits a row title locally, without persisting.
	manageStage
	// manageEdit edits a row title via PATCH-then-reload.
	manageEdit
	// manageConfirm awaits y/n for a pending delete.
	manageConfirm
)

type (
	manageLoadedMsg struct{ err error }
	manageDeleteMsg struct {
		id  string
		err error
	}
	manageSaveMsg struct {
		jobID string
		err   error
	}
)

// manageModel is the interactive source browser. It owns the confirmation
// step itself, so the underlying store is constructed with auto-approval:
// the y/n footer here is the Confirmer adapter for this view.
type manageModel struct {
	ctx   context.Context
	store *table.Store
	theme Theme

	cursor  int
	mode    manageMode
	input   textinput.Model
	pending string // chunk id awaiting delete confirmation

	loading bool
	status  string
}

func newManageModel(ctx context.Context, store *table.Store) manageModel {
	input := textinput.New()
	input.CharLimit = 128

	return manageModel{
		ctx:     ctx,
		store:   store,
		theme:   defaultTheme,
		input:   input,
		loading: true,
	}
}

func (m manageModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m manageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case manageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = renderError(msg.err)
		} else {
			m.status = ""
		}
		m.clampCursor()
		return m, nil

	case manageDeleteMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("delete failed: %s", renderError(msg.err))
		} else {
			m.status = fmt.Sprintf("deleted %s", msg.id)
		}
		m.clampCursor()
		return m, nil

	case manageSaveMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("update failed: %s", renderError(msg.err))
		} else if msg.jobID != "" {
			m.status = fmt.Sprintf("update accepted, reprocessing job %s", msg.jobID)
		} else {
			m.status = "update accepted"
		}
		m.clampCursor()
		return m, nil
	}
	return m, nil
}

func (m manageModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case manageFilter, manageStage, manageEdit:
		return m.handleInputKey(msg)
	case manageConfirm:
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "j", "down":
		m.cursor++
		m.clampCursor()
		return m, nil
	case "k", "up":
		m.cursor--
		m.clampCursor()
		return m, nil
	case "n", "right":
		m.loading = true
		return m, m.pageCmd(m.store.NextPage)
	case "p", "left":
		m.loading = true
		return m, m.pageCmd(m.store.PrevPage)
	case "g":
		m.loading = true
		return m, m.gotoCmd(1)
	case "G":
		m.loading = true
		return m, m.gotoCmd(m.store.Pager().TotalPages)
	case "r":
		m.loading = true
		return m, m.loadCmd()
	case "f":
		m.mode = manageFilter
		m.input.Placeholder = "source-id prefixes, comma separated"
		m.input.SetValue(strings.Join(m.store.Criteria().SourceIDPrefixes, ", "))
		return m, m.input.Focus()
	case "d":
		if row, ok := m.selectedRow(); ok {
			if m.store.Deleting(row.Additional.ID) {
				m.status = "delete already in progress for this row"
				return m, nil
			}
			m.pending = row.Additional.ID
			m.mode = manageConfirm
		}
		return m, nil
	case "s":
		if row, ok := m.selectedRow(); ok {
			m.mode = manageStage
			m.input.Placeholder = "new title (staged locally)"
			m.input.SetValue(row.Title)
			return m, m.input.Focus()
		}
		return m, nil
	case "e":
		if row, ok := m.selectedRow(); ok {
			m.mode = manageEdit
			m.input.Placeholder = "new title (saved to server)"
			m.input.SetValue(row.Title)
			return m, m.input.Focus()
		}
		return m, nil
	}
	return m, nil
}

func (m manageModel) handleInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = manageNormal
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = manageNormal
		m.input.Blur()

		switch mode {
		case manageFilter:
			criteria := m.store.Criteria()
			criteria.SourceIDPrefixes = view.ParsePrefixes(value)
			m.store.SetCriteria(criteria)
			m.cursor = 0
			m.loading = true
			return m, m.loadCmd()

		case manageStage:
			if value == "" {
				return m, nil
			}
			// Local-only draft: nothing is sent to the backend.
			m.store.SaveLocal(api.Chunk{Title: value}, m.cursor)
			m.status = "title staged locally (not synced)"
			return m, nil

		case manageEdit:
			row, ok := m.selectedRow()
			if !ok || value == "" {
				return m, nil
			}
			kind, err := chunkKind(row.Type)
			if err != nil {
				// No PATCH route for this record type; fall back to the
				// local draft path.
				m.store.SaveLocal(api.Chunk{Title: value}, m.cursor)
				m.status = "no update route for this type; staged locally"
				return m, nil
			}
			m.loading = true
			return m, m.saveCmd(kind, row.Additional.ID, value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m manageModel) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	id := m.pending
	m.pending = ""
	m.mode = manageNormal

	if msg.String() == "y" {
		return m, m.deleteCmd(id)
	}
	m.status = "delete cancelled"
	return m, nil
}

func chunkKind(recordType string) (api.SourceKind, error) {
	switch recordType {
	case "book":
		return api.KindBook, nil
	case "article":
		return api.KindArticle, nil
	case "context":
		return api.KindContext, nil
	}
	return "", fmt.Errorf("unknown record type %q", recordType)
}

func (m *manageModel) selectedRow() (api.Chunk, bool) {
	rows := m.store.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return api.Chunk{}, false
	}
	return rows[m.cursor], true
}

func (m *manageModel) clampCursor() {
	rows := m.store.Rows()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m manageModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return manageLoadedMsg{err: m.store.Load(m.ctx)}
	}
}

func (m manageModel) pageCmd(move func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return manageLoadedMsg{err: move(m.ctx)}
	}
}

func (m manageModel) gotoCmd(page int) tea.Cmd {
	return func() tea.Msg {
		return manageLoadedMsg{err: m.store.GoToPage(m.ctx, page)}
	}
}

func (m manageModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.store.Delete(m.ctx, id)
		if errors.Is(err, table.ErrDeclined) {
			err = nil
		}
		return manageDeleteMsg{id: id, err: err}
	}
}

func (m manageModel) saveCmd(kind api.SourceKind, id, title string) tea.Cmd {
	return func() tea.Msg {
		ack, err := m.store.SaveRemote(m.ctx, kind, id, map[string]any{"title": title})
		var jobID string
		if ack != nil {
			jobID = ack.JobID
		}
		return manageSaveMsg{jobID: jobID, err: err}
	}
}

func (m manageModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m manageModel) renderContent() string {
	var b strings.Builder
	b.WriteString(m.theme.accentStyle().Render("Stored Sources") + "\n\n")

	criteria := m.store.Criteria()
	filterLine := fmt.Sprintf("types: %s | tiers: %s",
		strings.Join(criteria.Types, ","), joinInts(criteria.Tiers))
	if len(criteria.SourceIDPrefixes) > 0 {
		filterLine += " | prefixes: " + strings.Join(criteria.SourceIDPrefixes, ",")
	}
	b.WriteString(m.theme.hintStyle().Render(filterLine) + "\n\n")

	rows := m.store.Rows()
	switch {
	case m.loading && len(rows) == 0:
		b.WriteString("loading...\n")
	case len(rows) == 0:
		b.WriteString("no records match the filters\n")
	default:
		for i, row := range rows {
			marker := "  "
			if i == m.cursor {
				marker = m.theme.accentStyle().Render("> ")
			}
			title := row.Title
			if len(title) > 34 {
				title = title[:31] + "..."
			}
			line := fmt.Sprintf("%s%-16s %-7s %-34s t%d", marker, row.SourceID, row.Type, title, row.Tier)
			if m.store.Deleting(row.Additional.ID) {
				line += m.theme.errorStyle().Render("  deleting...")
			}
			b.WriteString(line + "\n")
		}
	}

	pager := m.store.Pager()
	b.WriteString(fmt.Sprintf("\n%s  (%d items)\n", renderPageWindow(pager), pager.TotalItems))

	switch m.mode {
	case manageFilter:
		b.WriteString("\nprefixes: " + m.input.View() + "\n")
	case manageStage, manageEdit:
		b.WriteString("\ntitle: " + m.input.View() + "\n")
	case manageConfirm:
		b.WriteString("\n" + m.theme.errorStyle().Render(
			fmt.Sprintf("Delete record %s? (y/n)", m.pending)) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.theme.statusStyle().Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.theme.hintStyle().Render(
		"q quit · j/k move · n/p page · g/G first/last · f filter · d delete · s stage · e edit · r reload"))
	return b.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}

// runManageBrowser runs the interactive source browser.
func runManageBrowser(ctx context.Context, criteria view.Criteria, pageSize int) error {
	// The browser renders its own y/n confirmation footer, so the store's
	// gate auto-approves.
	store := table.NewStore(apiClient, table.AutoApprove, pageSize, logger)
	store.SetCriteria(criteria)

	model := newManageModel(ctx, store)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("manage UI error: %w", err)
	}
	return nil
}
