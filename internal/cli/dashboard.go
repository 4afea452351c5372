package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/goldcare-ai/goldctl/internal/api"
	"github.com/goldcare-ai/goldctl/internal/view"
)

// The dashboard runs two independent poll loops: the job list and the queue
// status, each on its own interval, never serialized with each other.
type (
	dashJobsTickMsg  time.Time
	dashQueueTickMsg time.Time

	dashJobsMsg struct {
		jobs []api.Job
		err  error
	}
	dashQueueMsg struct {
		status *api.JobQueueStatus
		err    error
	}
)

var statusCycle = []string{"", api.StatusPending, api.StatusProcessing, api.StatusCompleted, api.StatusFailed}
var typeCycle = []string{"", "book", "article", "context"}

type dashboardModel struct {
	client *api.Client
	theme  Theme

	jobs  []api.Job
	queue *api.JobQueueStatus

	filter    view.JobFilter
	statusIdx int
	typeIdx   int
	search    textinput.Model
	searching bool

	// per-loop in-flight guards; a slow fetch swallows its own ticks
	fetchingJobs  bool
	fetchingQueue bool
	jobsErr       error
	queueErr      error
	loaded        bool
	quitting      bool

	jobsInterval  time.Duration
	queueInterval time.Duration
}

func newDashboardModel(c *api.Client, jobsInterval, queueInterval time.Duration) dashboardModel {
	search := textinput.New()
	search.Placeholder = "title, author, or job id"
	search.CharLimit = 64

	return dashboardModel{
		client:        c,
		theme:         defaultTheme,
		search:        search,
		jobsInterval:  jobsInterval,
		queueInterval: queueInterval,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchJobs(), m.fetchQueue())
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case dashJobsTickMsg:
		if m.fetchingJobs {
			return m, nil
		}
		m.fetchingJobs = true
		return m, m.fetchJobs()

	case dashQueueTickMsg:
		if m.fetchingQueue {
			return m, nil
		}
		m.fetchingQueue = true
		return m, m.fetchQueue()

	case dashJobsMsg:
		m.fetchingJobs = false
		m.loaded = true
		if msg.err != nil {
			m.jobsErr = msg.err
		} else {
			m.jobsErr = nil
			m.jobs = msg.jobs
		}
		return m, m.jobsTick()

	case dashQueueMsg:
		m.fetchingQueue = false
		if msg.err != nil {
			m.queueErr = msg.err
		} else {
			m.queueErr = nil
			m.queue = msg.status
		}
		return m, m.queueTick()
	}

	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.filter.Search = m.search.Value()
		return m, cmd
	}
	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.filter.Search = m.search.Value()
			return m, cmd
		}
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "r":
		var cmds []tea.Cmd
		if !m.fetchingJobs {
			m.fetchingJobs = true
			cmds = append(cmds, m.fetchJobs())
		}
		if !m.fetchingQueue {
			m.fetchingQueue = true
			cmds = append(cmds, m.fetchQueue())
		}
		return m, tea.Batch(cmds...)
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "s":
		m.statusIdx = (m.statusIdx + 1) % len(statusCycle)
		m.filter.Status = statusCycle[m.statusIdx]
		return m, nil
	case "t":
		m.typeIdx = (m.typeIdx + 1) % len(typeCycle)
		m.filter.Type = typeCycle[m.typeIdx]
		return m, nil
	}
	return m, nil
}

func (m dashboardModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m dashboardModel) renderContent() string {
	var b strings.Builder

	b.WriteString(m.theme.accentStyle().Render("Ingestion Jobs") + "\n\n")

	// Queue line
	switch {
	case m.queueErr != nil:
		b.WriteString(m.theme.errorStyle().Render(fmt.Sprintf("queue: %s", renderError(m.queueErr))) + "\n")
	case m.queue == nil:
		b.WriteString(m.theme.hintStyle().Render("queue: loading...") + "\n")
	case m.queue.IsProcessing:
		b.WriteString(m.theme.statusStyle().Render(fmt.Sprintf("queue: active, %d queued", m.queue.QueueLength)) + "\n")
	default:
		b.WriteString(fmt.Sprintf("queue: idle, %d queued\n", m.queue.QueueLength))
	}

	// Counts line
	counts := view.Count(m.jobs)
	countLine := fmt.Sprintf("total %d | pending %d | processing %d | completed %d | failed %d",
		counts.Total, counts.Pending, counts.Processing, counts.Completed, counts.Failed)
	if counts.Unknown > 0 {
		countLine += fmt.Sprintf(" | unknown %d", counts.Unknown)
	}
	b.WriteString(countLine + "\n\n")

	// Filter line
	filters := []string{}
	if m.filter.Status != "" {
		filters = append(filters, "status="+m.filter.Status)
	}
	if m.filter.Type != "" {
		filters = append(filters, "type="+m.filter.Type)
	}
	if m.searching {
		b.WriteString("search: " + m.search.View() + "\n")
	} else if m.filter.Search != "" {
		filters = append(filters, "search="+m.filter.Search)
	}
	if len(filters) > 0 {
		b.WriteString(m.theme.hintStyle().Render("filters: "+strings.Join(filters, " ")) + "\n")
	}

	if m.jobsErr != nil {
		b.WriteString(m.theme.errorStyle().Render(renderError(m.jobsErr)) + "\n")
	}

	// Job rows
	filtered := m.filter.Apply(m.jobs)
	switch {
	case !m.loaded:
		b.WriteString(m.theme.hintStyle().Render("loading jobs...") + "\n")
	case len(filtered) == 0 && len(m.jobs) == 0:
		b.WriteString("no jobs\n")
	case len(filtered) == 0:
		b.WriteString("no jobs match the filters\n")
	default:
		limit := min(len(filtered), 15)
		for _, job := range filtered[:limit] {
			b.WriteString(m.renderJobRow(job) + "\n")
		}
		if len(filtered) > limit {
			b.WriteString(m.theme.hintStyle().Render(fmt.Sprintf("... %d more", len(filtered)-limit)) + "\n")
		}
	}

	b.WriteString("\n" + m.theme.hintStyle().Render("q quit · r refresh · / search · s status · t type"))
	return b.String()
}

func (m dashboardModel) renderJobRow(job api.Job) string {
	var status string
	switch job.Status {
	case api.StatusCompleted:
		status = m.theme.completedStyle().Render("completed ")
	case api.StatusFailed:
		status = m.theme.errorStyle().Render("failed    ")
	default:
		status = m.theme.statusStyle().Render(fmt.Sprintf("%-10s", job.Status))
	}
	title := job.Title
	if title == "" {
		title = "-"
	}
	if len(title) > 36 {
		title = title[:33] + "..."
	}
	return fmt.Sprintf("%-26s %-8s %s %s", job.JobID, job.Type, status, title)
}

func (m dashboardModel) fetchJobs() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		jobs, err := m.client.ListJobs(ctx)
		return dashJobsMsg{jobs: jobs, err: err}
	}
}

func (m dashboardModel) fetchQueue() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		status, err := m.client.QueueStatus(ctx)
		return dashQueueMsg{status: status, err: err}
	}
}

func (m dashboardModel) jobsTick() tea.Cmd {
	return tea.Tick(m.jobsInterval, func(t time.Time) tea.Msg {
		return dashJobsTickMsg(t)
	})
}

func (m dashboardModel) queueTick() tea.Cmd {
	return tea.Tick(m.queueInterval, func(t time.Time) tea.Msg {
		return dashQueueTickMsg(t)
	})
}

// runJobsDashboard runs the live jobs dashboard.
func runJobsDashboard(ctx context.Context) error {
	model := newDashboardModel(apiClient, cfg.JobsPollInterval, cfg.QueuePollInterval)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard UI error: %w", err)
	}
	return nil
}
