package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/goldcare-ai/goldctl/internal/api"
)

// watchTickMsg triggers polling the job status.
type watchTickMsg time.Time

// watchJobMsg carries the updated job data.
type watchJobMsg struct {
	job *api.Job
	err error
}

// watchModel is the bubbletea model for following a single job to its
// terminal status.
type watchModel struct {
	client   *api.Client
	jobID    string
	job      *api.Job
	interval time.Duration
	spin     spinner.Model
	theme    Theme

	// fetching suppresses ticks while a fetch is in flight, so a slow
	// backend never causes overlapping requests.
	fetching bool
	pollErr  error
	done     bool
	quitting bool
	err      error
}

func newWatchModel(c *api.Client, job *api.Job, interval time.Duration) watchModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return watchModel{
		client:   c,
		jobID:    job.JobID,
		job:      job,
		interval: interval,
		spin:     spin,
		theme:    defaultTheme,
	}
}

// Init starts the spinner and the first poll.
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.fetchJob(), m.spin.Tick)
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case watchTickMsg:
		if m.fetching {
			return m, nil
		}
		m.fetching = true
		return m, m.fetchJob()

	case watchJobMsg:
		m.fetching = false
		if msg.err != nil {
			// Transient failures are shown but never stop the poll loop.
			m.pollErr = msg.err
			return m, m.tick()
		}
		m.pollErr = nil
		m.job = msg.job

		switch m.job.Status {
		case api.StatusCompleted:
			m.done = true
			return m, tea.Quit
		case api.StatusFailed:
			m.done = true
			if m.job.Error != "" {
				m.err = fmt.Errorf("%s", m.job.Error)
			} else {
				m.err = fmt.Errorf("job failed with unknown error")
			}
			return m, tea.Quit
		}
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the watch display.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m watchModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	if m.job == nil {
		return "Loading job status...\n"
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))
	label := m.job.Title
	if label == "" {
		label = m.jobID
	}
	elapsed := ""
	if m.job.StartedAt != nil {
		elapsed = fmt.Sprintf(" (%s)", time.Since(*m.job.StartedAt).Round(time.Second))
	}

	line := fmt.Sprintf("%s %s %s%s", m.spin.View(), status, label, elapsed)
	if m.pollErr != nil {
		line += "\n" + m.theme.errorStyle().Render(fmt.Sprintf("poll failed: %s", renderError(m.pollErr)))
	}
	hint := m.theme.hintStyle().Render("Press q to continue in background")
	return fmt.Sprintf("%s\n%s\n", line, hint)
}

func (m watchModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nJob %s continues in background.\nUse 'goldctl jobs %s' to check status.\n",
			m.jobID, m.jobID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Job failed: %s\n", m.err))
	}

	if m.job != nil && m.job.Result != nil {
		r := m.job.Result
		output := m.theme.completedStyle().Render("✓ Completed") + "\n\n"
		output += fmt.Sprintf("  Chunks processed: %d\n", r.ChunksProcessed)
		if r.Book != "" {
			output += fmt.Sprintf("  Book:             %s\n", r.Book)
		}
		if r.Author != "" {
			output += fmt.Sprintf("  Author:           %s\n", r.Author)
		}
		if r.Tier > 0 {
			output += fmt.Sprintf("  Tier:             %d\n", r.Tier)
		}
		if r.ResumedFromSeq > 0 {
			output += fmt.Sprintf("  Resumed from seq: %d\n", r.ResumedFromSeq)
		}
		return output
	}

	return m.theme.completedStyle().Render("✓ Completed\n")
}

// fetchJob fetches the current job status from the backend.
// Runs as a command to avoid blocking Update().
func (m watchModel) fetchJob() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		job, err := m.client.GetJob(ctx, m.jobID)
		return watchJobMsg{job: job, err: err}
	}
}

// tick schedules the next poll. It is issued only after the previous fetch
// settles, so the interval never stacks requests.
func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

// runJobWatch runs the interactive watch UI for a job.
// Returns nil on success or q (background), error on job failure.
func runJobWatch(c *api.Client, job *api.Job, interval time.Duration) error {
	model := newWatchModel(c, job, interval)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("watch UI error: %w", err)
	}

	if m, ok := finalModel.(watchModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}
	return nil
}
