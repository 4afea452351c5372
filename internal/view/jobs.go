package view

import (
	"strings"

	"github.com/goldcare-ai/goldctl/internal/api"
)

// Counts is the per-status tally for a job list. Statuses outside the known
// set land in Unknown rather than silently inflating a wrong bucket.
type Counts struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Unknown    int
	Total      int
}

// Count tallies job statuses in a single pass.
func Count(jobs []api.Job) Counts {
	var c Counts
	for _, job := range jobs {
		switch job.Status {
		case api.StatusPending:
			c.Pending++
		case api.StatusProcessing:
			c.Processing++
		case api.StatusCompleted:
			c.Completed++
		case api.StatusFailed:
			c.Failed++
		default:
			c.Unknown++
		}
		c.Total++
	}
	return c
}

// Active reports whether a job still needs polling: only pending and
// processing jobs do. Unknown statuses are not treated as active.
func Active(job api.Job) bool {
	return job.Status == api.StatusPending || job.Status == api.StatusProcessing
}

// AnyActive reports whether a list view should keep polling: true iff any
// job in the list is non-terminal.
func AnyActive(jobs []api.Job) bool {
	for _, job := range jobs {
		if Active(job) {
			return true
		}
	}
	return false
}

// JobFilter narrows an in-memory job list. All fields are optional; an empty
// field matches everything.
type JobFilter struct {
	// Search is a case-insensitive substring matched against title, author,
	// and job id.
	Search string
	// Status and Type are exact matches.
	Status string
	Type   string
}

// Matches reports whether the job passes all set filters (AND-combined).
func (f JobFilter) Matches(job api.Job) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(job.Title), needle) &&
			!strings.Contains(strings.ToLower(job.Author), needle) &&
			!strings.Contains(strings.ToLower(job.JobID), needle) {
			return false
		}
	}
	if f.Status != "" && job.Status != f.Status {
		return false
	}
	if f.Type != "" && job.Type != f.Type {
		return false
	}
	return true
}

// Apply returns the jobs passing the filter, preserving order.
func (f JobFilter) Apply(jobs []api.Job) []api.Job {
	filtered := make([]api.Job, 0, len(jobs))
	for _, job := range jobs {
		if f.Matches(job) {
			filtered = append(filtered, job)
		}
	}
	return filtered
}
