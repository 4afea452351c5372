package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goldcare-ai/goldctl/internal/api"
	"github.com/goldcare-ai/goldctl/internal/poller"
	"github.com/goldcare-ai/goldctl/internal/view"
)

var (
	jobsSearch string
	jobsStatus string
	jobsType   string
	jobsWatch  bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [job-id]",
	Short: "List or inspect ingestion jobs",
	Long: `List all ingestion jobs or inspect a specific job by ID.

Examples:
  goldctl jobs                     # List all jobs with status counts
  goldctl jobs --status processing # Only processing jobs
  goldctl jobs --watch             # Live dashboard, polls until quit
  goldctl jobs abc123              # Show details for job abc123
  goldctl jobs abc123 --watch      # Poll abc123 until it finishes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().StringVar(&jobsSearch, "search", "", "substring match on title, author, or job id")
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "filter by status (pending|processing|completed|failed)")
	jobsCmd.Flags().StringVar(&jobsType, "type", "", "filter by type (book|article|context)")
	jobsCmd.Flags().BoolVarP(&jobsWatch, "watch", "w", false, "keep polling while jobs are active")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(args) == 1 {
		if jobsWatch {
			return watchJob(ctx, args[0])
		}
		return showJob(ctx, args[0])
	}

	if jobsWatch {
		if isInteractive() {
			return runJobsDashboard(ctx)
		}
		return followJobs(ctx)
	}
	return listJobs(ctx)
}

func listJobs(ctx context.Context) error {
	jobs, err := apiClient.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("list jobs: %s", renderError(err))
	}
	printJobList(jobs)
	return nil
}

// followJobs polls the job list on a plain (non-TTY) stream, printing a
// snapshot per poll, and stops once every job is terminal.
func followJobs(ctx context.Context) error {
	p := poller.New(cfg.JobsPollInterval,
		func(ctx context.Context) ([]api.Job, error) {
			return apiClient.ListJobs(ctx)
		},
		view.AnyActive,
	).OnResult(func(jobs []api.Job) {
		printJobList(jobs)
		fmt.Println()
	}).OnError(func(err error) {
		fmt.Printf("poll failed: %s\n", renderError(err))
	})

	p.Start(ctx)
	defer p.Stop()

	for p.State() != poller.Stopped {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil
}

func printJobList(jobs []api.Job) {
	counts := view.Count(jobs)
	fmt.Printf("Total: %d  Pending: %d  Processing: %d  Completed: %d  Failed: %d\n",
		counts.Total, counts.Pending, counts.Processing, counts.Completed, counts.Failed)
	if counts.Unknown > 0 {
		fmt.Printf("(%d jobs reported an unrecognized status)\n", counts.Unknown)
	}
	fmt.Println()

	filter := view.JobFilter{Search: jobsSearch, Status: jobsStatus, Type: jobsType}
	filtered := filter.Apply(jobs)

	if len(filtered) == 0 {
		if len(jobs) == 0 {
			fmt.Println("No jobs found")
		} else {
			fmt.Println("No jobs match your filters")
		}
		return
	}

	fmt.Printf("%-26s %-8s %-12s %-20s %s\n", "ID", "TYPE", "STATUS", "TITLE", "CREATED")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, job := range filtered {
		title := job.Title
		if len(title) > 20 {
			title = title[:17] + "..."
		}
		fmt.Printf("%-26s %-8s %-12s %-20s %s\n",
			job.JobID, job.Type, job.Status, title, job.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func showJob(ctx context.Context, id string) error {
	job, err := apiClient.GetJob(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("job not found: %s", id)
		}
		return fmt.Errorf("get job: %s", renderError(err))
	}
	printJobDetail(job)
	return nil
}

func printJobDetail(job *api.Job) {
	fmt.Printf("Job: %s\n", job.JobID)
	fmt.Printf("  Type: %s\n", job.Type)
	fmt.Printf("  Status: %s\n", job.Status)
	if job.Title != "" {
		fmt.Printf("  Title: %s\n", job.Title)
	}
	if job.Author != "" {
		fmt.Printf("  Author: %s\n", job.Author)
	}
	fmt.Printf("  Created: %s\n", job.CreatedAt.Format(time.RFC3339))
	if job.StartedAt != nil {
		fmt.Printf("  Started: %s\n", job.StartedAt.Format(time.RFC3339))
	}
	if job.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", job.CompletedAt.Format(time.RFC3339))
		if job.StartedAt != nil {
			fmt.Printf("  Duration: %s\n", job.CompletedAt.Sub(*job.StartedAt).Round(time.Second))
		}
	}
	if job.Error != "" {
		fmt.Printf("  Error: %s\n", job.Error)
	}
	if job.Result != nil {
		fmt.Println("\nResult:")
		fmt.Printf("  Success: %t\n", job.Result.Success)
		fmt.Printf("  Chunks processed: %d\n", job.Result.ChunksProcessed)
		if job.Result.Book != "" {
			fmt.Printf("  Book: %s\n", job.Result.Book)
		}
		if job.Result.Author != "" {
			fmt.Printf("  Author: %s\n", job.Result.Author)
		}
		if job.Result.Tier > 0 {
			fmt.Printf("  Tier: %d\n", job.Result.Tier)
		}
		if job.Result.ResumedFromSeq > 0 {
			fmt.Printf("  Resumed from seq: %d\n", job.Result.ResumedFromSeq)
		}
		if job.Result.SourceIDPrefix != "" {
			fmt.Printf("  Source id prefix: %s\n", job.Result.SourceIDPrefix)
		}
	}
}

// watchJob polls a single job until it reaches a terminal status: a TUI on a
// terminal, a plain poll loop otherwise.
func watchJob(ctx context.Context, id string) error {
	job, err := apiClient.GetJob(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("job not found: %s", id)
		}
		return fmt.Errorf("get job: %s", renderError(err))
	}
	if job.Terminal() {
		printJobDetail(job)
		return nil
	}

	if isInteractive() {
		return runJobWatch(apiClient, job, cfg.JobPollInterval)
	}

	var last *api.Job
	p := poller.New(cfg.JobPollInterval,
		func(ctx context.Context) (*api.Job, error) {
			return apiClient.GetJob(ctx, id)
		},
		func(j *api.Job) bool { return view.Active(*j) },
	).OnResult(func(j *api.Job) {
		last = j
		fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), j.Status)
	}).OnError(func(err error) {
		fmt.Printf("poll failed: %s\n", renderError(err))
	})

	p.Start(ctx)
	defer p.Stop()
	for p.State() != poller.Stopped {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	if last != nil {
		fmt.Println()
		printJobDetail(last)
		if last.Status == api.StatusFailed {
			return fmt.Errorf("job failed: %s", last.Error)
		}
	}
	return nil
}
