package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goldcare-ai/goldctl/internal/api"
	"github.com/goldcare-ai/goldctl/internal/poller"
)

var queueWatch bool

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the ingestion queue status",
	Long: `Show whether the backend is currently processing and how many jobs
are queued. With --watch, keeps polling until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runQueue,
}

func init() {
	queueCmd.Flags().BoolVarP(&queueWatch, "watch", "w", false, "keep polling the queue status")
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !queueWatch {
		status, err := apiClient.QueueStatus(ctx)
		if err != nil {
			return fmt.Errorf("queue status: %s", renderError(err))
		}
		printQueueStatus(status)
		return nil
	}

	// Watch mode runs until interrupted; the queue is a global aggregate
	// with no terminal state, so no continuation predicate applies.
	p := poller.New(cfg.QueuePollInterval,
		func(ctx context.Context) (*api.JobQueueStatus, error) {
			return apiClient.QueueStatus(ctx)
		},
		nil,
	).OnResult(func(status *api.JobQueueStatus) {
		fmt.Printf("[%s] ", time.Now().Format("15:04:05"))
		printQueueStatus(status)
	}).OnError(func(err error) {
		fmt.Printf("poll failed: %s\n", renderError(err))
	})

	p.Start(ctx)
	defer p.Stop()

	<-ctx.Done()
	return nil
}

func printQueueStatus(status *api.JobQueueStatus) {
	state := "idle"
	if status.IsProcessing {
		state = "processing"
	}
	fmt.Printf("%s, %d job(s) queued\n", state, status.QueueLength)
}
