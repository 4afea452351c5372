package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goldcare-ai/goldctl/internal/api"
)

var (
	ingestFile   string
	ingestFollow bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <book|article|context|domain> -f payload.yaml",
	Short: "Submit a source for asynchronous ingestion",
	Long: `Submit an entity payload to the matching ingest route. The backend
queues an ingestion job and returns its id; use --follow to poll it to
completion, or 'goldctl jobs <job-id>' later.

The payload file may be YAML or JSON. Required fields are checked locally
before anything is sent.

Examples:
  goldctl ingest book -f book.yaml
  goldctl ingest article -f article.json --follow
  goldctl ingest domain -f foundations.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "payload file (YAML or JSON)")
	ingestCmd.Flags().BoolVar(&ingestFollow, "follow", false, "watch the ingestion job until it finishes")
	_ = ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}

// sourceKind maps the CLI argument to the backend route segment.
func sourceKind(arg string) (api.SourceKind, error) {
	switch arg {
	case "book":
		return api.KindBook, nil
	case "article":
		return api.KindArticle, nil
	case "context":
		return api.KindContext, nil
	case "domain", "moral-domain":
		return api.KindMoralDomain, nil
	}
	return "", fmt.Errorf("unknown kind %q (want book, article, context, or domain)", arg)
}

// requiredFields lists the client-side mandatory payload fields per kind,
// checked before any request is sent.
func requiredFields(kind api.SourceKind) []string {
	switch kind {
	case api.KindBook, api.KindArticle:
		return []string{"sourceId", "title", "author", "domain_ref"}
	case api.KindContext:
		return []string{"sourceId", "title", "domain_ref"}
	case api.KindMoralDomain:
		return []string{"domain", "priority"}
	}
	return nil
}

func loadPayload(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload file: %w", err)
	}
	var payload map[string]any
	// YAML is a superset of JSON, so one parser covers both.
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse payload file: %w", err)
	}
	return payload, nil
}

// validatePayload rejects payloads missing required fields, reported all at
// once so the operator fixes the file in one pass.
func validatePayload(kind api.SourceKind, payload map[string]any) error {
	var missing []string
	for _, field := range requiredFields(kind) {
		value, ok := payload[field]
		if !ok || value == nil {
			missing = append(missing, field)
			continue
		}
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				missing = append(missing, field)
			}
		case []any:
			if len(v) == 0 {
				missing = append(missing, field)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("payload is missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	kind, err := sourceKind(args[0])
	if err != nil {
		return err
	}
	payload, err := loadPayload(ingestFile)
	if err != nil {
		return err
	}
	if err := validatePayload(kind, payload); err != nil {
		return err
	}

	ack, err := apiClient.Ingest(ctx, kind, payload)
	if err != nil {
		return ingestError(err)
	}

	fmt.Printf("Accepted: job %s (%s)\n", ack.JobID, ack.Status)
	if ack.EstimatedProcessingTime != "" {
		fmt.Printf("Estimated processing time: %s\n", ack.EstimatedProcessingTime)
	}

	if ingestFollow {
		return followIngestJob(ctx, ack.JobID)
	}
	fmt.Printf("Use 'goldctl jobs %s' to check status.\n", ack.JobID)
	return nil
}

// ingestError renders backend rejections; "already exists" conflicts echo
// the existing record as a pre-fill hint.
func ingestError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && (apiErr.Conflict() || strings.Contains(apiErr.Message, "already exists")) {
		msg := fmt.Sprintf("source already exists: %s", apiErr.Message)
		if len(apiErr.Existing) > 0 {
			var pretty map[string]any
			if json.Unmarshal(apiErr.Existing, &pretty) == nil {
				if title, ok := pretty["title"].(string); ok && title != "" {
					msg += fmt.Sprintf("\nExisting record: %s", title)
				}
			}
		}
		return errors.New(msg)
	}
	return fmt.Errorf("ingest: %s", renderError(err))
}

func followIngestJob(ctx context.Context, jobID string) error {
	job, err := apiClient.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %s", renderError(err))
	}
	if job.Terminal() {
		printJobDetail(job)
		return nil
	}
	if isInteractive() {
		return runJobWatch(apiClient, job, cfg.JobPollInterval)
	}
	return watchJob(ctx, jobID)
}
