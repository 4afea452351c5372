package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goldcare-ai/goldctl/internal/api"
)

var prefillCmd = &cobra.Command{
	Use:   "prefill <source-id>",
	Short: "Fetch the last stored chunk for a source id",
	Long: `Fetch the most recent chunk recorded for a source id, as a starting
point for an ingest payload. An unknown id is not an error — it just means
the id is new.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		chunk, err := apiClient.LastChunkForSource(ctx, args[0])
		if err != nil {
			if api.IsNotFound(err) {
				// Informational, not a failure: nothing stored yet under
				// this id.
				fmt.Printf("New id: no data stored for %q yet. Fill in the payload manually.\n", args[0])
				return nil
			}
			return fmt.Errorf("fetch source data: %s", renderError(err))
		}

		// Emit a YAML skeleton the operator can edit and feed to ingest.
		// Chapter and content are intentionally left for the new submission.
		payload := map[string]any{
			"sourceId":         chunk.SourceID,
			"title":            firstNonEmpty(chunk.Title, chunk.SourceName),
			"author":           chunk.Author,
			"tier":             chunk.Tier,
			"isbn":             chunk.ISBN,
			"publication_date": chunk.PublicationDate,
			"tags":             chunk.Tags,
			"domain_ref":       chunk.DomainRefs,
			"content":          "",
			"chapter":          "",
		}
		out, err := yaml.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prefillCmd)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
