package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	updateFile   string
	updateSets   []string
	updateFollow bool
)

var updateCmd = &cobra.Command{
	Use:   "update <book|article|context|domain> <id>",
	Short: "Partially update a stored source",
	Long: `Issue a partial update against a stored record. The backend may
reprocess the record asynchronously (re-chunking, re-embedding), so the
stored row only reflects the change once that job completes — always re-read
from the server instead of trusting the submitted fields.

Fields come from a YAML/JSON file (-f) and/or repeated --set key=value flags;
--set wins on conflicts.

Examples:
  goldctl update book 64f1c2... -f patch.yaml
  goldctl update article 64f1c2... --set title="New title" --set tier=2`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updateFile, "file", "f", "", "patch file (YAML or JSON)")
	updateCmd.Flags().StringArrayVar(&updateSets, "set", nil, "field override, key=value (repeatable)")
	updateCmd.Flags().BoolVar(&updateFollow, "follow", false, "watch the reprocessing job until it finishes")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	kind, err := sourceKind(args[0])
	if err != nil {
		return err
	}
	id := args[1]

	fields := map[string]any{}
	if updateFile != "" {
		fields, err = loadPayload(updateFile)
		if err != nil {
			return err
		}
	}
	for _, set := range updateSets {
		key, value, found := strings.Cut(set, "=")
		if !found || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid --set %q (want key=value)", set)
		}
		fields[strings.TrimSpace(key)] = value
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to update: pass -f or --set")
	}

	ack, err := apiClient.Update(ctx, kind, id, fields)
	if err != nil {
		return fmt.Errorf("update: %s", renderError(err))
	}

	if ack.JobID != "" {
		fmt.Printf("Accepted: job %s (%s)\n", ack.JobID, ack.Status)
		if updateFollow {
			return followIngestJob(ctx, ack.JobID)
		}
		fmt.Printf("The record is being reprocessed; use 'goldctl jobs %s' to check status.\n", ack.JobID)
	} else {
		fmt.Println("Update accepted.")
	}
	return nil
}
