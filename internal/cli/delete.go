package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goldcare-ai/goldctl/internal/table"
	"github.com/goldcare-ai/goldctl/internal/view"
)

var deletePrefixes string

var deleteCmd = &cobra.Command{
	Use:   "delete [chunk-id]...",
	Short: "Delete stored source records",
	Long: `Delete stored records by chunk id, or in bulk by source-id prefix.

Bulk deletes run one prefix at a time so the report stays in order; all
prefixes are attempted even if one fails, and a summary is printed at the
end.

Examples:
  goldctl delete 64f1c2abc...              # one record
  goldctl delete --prefix book_004          # everything under a prefix
  goldctl delete --prefix "book_004, art_9" # several prefixes
  goldctl delete --prefix book_004 --yes    # skip the confirmation`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deletePrefixes, "prefix", "", "comma-separated source-id prefixes to delete in bulk")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	prefixes := view.ParsePrefixes(deletePrefixes)
	if len(args) == 0 && len(prefixes) == 0 {
		return fmt.Errorf("nothing to delete: pass chunk ids or --prefix")
	}
	if len(args) > 0 && len(prefixes) > 0 {
		return fmt.Errorf("pass either chunk ids or --prefix, not both")
	}

	store := table.NewStore(apiClient, newConfirmer(), cfg.PageSize, logger)

	if len(prefixes) > 0 {
		// Scope the post-delete reload to the same prefixes, so the summary
		// can say how much survived.
		store.SetCriteria(view.Criteria{SourceIDPrefixes: prefixes})

		result, err := store.DeleteByPrefixes(ctx, prefixes)
		if errors.Is(err, table.ErrDeclined) {
			fmt.Println("Aborted.")
			return nil
		}
		for _, pe := range result.Errors {
			fmt.Printf("prefix %q: %s\n", pe.Prefix, renderError(pe.Err))
		}
		fmt.Printf("Bulk delete finished: %d succeeded, %d failed.\n", result.Succeeded, result.Failed)
		if err != nil {
			return err
		}
		fmt.Printf("%d record(s) still match those prefixes.\n", store.Pager().TotalItems)
		return nil
	}

	var failed int
	for _, id := range args {
		err := store.Delete(ctx, id)
		switch {
		case errors.Is(err, table.ErrDeclined):
			fmt.Printf("Skipped %s.\n", id)
		case err != nil:
			failed++
			fmt.Printf("Failed to delete %s: %s\n", id, renderError(err))
		default:
			fmt.Printf("Deleted %s.\n", id)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d delete(s) failed", failed, len(args))
	}
	return nil
}
