package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goldcare-ai/goldctl/internal/table"
	"github.com/goldcare-ai/goldctl/internal/view"
)

var (
	manageTypes    []string
	manageTiers    []int
	managePrefixes string
	managePage     int
)

var manageCmd = &cobra.Command{
	Use:   "manage",
	Short: "Browse and manage stored sources",
	Long: `Browse the stored source records page by page, filtered by type,
tier, and source-id prefix. On a terminal this opens an interactive browser
with per-row delete and staged edits; otherwise it prints a single page.

Examples:
  goldctl manage
  goldctl manage --types book,article --tiers 1,2
  goldctl manage --prefixes "book_004" --page 3`,
	Args: cobra.NoArgs,
	RunE: runManage,
}

func init() {
	manageCmd.Flags().StringSliceVar(&manageTypes, "types", []string{"book", "article", "context"}, "record types to include")
	manageCmd.Flags().IntSliceVar(&manageTiers, "tiers", []int{1, 2, 3}, "tiers to include")
	manageCmd.Flags().StringVar(&managePrefixes, "prefixes", "", "comma-separated source-id prefixes")
	manageCmd.Flags().IntVar(&managePage, "page", 1, "page to show")
	rootCmd.AddCommand(manageCmd)
}

func runManage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	criteria := view.Criteria{
		Types:            manageTypes,
		Tiers:            manageTiers,
		SourceIDPrefixes: view.ParsePrefixes(managePrefixes),
	}

	if isInteractive() {
		return runManageBrowser(ctx, criteria, cfg.PageSize)
	}

	store := table.NewStore(apiClient, table.AutoApprove, cfg.PageSize, logger)
	store.SetCriteria(criteria)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("%s", renderError(err))
	}
	if managePage > 1 {
		if err := store.GoToPage(ctx, managePage); err != nil {
			return fmt.Errorf("%s", renderError(err))
		}
	}

	printSourcePage(store)
	return nil
}

func printSourcePage(store *table.Store) {
	rows := store.Rows()
	pager := store.Pager()

	if len(rows) == 0 {
		fmt.Println("No records match the filters")
		return
	}

	fmt.Printf("%-16s %-6s %-30s %-20s %-4s %s\n", "SOURCE", "TYPE", "TITLE", "AUTHOR", "TIER", "SEQ")
	fmt.Println("------------------------------------------------------------------------------------")
	for _, row := range rows {
		title := row.Title
		if len(title) > 30 {
			title = title[:27] + "..."
		}
		author := row.Author
		if len(author) > 20 {
			author = author[:17] + "..."
		}
		fmt.Printf("%-16s %-6s %-30s %-20s %-4d %d\n",
			row.SourceID, row.Type, title, author, row.Tier, row.Seq)
	}
	fmt.Printf("\n%s  (%d items)\n", renderPageWindow(pager), pager.TotalItems)
}

// renderPageWindow formats the bounded pager window, e.g. "1 … 4 [5] 6 … 10".
func renderPageWindow(pager view.Pager) string {
	parts := make([]string, 0, 9)
	for _, item := range pager.Window() {
		switch {
		case item.Gap:
			parts = append(parts, "…")
		case item.Page == pager.CurrentPage:
			parts = append(parts, fmt.Sprintf("[%d]", item.Page))
		default:
			parts = append(parts, fmt.Sprintf("%d", item.Page))
		}
	}
	return strings.Join(parts, " ")
}
