package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goldcare-ai/goldctl/internal/api"
)

var sourceRaw bool

var sourceCmd = &cobra.Command{
	Use:   "source <id>",
	Short: "Inspect a stored chunk by id",
	Long: `Fetch a single stored chunk by its opaque id. With --raw, fetches
the document-store snapshot of the source instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if sourceRaw {
			doc, err := apiClient.SourceByID(ctx, args[0])
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("source not found: %s", args[0])
				}
				return fmt.Errorf("get source: %s", renderError(err))
			}
			keys := make([]string, 0, len(doc))
			for k := range doc {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s: %v\n", k, doc[k])
			}
			return nil
		}

		chunk, err := apiClient.ChunkByID(ctx, args[0])
		if err != nil {
			if api.IsNotFound(err) {
				return fmt.Errorf("chunk not found: %s", args[0])
			}
			return fmt.Errorf("get chunk: %s", renderError(err))
		}
		printChunk(chunk)
		return nil
	},
}

func init() {
	sourceCmd.Flags().BoolVar(&sourceRaw, "raw", false, "fetch the document-store snapshot instead of the chunk")
	rootCmd.AddCommand(sourceCmd)
}

func printChunk(chunk *api.Chunk) {
	fmt.Printf("Chunk: %s\n", chunk.Additional.ID)
	fmt.Printf("  Source id: %s\n", chunk.SourceID)
	fmt.Printf("  Title: %s\n", chunk.Title)
	if chunk.Author != "" {
		fmt.Printf("  Author: %s\n", chunk.Author)
	}
	fmt.Printf("  Type: %s  Tier: %d  Seq: %d\n", chunk.Type, chunk.Tier, chunk.Seq)
	if chunk.Chapter != "" {
		fmt.Printf("  Chapter: %s\n", chunk.Chapter)
	}
	if chunk.ISBN != "" {
		fmt.Printf("  ISBN: %s\n", chunk.ISBN)
	}
	if chunk.PublicationDate != "" {
		fmt.Printf("  Published: %s\n", chunk.PublicationDate)
	}
	if len(chunk.Tags) > 0 {
		fmt.Printf("  Tags: %s\n", strings.Join(chunk.Tags, ", "))
	}
	if len(chunk.DomainRefs) > 0 {
		ids := make([]string, len(chunk.DomainRefs))
		for i, ref := range chunk.DomainRefs {
			ids[i] = ref.ID
		}
		fmt.Printf("  Domains: %s\n", strings.Join(ids, ", "))
	}
	if chunk.Content != "" {
		fmt.Printf("\n%s\n", chunk.Content)
	}
}
