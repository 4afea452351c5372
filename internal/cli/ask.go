package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goldcare-ai/goldctl/internal/api"
)

// Defaults mirror the web playground's pre-filled query settings.
const defaultInstructions = `1. Answer based ONLY on the provided sources above
2. Prioritize Book sources (Tier 1) over Articles (Tier 2) over Contexts
3. Maintain a life-affirming, evidence-based approach
4. If sources conflict, present both perspectives but note the tier hierarchy
5. Cite your sources using the reference codes (B1, A1, C1, etc.)`

const defaultMoralFoundation = "Provide life-affirming, evidence-based guidance that prioritizes human dignity and wellbeing."

var (
	askDomain           string
	askTier             int
	askInstructions     string
	askInstructionsFile string
	askFoundation       string
	askRequirements     string
	askShowSources      bool
	askShowPrompt       bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a domain-scoped question",
	Long: `Ask a question against the moral-domain knowledge base. The backend
ranks sources by tier, composes the prompt, and returns a grounded answer.

Examples:
  goldctl ask "What is the role of autonomy in medical ethics?"
  goldctl ask --domain bioethics --tier 2 "May treatment be withheld?"
  goldctl ask --show-sources --show-prompt "..."`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDomain, "domain", "d", "", "moral domain to search (default: first available)")
	askCmd.Flags().IntVarP(&askTier, "tier", "t", 3, "maximum tier to include (1-3)")
	askCmd.Flags().StringVar(&askInstructions, "instructions", "", "override the AI instructions")
	askCmd.Flags().StringVar(&askInstructionsFile, "instructions-file", "", "read the AI instructions from a file")
	askCmd.Flags().StringVar(&askFoundation, "moral-foundation", "", "override the moral foundation text")
	askCmd.Flags().StringVar(&askRequirements, "requirements", "", "response requirements passed through to the backend")
	askCmd.Flags().BoolVar(&askShowSources, "show-sources", false, "print the sources the answer cites")
	askCmd.Flags().BoolVar(&askShowPrompt, "show-prompt", false, "print the full composed prompt")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}
	if askTier < 1 || askTier > 3 {
		return fmt.Errorf("tier must be between 1 and 3, got %d", askTier)
	}

	instructions := askInstructions
	if askInstructionsFile != "" {
		data, err := os.ReadFile(askInstructionsFile)
		if err != nil {
			return fmt.Errorf("read instructions file: %w", err)
		}
		instructions = string(data)
	}
	if instructions == "" {
		instructions = defaultInstructions
	}
	foundation := askFoundation
	if foundation == "" {
		foundation = defaultMoralFoundation
	}

	domain := askDomain
	if domain == "" {
		domains, err := apiClient.ListDomains(ctx)
		if err != nil {
			return fmt.Errorf("list domains: %s", renderError(err))
		}
		if len(domains) == 0 {
			return fmt.Errorf("no moral domains configured; pass --domain or ingest one first")
		}
		domain = domains[0].Domain
		logger.Debug("defaulting to first domain", "domain", domain)
	}

	answer, err := apiClient.Ask(ctx, api.SearchRequest{
		Question:             question,
		Domain:               domain,
		Tier:                 askTier,
		Instructions:         instructions,
		MoralFoundation:      foundation,
		ResponseRequirements: askRequirements,
	})
	if err != nil {
		return fmt.Errorf("search: %s", renderError(err))
	}

	if answer.Answer == "" {
		fmt.Fprintln(os.Stderr, "Warning: the answer came back empty; check the submitted data.")
	} else {
		fmt.Println(answer.Answer)
	}

	fmt.Printf("\ndomain: %s | tiers searched: %s | total sources: %d\n",
		answer.Domain, answer.TiersSearched, answer.TotalSources)

	if askShowSources {
		printSources("Books (Tier 1)", answer.Sources.Books)
		printSources("Articles", answer.Sources.Articles)
		printSources("Contexts", answer.Sources.Contexts)
	}
	if askShowPrompt && answer.Prompt != "" {
		fmt.Println("\n--- prompt ---")
		fmt.Println(answer.Prompt)
	}
	return nil
}

func printSources(heading string, refs []api.SourceRef) {
	fmt.Printf("\n%s:\n", heading)
	if len(refs) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, ref := range refs {
		fmt.Printf("  [%s] %s\n", ref.SourceID, ref.Title)
	}
}
