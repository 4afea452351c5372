package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goldcare-ai/goldctl/internal/api"
)

var domainsCmd = &cobra.Command{
	Use:   "domains [name]",
	Short: "List moral domains or inspect one by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 1 {
			domain, err := apiClient.GetMoralDomain(ctx, args[0])
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("domain not found: %s", args[0])
				}
				return fmt.Errorf("get domain: %s", renderError(err))
			}
			fmt.Printf("Domain: %s\n", domain.Domain)
			fmt.Printf("  Priority: %s\n", domain.Priority)
			if domain.AnchorBehavior != "" {
				fmt.Printf("  Anchor behavior: %s\n", domain.AnchorBehavior)
			}
			if domain.Additional.ID != "" {
				fmt.Printf("  ID: %s\n", domain.Additional.ID)
			}
			return nil
		}

		domains, err := apiClient.ListDomains(ctx)
		if err != nil {
			return fmt.Errorf("list domains: %s", renderError(err))
		}
		if len(domains) == 0 {
			fmt.Println("No domains found")
			return nil
		}
		fmt.Printf("%-30s %-12s %s\n", "DOMAIN", "PRIORITY", "ID")
		fmt.Println("----------------------------------------------------------------------")
		for _, d := range domains {
			fmt.Printf("%-30s %-12s %s\n", d.Domain, d.Priority, d.Additional.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(domainsCmd)
}
