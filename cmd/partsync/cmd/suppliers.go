package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partforge/partsync/pkg/suppliers"
)

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "List available supplier backends",
	Long: `Suppliers lists every registered supplier backend in the order
search results are processed. The suppliers setting in the config file
narrows this list for imports.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, s := range suppliers.Default().List() {
			fmt.Fprintln(cmd.OutOrStdout(), s.Name())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suppliersCmd)
}
