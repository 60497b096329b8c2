package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyClear bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		if historyClear {
			if err := current.service.ClearHistory(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Search history cleared.")
			return nil
		}

		entries := current.service.History()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No searches yet. Run 'pulse search' first.")
			return nil
		}
		for i, entry := range entries {
			fmt.Fprintf(out, "%2d. %s\n", i+1, entry)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "forget every recorded search")
	rootCmd.AddCommand(historyCmd)
}
