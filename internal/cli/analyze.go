package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	savedRecent int
	savedRemove string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze BRAND",
	Short: "Analyze Reddit sentiment for a brand and save the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := current.service.AnalyzeBrand(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), args[0], report)
		return nil
	},
}

var savedCmd = &cobra.Command{
	Use:   "saved [BRAND]",
	Short: "List saved analyses or show one of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if savedRemove != "" {
			if err := current.service.RemoveAnalysis(savedRemove); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed analysis for %s.\n", savedRemove)
			return nil
		}

		if len(args) == 1 {
			selected, ok := current.service.SelectAnalysis(args[0])
			if !ok {
				return fmt.Errorf("no saved analysis for %q", args[0])
			}
			printReport(out, selected.BrandName, &selected.Analysis)
			return nil
		}

		brands := current.service.RecentAnalyses(savedRecent)
		if len(brands) == 0 {
			fmt.Fprintln(out, "No saved analyses. Run 'pulse analyze BRAND' first.")
			return nil
		}
		for _, brand := range brands {
			fmt.Fprintf(out, "  %s\n", brand)
		}
		return nil
	},
}

func init() {
	savedCmd.Flags().IntVar(&savedRecent, "recent", 5, "number of saved brands to list")
	savedCmd.Flags().StringVar(&savedRemove, "remove", "", "delete the saved analysis for this brand")
	rootCmd.AddCommand(analyzeCmd, savedCmd)
}
