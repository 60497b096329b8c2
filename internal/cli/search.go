package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/spf13/cobra"
)

var (
	searchKeywords    string
	searchSubreddits  string
	searchTimeFilter  string
	searchSort        string
	searchMinScore    int
	searchLimit       int
	searchExportDir   string
	searchShowFailure bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search Reddit for keywords across subreddits",
	Example: `  pulse search -k apple,iphone -s technology,apple --sort top --min-score 10
  pulse search -k "kubernetes" --export ./out`,
	RunE: searchAction,
}

func init() {
	searchCmd.Flags().StringVarP(&searchKeywords, "keywords", "k", "", "comma-separated keywords (required)")
	searchCmd.Flags().StringVarP(&searchSubreddits, "subreddits", "s", "", "comma-separated subreddits (empty searches all of Reddit)")
	searchCmd.Flags().StringVarP(&searchTimeFilter, "time", "t", string(models.WindowWeek), "time window: hour, day, week, month, year, all")
	searchCmd.Flags().StringVar(&searchSort, "sort", string(models.SortRelevance), "sort by: relevance, hot, top, new, comments")
	searchCmd.Flags().IntVar(&searchMinScore, "min-score", 0, "drop posts scoring below this")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", models.DefaultMaxResults, "maximum number of results (1-100)")
	searchCmd.Flags().StringVar(&searchExportDir, "export", "", "write the results as CSV into this directory")
	searchCmd.Flags().BoolVar(&searchShowFailure, "show-failures", false, "list subreddits that could not be searched")
	rootCmd.AddCommand(searchCmd)
}

func searchAction(cmd *cobra.Command, _ []string) error {
	query := models.NewSearchQuery(searchKeywords, searchSubreddits)
	query.TimeWindow = models.TimeWindow(searchTimeFilter)
	query.SortBy = models.SortKey(searchSort)
	query.MinScore = searchMinScore
	query.MaxResults = searchLimit

	if !query.TimeWindow.Valid() {
		return fmt.Errorf("unknown --time %q", searchTimeFilter)
	}
	if !query.SortBy.Valid() {
		return fmt.Errorf("unknown --sort %q", searchSort)
	}

	result, err := current.service.Search(cmd.Context(), query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printResults(out, result)
	if searchShowFailure {
		printFailures(out, result.Failures)
	}

	if searchExportDir == "" || len(result.Posts) == 0 {
		return nil
	}

	filename, data, err := current.service.Export()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(searchExportDir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(searchExportDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(out, "\nExported to %s\n", path)
	return nil
}
