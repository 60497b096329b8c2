package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/azure/brand-pulse/internal/sources"
	"github.com/spf13/cobra"
)

var probeKeywords string

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check connectivity to the search service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Brand Pulse - API Connectivity Test")
		fmt.Fprintln(out, strings.Repeat("=", 40))
		fmt.Fprintf(out, "Service: %s\n\n", current.cfg.APIBaseURL)

		ok := probe(cmd.Context(), out, current.client, models.SplitList(probeKeywords))
		if !ok {
			return fmt.Errorf("search service is not reachable")
		}
		fmt.Fprintln(out, "\nAPI connectivity test completed!")
		return nil
	},
}

func init() {
	probeCmd.Flags().StringVar(&probeKeywords, "keywords", "golang", "keywords used for the sample search")
	rootCmd.AddCommand(probeCmd)
}

type prober interface {
	sources.HealthChecker
	sources.Searcher
}

// probe runs the health check and one small search, reporting each step
func probe(ctx context.Context, out io.Writer, client prober, keywords []string) bool {
	fmt.Fprint(out, "Testing health endpoint... ")
	if err := client.HealthCheck(ctx); err != nil {
		fmt.Fprintf(out, "ERROR: %s\n", models.UserMessage(err))
		return false
	}
	fmt.Fprintln(out, "OK")

	fmt.Fprint(out, "Testing keyword search... ")
	page, err := client.SearchKeywords(ctx, sources.SearchRequest{
		Keywords:   keywords,
		Limit:      5,
		TimeFilter: models.WindowWeek,
		SortBy:     models.SortRelevance,
	})
	if err != nil {
		fmt.Fprintf(out, "ERROR: %s\n", models.UserMessage(err))
		return false
	}
	fmt.Fprintf(out, "OK (%d posts in %s)\n", len(page.Posts), page.ProcessingTime)
	if len(page.Posts) > 0 {
		fmt.Fprintf(out, "   Sample: %q\n", page.Posts[0].Title)
	}
	return true
}
