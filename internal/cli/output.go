package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/azure/brand-pulse/internal/models"
)

const titleWidth = 70

func printResults(w io.Writer, result *models.SearchResult) {
	stats := result.Stats
	fmt.Fprintf(w, "%d results | avg score %d | avg upvote %d%% | %s\n",
		stats.TotalResults, stats.AvgScore, stats.AvgUpvoteRatio, stats.ProcessingTime)
	if len(result.Posts) == 0 {
		return
	}
	fmt.Fprintln(w, strings.Repeat("-", titleWidth+20))

	for i, post := range result.Posts {
		fmt.Fprintf(w, "%2d. %s\n", i+1, truncate(post.Title, titleWidth))
		fmt.Fprintf(w, "    r/%s · u/%s · %d pts · %d comments · %.0f%% upvoted\n",
			post.Subreddit, post.Author, post.Score, post.NumComments, post.UpvoteRatio*100)
		if post.Permalink != "" {
			fmt.Fprintf(w, "    https://reddit.com%s\n", post.Permalink)
		}
	}
}

func printFailures(w io.Writer, failures []models.SourceFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(w, "\nUnavailable sources:")
	for _, f := range failures {
		fmt.Fprintf(w, "  %s: %s\n", f.Community, f.Message)
	}
}

func printReport(w io.Writer, brand string, report *models.AnalysisReport) {
	insights := report.Insights
	fmt.Fprintf(w, "Brand analysis: %s\n", brand)
	fmt.Fprintf(w, "  %d posts, %d texts analyzed, avg confidence %.0f%%\n",
		report.Summary.TotalPosts, report.Summary.TotalTextsAnalyzed, report.Summary.AvgConfidence*100)

	if d := insights.SentimentDistribution; d != nil {
		fmt.Fprintf(w, "  Sentiment: %.0f%% positive, %.0f%% negative, %.0f%% neutral\n",
			d.Positive*100, d.Negative*100, d.Neutral*100)
	}
	if insights.OverallPerception != "" {
		fmt.Fprintf(w, "\n%s\n", insights.OverallPerception)
	}

	printList(w, "Positive themes", insights.PositiveThemes)
	printList(w, "Negative themes", insights.NegativeThemes)
	printList(w, "Trending topics", insights.TrendingTopics)
	printList(w, "Recommendations", insights.Recommendations)
}

func printList(w io.Writer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func printNotifications(w io.Writer, items []models.Notification) {
	for _, n := range items {
		if n.Message == "" {
			fmt.Fprintf(w, "[%s] %s\n", n.Type, n.Title)
			continue
		}
		fmt.Fprintf(w, "[%s] %s %s\n", n.Type, n.Title, n.Message)
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
