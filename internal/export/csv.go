// Package export serializes ranked posts into a downloadable CSV file.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/azure/brand-pulse/internal/models"
)

const (
	ContentType     = "text/csv"
	permalinkBase   = "https://reddit.com"
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

var header = []string{"Title", "Subreddit", "Author", "Score", "Comments", "Upvote Ratio", "Created", "URL"}

// ToDelimitedText renders posts as CSV with a header row. Every field is
// quoted and embedded quotes are doubled. An empty input is rejected.
func ToDelimitedText(posts []models.Post) (string, error) {
	if len(posts) == 0 {
		return "", models.NewValidationError("posts", "No search results to export", models.ErrEmptyInput)
	}

	rows := make([]string, 0, len(posts)+1)
	rows = append(rows, joinRow(header))
	for _, post := range posts {
		rows = append(rows, joinRow([]string{
			post.Title,
			post.Subreddit,
			post.Author,
			strconv.Itoa(post.Score),
			strconv.Itoa(post.NumComments),
			fmt.Sprintf("%.1f%%", post.UpvoteRatio*100),
			post.Created.UTC().Format(timestampLayout),
			permalinkBase + post.Permalink,
		}))
	}

	return strings.Join(rows, "\n"), nil
}

// FileName returns the download name for an export made at now. The date
// is the UTC calendar day.
func FileName(now time.Time) string {
	return fmt.Sprintf("reddit-search-%s.csv", now.UTC().Format("2006-01-02"))
}

func joinRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = quote(field)
	}
	return strings.Join(quoted, ",")
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
