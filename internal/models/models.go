package models

import (
	"encoding/json"
	"time"
)

// Post represents a single post returned by the search service
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Selftext    string    `json:"selftext,omitempty"`
	Score       int       `json:"score"`
	UpvoteRatio float64   `json:"upvoteRatio"` // 0-1
	NumComments int       `json:"numComments"`
	Author      string    `json:"author"`
	Subreddit   string    `json:"subreddit"`
	Created     time.Time `json:"created"`
	URL         string    `json:"url"`
	Permalink   string    `json:"permalink"`
	Comments    []Comment `json:"comments,omitempty"`
}

// Comment is a top-level comment attached to a post
type Comment struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Score     int       `json:"score"`
	Author    string    `json:"author"`
	Created   time.Time `json:"created"`
	Permalink string    `json:"permalink"`
}

// UnmarshalJSON decodes a post and clamps its upvote ratio into [0,1].
func (p *Post) UnmarshalJSON(data []byte) error {
	type rawPost Post
	var raw rawPost
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Post(raw)
	p.UpvoteRatio = ClampRatio(p.UpvoteRatio)
	return nil
}

// ClampRatio limits a ratio to the closed interval [0,1].
func ClampRatio(r float64) float64 {
	switch {
	case r < 0 || r != r:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// SearchStats summarizes a ranked result set
type SearchStats struct {
	TotalResults   int    `json:"totalResults"`
	AvgScore       int    `json:"avgScore"`
	AvgUpvoteRatio int    `json:"avgUpvoteRatio"` // percentage
	ProcessingTime string `json:"processingTime"`
}

// SourceFailure records a sub-request that did not contribute posts
type SourceFailure struct {
	Community string `json:"community"`
	Message   string `json:"message"`
}

// SearchResult is the ranked output of one aggregated search
type SearchResult struct {
	Posts    []Post          `json:"posts"`
	Stats    SearchStats     `json:"stats"`
	Failures []SourceFailure `json:"failures,omitempty"`
}

// SearchPage is one response from the remote keyword search endpoint
type SearchPage struct {
	Posts          []Post
	ProcessingTime string
}

// SentimentResult is the per-text verdict inside an analysis report
type SentimentResult struct {
	Sentiment           string   `json:"sentiment"` // "Positive", "Negative", "Neutral"
	Confidence          float64  `json:"confidence"`
	KeyPhrases          []string `json:"keyPhrases"`
	Explanation         string   `json:"explanation"`
	BrandMentionContext string   `json:"brandMentionContext,omitempty"`
}

// Distribution holds sentiment fractions that sum to 1
type Distribution struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Insights aggregates the themes found for a brand
type Insights struct {
	OverallPerception     string        `json:"overallPerception"`
	PositiveThemes        []string      `json:"positiveThemes"`
	NegativeThemes        []string      `json:"negativeThemes"`
	Recommendations       []string      `json:"recommendations"`
	TrendingTopics        []string      `json:"trendingTopics"`
	SentimentDistribution *Distribution `json:"sentimentDistribution"`
}

// AnalysisSummary counts what the sentiment service looked at
type AnalysisSummary struct {
	TotalPosts         int     `json:"totalPosts"`
	TotalTextsAnalyzed int     `json:"totalTextsAnalyzed"`
	AvgConfidence      float64 `json:"avgConfidence"`
}

// AnalysisReport is the brand analysis produced by the sentiment service
type AnalysisReport struct {
	RedditData       []Post            `json:"redditData"`
	SentimentResults []SentimentResult `json:"sentimentResults"`
	Insights         Insights          `json:"insights"`
	Summary          AnalysisSummary   `json:"summary"`
}

// NotificationType is the severity of a user-facing notification
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// Notification represents a transient status message shown to the user
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	Duration  int64            `json:"duration"` // milliseconds, <= 0 means sticky
	CreatedAt time.Time        `json:"created_at"`
}
