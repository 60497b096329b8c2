package sources

import (
	"context"

	"github.com/azure/brand-pulse/internal/models"
)

// SearchRequest is one keyword search against a single (optional) community
type SearchRequest struct {
	Keywords   []string          `json:"keywords"`
	Limit      int               `json:"limit"`
	TimeFilter models.TimeWindow `json:"timeFilter"`
	SortBy     models.SortKey    `json:"sortBy"`
	Subreddit  string            `json:"subreddit,omitempty"`
}

// AnalyzeOptions narrows a brand sentiment analysis
type AnalyzeOptions struct {
	Limit      int               `json:"limit,omitempty"`
	TimeFilter models.TimeWindow `json:"timeFilter,omitempty"`
	Subreddit  string            `json:"subreddit,omitempty"`
}

// Searcher runs keyword searches against the remote search service
type Searcher interface {
	SearchKeywords(ctx context.Context, req SearchRequest) (*models.SearchPage, error)
}

// Analyzer requests brand sentiment reports from the remote service
type Analyzer interface {
	AnalyzeBrand(ctx context.Context, brand string, opts AnalyzeOptions) (*models.AnalysisReport, error)
}

// HealthChecker probes whether the remote service is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
