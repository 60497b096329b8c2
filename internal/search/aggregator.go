package search

import (
	"context"
	"sync"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/azure/brand-pulse/internal/sources"
	"github.com/sirupsen/logrus"
)

const allCommunities = "all"

// Aggregator fans one logical search out to a request per community and
// merges whatever comes back.
type Aggregator struct {
	searcher sources.Searcher
}

type outcome struct {
	page *models.SearchPage
	err  error
}

// NewAggregator creates a new aggregator on top of searcher
func NewAggregator(searcher sources.Searcher) *Aggregator {
	return &Aggregator{searcher: searcher}
}

// Aggregate runs query and returns the ranked result. Failed sub-requests
// are logged and listed in SearchResult.Failures; only an invalid query
// returns an error.
func (a *Aggregator) Aggregate(ctx context.Context, query models.SearchQuery) (*models.SearchResult, error) {
	q := query.Normalized()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	requests := planRequests(q)
	outcomes := make([]outcome, len(requests))

	logrus.Infof("Searching %d source(s) for %v", len(requests), q.Keywords)

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req sources.SearchRequest) {
			defer wg.Done()
			page, err := a.searcher.SearchKeywords(ctx, req)
			outcomes[i] = outcome{page: page, err: err}
		}(i, req)
	}
	wg.Wait()

	// Merge in request order so ties rank the same way on every run.
	var merged []models.Post
	var failures []models.SourceFailure
	processingTime := ""
	for i, out := range outcomes {
		community := requests[i].Subreddit
		if community == "" {
			community = allCommunities
		}

		if out.err != nil {
			entry := logrus.WithFields(logrus.Fields{
				"community": community,
				"error":     out.err,
			})
			if models.IsCanceled(out.err) {
				entry.Debug("Search sub-request canceled")
			} else {
				entry.Warn("Search sub-request failed")
			}
			failures = append(failures, models.SourceFailure{
				Community: community,
				Message:   models.UserMessage(out.err),
			})
			continue
		}

		if out.page == nil {
			continue
		}
		if processingTime == "" {
			processingTime = out.page.ProcessingTime
		}
		merged = append(merged, out.page.Posts...)
	}

	ranked := Rank(merged, RankOptions{
		MinScore: q.MinScore,
		SortBy:   q.SortBy,
		Limit:    q.MaxResults,
	})

	logrus.Infof("Collected %d posts (%d after ranking, %d failed sources)", len(merged), len(ranked), len(failures))

	return &models.SearchResult{
		Posts:    ranked,
		Stats:    ComputeStats(ranked, processingTime),
		Failures: failures,
	}, nil
}

// planRequests splits the result budget evenly across communities,
// rounding up for each one.
func planRequests(q models.SearchQuery) []sources.SearchRequest {
	if len(q.Communities) == 0 {
		return []sources.SearchRequest{{
			Keywords:   q.Keywords,
			Limit:      q.MaxResults,
			TimeFilter: q.TimeWindow,
			SortBy:     q.SortBy,
		}}
	}

	perCommunity := (q.MaxResults + len(q.Communities) - 1) / len(q.Communities)
	requests := make([]sources.SearchRequest, 0, len(q.Communities))
	for _, community := range q.Communities {
		requests = append(requests, sources.SearchRequest{
			Keywords:   q.Keywords,
			Limit:      perCommunity,
			TimeFilter: q.TimeWindow,
			SortBy:     q.SortBy,
			Subreddit:  community,
		})
	}
	return requests
}
