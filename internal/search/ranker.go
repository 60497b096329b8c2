package search

import (
	"cmp"
	"math"
	"slices"

	"github.com/azure/brand-pulse/internal/models"
)

// RankOptions are the query parameters that shape a ranked result set
type RankOptions struct {
	MinScore int
	SortBy   models.SortKey
	Limit    int // <= 0 keeps everything
}

// Rank filters posts below MinScore, orders them by SortBy and keeps at most
// Limit of them. Relevance and hot keep the service order. Ties keep their
// input order. The input slice is left untouched.
func Rank(posts []models.Post, opts RankOptions) []models.Post {
	ranked := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if opts.MinScore > 0 && post.Score < opts.MinScore {
			continue
		}
		ranked = append(ranked, post)
	}

	switch opts.SortBy {
	case models.SortTop:
		slices.SortStableFunc(ranked, func(a, b models.Post) int {
			return cmp.Compare(b.Score, a.Score)
		})
	case models.SortComments:
		slices.SortStableFunc(ranked, func(a, b models.Post) int {
			return cmp.Compare(b.NumComments, a.NumComments)
		})
	case models.SortNew:
		slices.SortStableFunc(ranked, func(a, b models.Post) int {
			return b.Created.Compare(a.Created)
		})
	}

	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}

	return ranked
}

// ComputeStats summarizes posts. An empty set yields zero stats.
func ComputeStats(posts []models.Post, processingTime string) models.SearchStats {
	if len(posts) == 0 {
		return models.SearchStats{}
	}

	var scoreSum, ratioSum float64
	for _, post := range posts {
		scoreSum += float64(post.Score)
		ratioSum += post.UpvoteRatio
	}
	n := float64(len(posts))

	return models.SearchStats{
		TotalResults:   len(posts),
		AvgScore:       roundHalfUp(scoreSum / n),
		AvgUpvoteRatio: roundHalfUp(ratioSum / n * 100),
		ProcessingTime: processingTime,
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
