package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/azure/brand-pulse/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPrintResults(t *testing.T) {
	result := &models.SearchResult{
		Posts: []models.Post{
			{Title: "Go 1.22 is out", Subreddit: "golang", Author: "gopher", Score: 120, NumComments: 33, UpvoteRatio: 0.97, Permalink: "/r/golang/comments/x1/"},
		},
		Stats: models.SearchStats{TotalResults: 1, AvgScore: 120, AvgUpvoteRatio: 97, ProcessingTime: "0.4s"},
	}

	var buf bytes.Buffer
	printResults(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "1 results | avg score 120 | avg upvote 97% | 0.4s")
	assert.Contains(t, out, " 1. Go 1.22 is out")
	assert.Contains(t, out, "r/golang · u/gopher · 120 pts · 33 comments · 97% upvoted")
	assert.Contains(t, out, "https://reddit.com/r/golang/comments/x1/")
}

func TestPrintFailures(t *testing.T) {
	var buf bytes.Buffer
	printFailures(&buf, nil)
	assert.Empty(t, buf.String())

	printFailures(&buf, []models.SourceFailure{{Community: "rust", Message: models.MsgServer}})
	assert.Contains(t, buf.String(), "rust: "+models.MsgServer)
}

func TestPrintReport(t *testing.T) {
	report := &models.AnalysisReport{
		Insights: models.Insights{
			OverallPerception:     "Fans love the design",
			PositiveThemes:        []string{"design"},
			SentimentDistribution: &models.Distribution{Positive: 0.7, Negative: 0.1, Neutral: 0.2},
		},
		Summary: models.AnalysisSummary{TotalPosts: 10, TotalTextsAnalyzed: 25, AvgConfidence: 0.8},
	}

	var buf bytes.Buffer
	printReport(&buf, "Tesla", report)
	out := buf.String()

	assert.Contains(t, out, "Brand analysis: Tesla")
	assert.Contains(t, out, "10 posts, 25 texts analyzed, avg confidence 80%")
	assert.Contains(t, out, "70% positive, 10% negative, 20% neutral")
	assert.Contains(t, out, "Positive themes:\n  - design")
	assert.NotContains(t, out, "Negative themes")
}

func TestPrintNotifications(t *testing.T) {
	var buf bytes.Buffer
	printNotifications(&buf, []models.Notification{
		{Type: models.NotificationSuccess, Title: "Search Complete!", Message: "Found 3 matching posts"},
		{Type: models.NotificationWarning, Title: "Connection Lost"},
	})
	assert.Equal(t, "[success] Search Complete! Found 3 matching posts\n[warning] Connection Lost\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo w...", truncate("héllo wörld and more", 10))
}

type mockProber struct {
	mock.Mock
}

func (m *mockProber) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockProber) SearchKeywords(ctx context.Context, req sources.SearchRequest) (*models.SearchPage, error) {
	args := m.Called(ctx, req)
	page, _ := args.Get(0).(*models.SearchPage)
	return page, args.Error(1)
}

func TestProbe(t *testing.T) {
	client := &mockProber{}
	client.On("HealthCheck", mock.Anything).Return(nil)
	client.On("SearchKeywords", mock.Anything, mock.MatchedBy(func(req sources.SearchRequest) bool {
		return req.Limit == 5 && len(req.Keywords) == 1 && req.Keywords[0] == "golang"
	})).Return(&models.SearchPage{Posts: []models.Post{{Title: "Hello"}}, ProcessingTime: "0.2s"}, nil)

	var buf bytes.Buffer
	assert.True(t, probe(context.Background(), &buf, client, []string{"golang"}))
	assert.Contains(t, buf.String(), "OK (1 posts in 0.2s)")
	assert.Contains(t, buf.String(), `Sample: "Hello"`)
}

func TestProbe_Unreachable(t *testing.T) {
	client := &mockProber{}
	client.On("HealthCheck", mock.Anything).
		Return(&models.ServiceError{Kind: models.KindNetwork, Message: models.MsgNetwork, Err: errors.New("dial tcp")})

	var buf bytes.Buffer
	assert.False(t, probe(context.Background(), &buf, client, []string{"golang"}))
	assert.True(t, strings.HasSuffix(buf.String(), "ERROR: "+models.MsgNetwork+"\n"))
	client.AssertNotCalled(t, "SearchKeywords", mock.Anything, mock.Anything)
}
