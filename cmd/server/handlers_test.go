package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/azure/brand-pulse/internal/analyses"
	"github.com/azure/brand-pulse/internal/explorer"
	"github.com/azure/brand-pulse/internal/history"
	"github.com/azure/brand-pulse/internal/models"
	"github.com/azure/brand-pulse/internal/notifications"
	"github.com/azure/brand-pulse/internal/sources"
	"github.com/azure/brand-pulse/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) SearchKeywords(ctx context.Context, req sources.SearchRequest) (*models.SearchPage, error) {
	args := m.Called(ctx, req)
	page, _ := args.Get(0).(*models.SearchPage)
	return page, args.Error(1)
}

func (m *MockClient) AnalyzeBrand(ctx context.Context, brand string, opts sources.AnalyzeOptions) (*models.AnalysisReport, error) {
	args := m.Called(ctx, brand, opts)
	report, _ := args.Get(0).(*models.AnalysisReport)
	return report, args.Error(1)
}

func newTestRouter(client *MockClient) http.Handler {
	return newTestRouterWithStorage(client, storage.NewMemoryStorage())
}

func newTestRouterWithStorage(client *MockClient, kv storage.StorageInterface) http.Handler {
	svc := explorer.NewService(client, client, history.New(kv), analyses.New(kv, 0), notifications.NewQueue(time.Minute))
	return newRouter(svc, kv, "")
}

// failingListStorage reads and writes normally but cannot enumerate keys
type failingListStorage struct {
	*storage.MemoryStorage
}

func (failingListStorage) List(string) ([]string, error) {
	return nil, errors.New("container unreachable")
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSearchAndExport(t *testing.T) {
	client := &MockClient{}
	client.On("SearchKeywords", mock.Anything, mock.Anything).Return(&models.SearchPage{
		ProcessingTime: "1s",
		Posts: []models.Post{
			{ID: "a", Title: "One", Subreddit: "golang", Score: 5, UpvoteRatio: 1, Permalink: "/r/golang/a"},
		},
	}, nil)
	router := newTestRouter(client)

	rec := do(t, router, "GET", "/export", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, "POST", "/search", `{"keywords":["generics"],"sortBy":"top"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Posts, 1)
	assert.Equal(t, 100, result.Stats.AvgUpvoteRatio)

	rec = do(t, router, "GET", "/history", "")
	assert.JSONEq(t, `{"history":["generics"]}`, rec.Body.String())

	rec = do(t, router, "GET", "/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reddit-search-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), `"Title"`))
}

func TestSearchValidation(t *testing.T) {
	router := newTestRouter(&MockClient{})

	rec := do(t, router, "POST", "/search", `{"keywords":[" "]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Please enter keywords to search"}`, rec.Body.String())

	rec = do(t, router, "POST", "/search", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysesRoutes(t *testing.T) {
	client := &MockClient{}
	client.On("AnalyzeBrand", mock.Anything, "Tesla", mock.Anything).Return(&models.AnalysisReport{
		Insights: models.Insights{SentimentDistribution: &models.Distribution{Positive: 1}},
	}, nil)
	client.On("AnalyzeBrand", mock.Anything, "Ford", mock.Anything).
		Return(nil, &models.ServiceError{Kind: models.KindRateLimited, StatusCode: 429, Message: models.MsgRateLimited})
	router := newTestRouter(client)

	rec := do(t, router, "POST", "/analyses", `{"brandName":"Tesla"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, "POST", "/analyses", `{"brandName":"Ford"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(t, router, "GET", "/analyses?recent=3", "")
	assert.JSONEq(t, `{"brands":["Tesla"]}`, rec.Body.String())

	rec = do(t, router, "GET", "/analyses?recent=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, "GET", "/analyses/Tesla", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, "DELETE", "/analyses/Tesla", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, "GET", "/analyses/Tesla", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationRoutes(t *testing.T) {
	router := newTestRouter(&MockClient{})

	do(t, router, "POST", "/search", `{"keywords":[]}`)
	do(t, router, "POST", "/analyses", `{"brandName":""}`)

	var body struct {
		Notifications []models.Notification `json:"notifications"`
	}
	rec := do(t, router, "GET", "/notifications", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 2)
	assert.Equal(t, "Search Required", body.Notifications[0].Title)
	assert.Equal(t, "Brand Required", body.Notifications[1].Title)

	rec = do(t, router, "DELETE", "/notifications/"+body.Notifications[0].ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, "DELETE", "/notifications/"+body.Notifications[0].ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "dismissing twice is harmless")

	rec = do(t, router, "DELETE", "/notifications", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, "GET", "/notifications", "")
	assert.JSONEq(t, `{"notifications":[]}`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(&MockClient{})

	rec := do(t, router, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"storage":"ok"`)
	assert.Contains(t, rec.Body.String(), `"stored_keys":0`)

	do(t, router, "POST", "/analyses", `{"brandName":""}`)

	rec = do(t, router, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "searches_run")
}

func TestHealthReportsStoredKeys(t *testing.T) {
	client := &MockClient{}
	client.On("SearchKeywords", mock.Anything, mock.Anything).Return(&models.SearchPage{}, nil)
	router := newTestRouter(client)

	do(t, router, "POST", "/search", `{"keywords":["generics"]}`)

	rec := do(t, router, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stored_keys":1`)
}

func TestHealthUnavailableStorage(t *testing.T) {
	router := newTestRouterWithStorage(&MockClient{}, failingListStorage{storage.NewMemoryStorage()})

	rec := do(t, router, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":"unavailable"`)
}
