package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/azure/brand-pulse/internal/analyses"
	"github.com/azure/brand-pulse/internal/export"
	"github.com/azure/brand-pulse/internal/history"
	"github.com/azure/brand-pulse/internal/models"
	"github.com/azure/brand-pulse/internal/notifications"
	"github.com/azure/brand-pulse/internal/search"
	"github.com/azure/brand-pulse/internal/sources"
	"github.com/sirupsen/logrus"
)

// ExportMailer delivers a CSV export by email
type ExportMailer interface {
	Send(recipient, filename string, data []byte, resultCount int) error
}

// Service drives a user session: searches, exports and brand analyses,
// reporting every outcome through the notification queue.
type Service struct {
	aggregator *search.Aggregator
	analyzer   sources.Analyzer
	history    *history.Store
	analyses   *analyses.Cache
	queue      *notifications.Queue
	mailer     ExportMailer
	now        func() time.Time

	mu      sync.RWMutex
	results []models.Post
	current *CurrentAnalysis
	online  bool
	metrics *Metrics
}

// CurrentAnalysis is the analysis on display. It is a copy, not an owner
// of the cached entry.
type CurrentAnalysis struct {
	BrandName string                `json:"brandName"`
	Analysis  models.AnalysisReport `json:"analysis"`
	Timestamp time.Time             `json:"timestamp"`
}

// Metrics holds session metrics
type Metrics struct {
	SearchesRun        int       `json:"searches_run"`
	LastSearch         time.Time `json:"last_search"`
	LastSearchDuration string    `json:"last_search_duration"`
	LastResultCount    int       `json:"last_result_count"`
	FailedSubRequests  int       `json:"failed_sub_requests"`
	AnalysesRun        int       `json:"analyses_run"`
	ErrorCount         int       `json:"error_count"`
}

// NewService creates a new session service
func NewService(
	searcher sources.Searcher,
	analyzer sources.Analyzer,
	historyStore *history.Store,
	cache *analyses.Cache,
	queue *notifications.Queue,
) *Service {
	return &Service{
		aggregator: search.NewAggregator(searcher),
		analyzer:   analyzer,
		history:    historyStore,
		analyses:   cache,
		queue:      queue,
		now:        time.Now,
		online:     true,
		metrics:    &Metrics{},
	}
}

// SetMailer enables emailing exports
func (s *Service) SetMailer(mailer ExportMailer) {
	s.mailer = mailer
}

// Search runs query, records it in the history and keeps the ranked
// posts as the current result set.
func (s *Service) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResult, error) {
	start := s.now()

	q := query.Normalized()
	if err := q.Validate(); err != nil {
		title := "Invalid Search"
		if errors.Is(err, models.ErrEmptyKeywords) {
			title = "Search Required"
		}
		s.queue.Push(models.NotificationWarning, title, models.UserMessage(err))
		return nil, err
	}

	s.setResults(nil)

	if err := s.history.Record(strings.Join(q.Keywords, ", ")); err != nil {
		logrus.Errorf("Failed to record search history: %v", err)
	}

	result, err := s.aggregator.Aggregate(ctx, q)
	if err != nil {
		s.recordError()
		s.queue.Push(models.NotificationError, "Search Failed", models.UserMessage(err))
		return nil, err
	}

	s.setResults(result.Posts)
	s.updateMetrics(result, s.now().Sub(start))

	if ctx.Err() != nil && len(result.Posts) == 0 {
		logrus.Infof("Search for %v canceled", q.Keywords)
		return result, ctx.Err()
	}

	if len(result.Posts) == 0 && len(result.Failures) > 0 && len(result.Failures) == requestCount(q) {
		s.queue.Push(models.NotificationError, "Search Failed", result.Failures[0].Message)
		return result, nil
	}

	s.queue.Push(models.NotificationSuccess, "Search Complete!",
		fmt.Sprintf("Found %d matching posts", len(result.Posts)))
	return result, nil
}

// Export renders the current result set as CSV
func (s *Service) Export() (string, []byte, error) {
	posts := s.CurrentResults()

	text, err := export.ToDelimitedText(posts)
	if err != nil {
		s.queue.Push(models.NotificationWarning, "No Data", models.UserMessage(err))
		return "", nil, err
	}

	s.queue.Push(models.NotificationSuccess, "Export Complete!",
		fmt.Sprintf("Exported %d results to CSV", len(posts)))
	return export.FileName(s.now()), []byte(text), nil
}

// EmailExport mails the current result set to recipient
func (s *Service) EmailExport(recipient string) error {
	if s.mailer == nil {
		return errors.New("email delivery is not configured")
	}

	posts := s.CurrentResults()
	text, err := export.ToDelimitedText(posts)
	if err != nil {
		s.queue.Push(models.NotificationWarning, "No Data", models.UserMessage(err))
		return err
	}
	filename := export.FileName(s.now())

	if err := s.mailer.Send(recipient, filename, []byte(text), len(posts)); err != nil {
		s.recordError()
		s.queue.Push(models.NotificationError, "Email Failed", err.Error())
		return err
	}

	s.queue.Push(models.NotificationSuccess, "Export Sent", fmt.Sprintf("Emailed %s to %s", filename, recipient))
	return nil
}

// AnalyzeBrand requests a sentiment report for brand, saves it and makes
// it the current analysis.
func (s *Service) AnalyzeBrand(ctx context.Context, brand string) (*models.AnalysisReport, error) {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		err := models.NewValidationError("brandName", "Please enter a brand name to analyze", models.ErrEmptyBrand)
		s.queue.Push(models.NotificationWarning, "Brand Required", err.Message)
		return nil, err
	}

	logrus.Infof("Analyzing brand sentiment for %q", brand)
	report, err := s.analyzer.AnalyzeBrand(ctx, brand, sources.AnalyzeOptions{})
	if models.IsCanceled(err) {
		logrus.Infof("Analysis for %q canceled", brand)
		return nil, err
	}
	if err != nil {
		s.recordError()
		s.queue.Push(models.NotificationError, "Analysis Failed", models.UserMessage(err))
		return nil, err
	}

	if err := s.analyses.Save(brand, *report); err != nil {
		logrus.Errorf("Failed to save analysis for %q: %v", brand, err)
		s.queue.Push(models.NotificationWarning, "Analysis Not Saved", err.Error())
	}

	s.mu.Lock()
	s.current = &CurrentAnalysis{BrandName: brand, Analysis: *report, Timestamp: s.now()}
	s.metrics.AnalysesRun++
	s.mu.Unlock()

	s.queue.Push(models.NotificationSuccess, "Analysis Complete!",
		fmt.Sprintf("Generated comprehensive insights for %s", brand))
	return report, nil
}

// SelectAnalysis makes a saved analysis the current one
func (s *Service) SelectAnalysis(brand string) (*CurrentAnalysis, bool) {
	report, ok := s.analyses.Get(brand)
	if !ok {
		return nil, false
	}

	current := &CurrentAnalysis{BrandName: brand, Analysis: report, Timestamp: s.now()}
	s.mu.Lock()
	s.current = current
	s.mu.Unlock()
	return current, true
}

// RemoveAnalysis deletes a saved analysis
func (s *Service) RemoveAnalysis(brand string) error {
	if err := s.analyses.Remove(brand); err != nil {
		return err
	}

	s.mu.Lock()
	if s.current != nil && s.current.BrandName == brand {
		s.current = nil
	}
	s.mu.Unlock()
	return nil
}

// RecentAnalyses lists up to n saved brands
func (s *Service) RecentAnalyses(n int) []string {
	return s.analyses.MostRecent(n)
}

// CurrentAnalysis returns the analysis on display, if any
func (s *Service) CurrentAnalysis() *CurrentAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// CurrentResults returns the posts of the last successful search
func (s *Service) CurrentResults() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Post{}, s.results...)
}

// History returns the recorded queries, most recent first
func (s *Service) History() []string {
	return s.history.List()
}

// ClearHistory empties the recorded queries
func (s *Service) ClearHistory() error {
	return s.history.Clear()
}

// Notifications exposes the session's notification queue
func (s *Service) Notifications() *notifications.Queue {
	return s.queue
}

// SetOnline records backend reachability and reports transitions
func (s *Service) SetOnline(online bool) {
	s.mu.Lock()
	changed := s.online != online
	s.online = online
	s.mu.Unlock()

	if !changed {
		return
	}

	if online {
		s.queue.Push(models.NotificationSuccess, "Back Online", "The search service is reachable again")
	} else {
		s.queue.Push(models.NotificationWarning, "Connection Lost", models.MsgNetwork, notifications.WithTTL(0))
	}
}

// Online reports the last known backend reachability
func (s *Service) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.online
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}

func (s *Service) setResults(posts []models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = posts
}

func (s *Service) updateMetrics(result *models.SearchResult, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.SearchesRun++
	s.metrics.LastSearch = s.now()
	s.metrics.LastSearchDuration = duration.String()
	s.metrics.LastResultCount = len(result.Posts)
	s.metrics.FailedSubRequests += len(result.Failures)
}

func (s *Service) recordError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ErrorCount++
}

func requestCount(q models.SearchQuery) int {
	if len(q.Communities) == 0 {
		return 1
	}
	return len(q.Communities)
}
