package scheduler

import (
	"context"
	"time"

	"github.com/azure/brand-pulse/internal/sources"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StatusSink receives the outcome of every health probe
type StatusSink interface {
	SetOnline(online bool)
}

// Service periodically probes the search service and reports reachability
type Service struct {
	schedule string
	timeout  time.Duration
	checker  sources.HealthChecker
	sink     StatusSink
	cron     *cron.Cron
}

// NewService creates a new scheduler service. schedule accepts standard
// cron expressions and descriptors such as "@every 30s".
func NewService(schedule string, timeout time.Duration, checker sources.HealthChecker, sink StatusSink) *Service {
	return &Service{
		schedule: schedule,
		timeout:  timeout,
		checker:  checker,
		sink:     sink,
		cron:     cron.New(),
	}
}

// Start runs one probe immediately and then begins the scheduled probes
func (s *Service) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Probe); err != nil {
		return err
	}

	s.Probe()
	s.cron.Start()
	logrus.Infof("Scheduler started with %s health probe schedule", s.schedule)
	return nil
}

// Probe checks the search service once and forwards the result
func (s *Service) Probe() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.checker.HealthCheck(ctx)
	if err != nil {
		logrus.Warnf("Health probe failed: %v", err)
	} else {
		logrus.Debug("Health probe succeeded")
	}
	s.sink.SetOnline(err == nil)
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
