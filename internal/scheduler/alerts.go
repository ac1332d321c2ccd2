package scheduler

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/kjannette/avaline-backend/internal/advisory"
	"github.com/kjannette/avaline-backend/internal/metrics"
	"github.com/kjannette/avaline-backend/internal/models"
	"github.com/kjannette/avaline-backend/internal/reply"
)

type Source interface {
	FetchObservations(ctx context.Context) ([]models.Observation, error)
}

type Notifier interface {
	Send(ctx context.Context, msg string) error
}

type AlertSchedulerConfig struct {
	Interval   time.Duration // e.g. 30*time.Minute
	EventName  string
	Thresholds advisory.Thresholds
}

// AlertScheduler periodically recomputes metrics and sends an alert when
// today's floor drops below the floor seen on the previous check.
type AlertScheduler struct {
	source Source
	notify Notifier
	cfg    AlertSchedulerConfig

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	lastFloor *float64
}

func NewAlertScheduler(source Source, notify Notifier, cfg AlertSchedulerConfig) *AlertScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	return &AlertScheduler{
		source: source,
		notify: notify,
		cfg:    cfg,
	}
}

func (s *AlertScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		fmt.Println("[ALERTS] Already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	go func() {
		// First check sets the baseline floor.
		s.runOnce()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				s.runOnce()
			}
		}
	}()

	fmt.Printf("[ALERTS] Started (every %s)\n", s.cfg.Interval)
}

func (s *AlertScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	fmt.Println("[ALERTS] Stopped")
}

func (s *AlertScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// CheckNow runs one check outside the normal schedule.
func (s *AlertScheduler) CheckNow(ctx context.Context) error {
	obs, err := s.source.FetchObservations(ctx)
	if err != nil {
		return fmt.Errorf("fetch observations: %w", err)
	}

	msg, ok := s.evaluate(metrics.Compute(obs))
	if !ok {
		return nil
	}
	if err := s.notify.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (s *AlertScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := s.CheckNow(ctx); err != nil {
		fmt.Printf("[ALERTS] Check failed: %v\n", err)
	}
}

// evaluate records the current floor and returns an alert message when it
// is lower than the previous one.
func (s *AlertScheduler) evaluate(m models.Metrics) (string, bool) {
	if m.Current == nil || math.IsNaN(*m.Current) || math.IsInf(*m.Current, 0) {
		return "", false
	}

	s.mu.Lock()
	prev := s.lastFloor
	cur := *m.Current
	s.lastFloor = &cur
	s.mu.Unlock()

	if prev == nil {
		fmt.Println("[ALERTS] Baseline floor recorded")
		return "", false
	}
	if cur >= *prev {
		return "", false
	}

	headline := fmt.Sprintf("Price drop for %s", s.cfg.EventName)
	if m.Low7d != nil && cur <= *m.Low7d {
		headline += ", new weekly low"
	}
	return fmt.Sprintf("%s (advice: %s). %s", headline, s.cfg.Thresholds.Classify(m.Current), reply.ComposeTemplate(m)), true
}
