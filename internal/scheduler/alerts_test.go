package scheduler_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kjannette/avaline-backend/internal/advisory"
	"github.com/kjannette/avaline-backend/internal/models"
	"github.com/kjannette/avaline-backend/internal/scheduler"
)

type fakeSource struct {
	mu  sync.Mutex
	obs []models.Observation
	err error
}

func (f *fakeSource) set(obs []models.Observation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = obs
}

func (f *fakeSource) FetchObservations(ctx context.Context) ([]models.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.obs, f.err
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func obs(price float64, ts string) models.Observation {
	return models.Observation{Vendor: "StubHub", Quantity: 2, Price: price, Timestamp: ts}
}

func newScheduler(src *fakeSource, n *fakeNotifier) *scheduler.AlertScheduler {
	return scheduler.NewAlertScheduler(src, n, scheduler.AlertSchedulerConfig{
		Interval:   time.Hour,
		EventName:  "East Rutherford Night 1",
		Thresholds: advisory.DefaultThresholds,
	})
}

func TestCheckNow_FirstCheckIsBaseline(t *testing.T) {
	src := &fakeSource{obs: []models.Observation{obs(500, "2025-09-14T10:00:00Z")}}
	n := &fakeNotifier{}
	s := newScheduler(src, n)

	if err := s.CheckNow(context.Background()); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}
	if n.count() != 0 {
		t.Fatalf("baseline check should not alert, got %d messages", n.count())
	}
}

func TestCheckNow_AlertsOnDrop(t *testing.T) {
	src := &fakeSource{obs: []models.Observation{obs(500, "2025-09-14T10:00:00Z")}}
	n := &fakeNotifier{}
	s := newScheduler(src, n)
	ctx := context.Background()

	if err := s.CheckNow(ctx); err != nil {
		t.Fatalf("baseline: %v", err)
	}

	src.set([]models.Observation{
		obs(500, "2025-09-14T10:00:00Z"),
		obs(380, "2025-09-14T11:00:00Z"),
	})
	if err := s.CheckNow(ctx); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}
	if n.count() != 1 {
		t.Fatalf("expected one alert, got %d", n.count())
	}
	msg := n.msgs[0]
	for _, want := range []string{"Price drop for East Rutherford Night 1", "advice: encourage", "$380"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("alert %q missing %q", msg, want)
		}
	}

	// Same floor again does not re-alert.
	if err := s.CheckNow(ctx); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}
	if n.count() != 1 {
		t.Fatalf("unchanged floor should not alert, got %d", n.count())
	}
}

func TestCheckNow_NoAlertOnRise(t *testing.T) {
	src := &fakeSource{obs: []models.Observation{obs(400, "2025-09-14T10:00:00Z")}}
	n := &fakeNotifier{}
	s := newScheduler(src, n)
	ctx := context.Background()

	s.CheckNow(ctx)
	src.set([]models.Observation{obs(450, "2025-09-15T10:00:00Z")})
	if err := s.CheckNow(ctx); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}
	if n.count() != 0 {
		t.Fatalf("rising floor should not alert, got %d", n.count())
	}
}

func TestCheckNow_EmptyDataIsQuiet(t *testing.T) {
	src := &fakeSource{}
	n := &fakeNotifier{}
	s := newScheduler(src, n)

	if err := s.CheckNow(context.Background()); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}
	if n.count() != 0 {
		t.Fatal("no data should not alert")
	}
}

func TestCheckNow_Errors(t *testing.T) {
	src := &fakeSource{err: errors.New("sheet unavailable")}
	s := newScheduler(src, &fakeNotifier{})
	if err := s.CheckNow(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}

	src = &fakeSource{obs: []models.Observation{obs(500, "2025-09-14T10:00:00Z")}}
	n := &fakeNotifier{err: errors.New("webhook 500")}
	s = newScheduler(src, n)
	s.CheckNow(context.Background())
	src.set([]models.Observation{obs(300, "2025-09-14T12:00:00Z")})
	if err := s.CheckNow(context.Background()); err == nil {
		t.Fatal("expected notify error")
	}
}

func TestStartStop(t *testing.T) {
	src := &fakeSource{}
	s := newScheduler(src, &fakeNotifier{})

	if s.Running() {
		t.Fatal("should not be running before Start")
	}
	s.Start()
	s.Start()
	if !s.Running() {
		t.Fatal("should be running after Start")
	}
	s.Stop()
	s.Stop()
	if s.Running() {
		t.Fatal("should not be running after Stop")
	}
}

func TestCheckNow_IgnoresNonFiniteFloor(t *testing.T) {
	src := &fakeSource{obs: []models.Observation{obs(500, "2025-09-14T10:00:00Z")}}
	n := &fakeNotifier{}
	s := newScheduler(src, n)
	ctx := context.Background()

	if err := s.CheckNow(ctx); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	src.set([]models.Observation{obs(math.NaN(), "2025-09-14T11:00:00Z")})
	if err := s.CheckNow(ctx); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}
	if n.count() != 0 {
		t.Fatalf("non-finite floor should not alert, got %d", n.count())
	}

	// The baseline survives, so a real drop still alerts.
	src.set([]models.Observation{obs(420, "2025-09-14T12:00:00Z")})
	if err := s.CheckNow(ctx); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}
	if n.count() != 1 {
		t.Fatalf("expected one alert after the drop, got %d", n.count())
	}
}
