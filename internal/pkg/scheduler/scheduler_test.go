package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls map[string]int
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{calls: make(map[string]int)}
}

func (g *fakeGenerator) GenerateCode(secret string, _, period int, _ string, at time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls[secret]++

	if secret == "BAD" {
		return "", errors.New("malformed secret")
	}

	// Encode the time window so a regenerated code is observably different.
	window := at.Unix() / int64(period)

	return secret + "-" + time.Unix(window, 0).UTC().Format("150405"), nil
}

func (g *fakeGenerator) callCount(secret string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.calls[secret]
}

// newTestScheduler returns a scheduler whose physical ticker never fires, so
// tests drive ticks directly through tick().
func newTestScheduler(clk *fakeClock, gen *fakeGenerator) *Scheduler {
	return New(Config{Clock: clk, Generator: gen, Interval: time.Hour})
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

func TestRegister(t *testing.T) {
	t.Run("ComputesSnapshotImmediately", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Unix(95, 0)}
		gen := newFakeGenerator()
		s := newTestScheduler(clk, gen)

		// Act
		err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 30, Algorithm: "SHA1"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		snap, ok := s.Snapshot(1)
		if !ok {
			t.Fatalf("expected snapshot for registered token")
		}
		if snap.Remaining != 25 {
			t.Fatalf("expected remaining 25 at unix 95, got %d", snap.Remaining)
		}
		if snap.Period != 30 {
			t.Fatalf("expected period 30, got %d", snap.Period)
		}
		if snap.Code == "" || snap.Code == PlaceholderCode {
			t.Fatalf("expected a real code, got %q", snap.Code)
		}
	})

	t.Run("RejectsInvalidPeriod", func(t *testing.T) {
		s := newTestScheduler(&fakeClock{now: time.Unix(0, 0)}, newFakeGenerator())

		if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 0}); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("expected ErrInvalidPeriod, got %v", err)
		}
	})

	t.Run("RejectsInvalidDigits", func(t *testing.T) {
		s := newTestScheduler(&fakeClock{now: time.Unix(0, 0)}, newFakeGenerator())

		if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 0, Period: 30}); !errors.Is(err, ErrInvalidDigits) {
			t.Fatalf("expected ErrInvalidDigits, got %v", err)
		}
	})

	t.Run("ReplacesExistingToken", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Unix(100, 0)}
		s := newTestScheduler(clk, newFakeGenerator())
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "OLD", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "NEW", Digits: 6, Period: 60}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Assert
		snap, _ := s.Snapshot(1)
		if snap.Period != 60 {
			t.Fatalf("expected replaced period 60, got %d", snap.Period)
		}
		if s.Stats().Registered != 1 {
			t.Fatalf("expected one registered token, got %d", s.Stats().Registered)
		}
	})
}

func TestTick(t *testing.T) {
	t.Run("BatchesByPeriod", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Unix(1000, 0)}
		gen := newFakeGenerator()
		s := newTestScheduler(clk, gen)
		for i := int64(1); i <= 5; i++ {
			if err := s.Register(context.Background(), Token{ID: i, Secret: "AAA", Digits: 6, Period: 30}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if err := s.Register(context.Background(), Token{ID: 6, Secret: "BBB", Digits: 6, Period: 60}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		clk.advance(time.Second)
		s.tick()

		// Assert: six tokens but only two distinct periods were computed.
		if got := s.Stats().PeriodComputations; got != 2 {
			t.Fatalf("expected 2 period computations, got %d", got)
		}

		clk.advance(time.Second)
		s.tick()
		if got := s.Stats().PeriodComputations; got != 4 {
			t.Fatalf("expected 4 period computations after second tick, got %d", got)
		}
	})

	t.Run("RegeneratesOnlyAtBoundary", func(t *testing.T) {
		// Arrange: register mid-window at unix 95, remaining 25.
		clk := &fakeClock{now: time.Unix(95, 0)}
		gen := newFakeGenerator()
		s := newTestScheduler(clk, gen)
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		before, _ := s.Snapshot(1)

		// Act: walk up to one second before the boundary.
		for clk.Now().Unix() < 119 {
			clk.advance(time.Second)
			s.tick()
		}

		// Assert: same code the whole window, one generation from Register.
		during, _ := s.Snapshot(1)
		if during.Code != before.Code {
			t.Fatalf("code changed mid-window: %q -> %q", before.Code, during.Code)
		}
		if during.Remaining != 1 {
			t.Fatalf("expected remaining 1 at unix 119, got %d", during.Remaining)
		}
		if n := gen.callCount("AAA"); n != 1 {
			t.Fatalf("expected 1 generation before boundary, got %d", n)
		}

		// Act: cross the boundary.
		clk.advance(time.Second)
		s.tick()

		// Assert
		after, _ := s.Snapshot(1)
		if after.Code == before.Code {
			t.Fatalf("expected a new code after the boundary")
		}
		if after.Remaining != 30 {
			t.Fatalf("expected remaining 30 after boundary, got %d", after.Remaining)
		}
		if n := gen.callCount("AAA"); n != 2 {
			t.Fatalf("expected 2 generations total, got %d", n)
		}
	})

	t.Run("RegeneratesWhenRegisteredOnBoundary", func(t *testing.T) {
		// Arrange: registering exactly on a boundary caches remaining == period,
		// so the very next tick must still produce a fresh code.
		clk := &fakeClock{now: time.Unix(90, 0)}
		gen := newFakeGenerator()
		s := newTestScheduler(clk, gen)
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		clk.advance(time.Second)
		s.tick()

		// Assert
		if n := gen.callCount("AAA"); n != 2 {
			t.Fatalf("expected regeneration on first tick after boundary registration, got %d calls", n)
		}
	})

	t.Run("PlaceholderOnGenerationFailure", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Unix(95, 0)}
		gen := newFakeGenerator()
		s := newTestScheduler(clk, gen)
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "BAD", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Assert: failing token stays registered and counts down.
		snap, ok := s.Snapshot(1)
		if !ok {
			t.Fatalf("expected failing token to stay registered")
		}
		if snap.Code != PlaceholderCode {
			t.Fatalf("expected placeholder code, got %q", snap.Code)
		}

		clk.advance(time.Second)
		s.tick()
		snap, _ = s.Snapshot(1)
		if snap.Remaining != 24 {
			t.Fatalf("expected countdown to continue, got remaining %d", snap.Remaining)
		}
	})

	t.Run("WarnsOnGenerationFailure", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
		defer slog.SetDefault(prev)

		clk := &fakeClock{now: time.Unix(95, 0)}
		s := newTestScheduler(clk, newFakeGenerator())

		// Act
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "BAD", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Assert
		if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "placeholder") {
			t.Fatalf("expected a warning about the placeholder, got %q", buf.String())
		}
	})

	t.Run("IncrementsTickCounter", func(t *testing.T) {
		clk := &fakeClock{now: time.Unix(0, 0)}
		s := newTestScheduler(clk, newFakeGenerator())

		s.tick()
		s.tick()

		if got := s.Ticks(); got != 2 {
			t.Fatalf("expected 2 ticks, got %d", got)
		}
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("OneCoalescedSignalPerTick", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Unix(95, 0)}
		s := newTestScheduler(clk, newFakeGenerator())
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ch, cancel := s.Subscribe()
		defer cancel()

		// Act: two ticks without draining.
		clk.advance(time.Second)
		s.tick()
		clk.advance(time.Second)
		s.tick()

		// Assert: exactly one pending signal.
		select {
		case <-ch:
		default:
			t.Fatalf("expected a pending signal")
		}
		select {
		case <-ch:
			t.Fatalf("expected signals to coalesce, got a second one")
		default:
		}
	})

	t.Run("CancelStopsDelivery", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Unix(0, 0)}
		s := newTestScheduler(clk, newFakeGenerator())
		ch, cancel := s.Subscribe()

		// Act
		cancel()
		s.tick()

		// Assert
		select {
		case <-ch:
			t.Fatalf("expected no signal after cancel")
		default:
		}
	})
}

func TestVisibility(t *testing.T) {
	t.Run("TickerNeedsDemandAndTokens", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Unix(0, 0)}
		s := newTestScheduler(clk, newFakeGenerator())

		// Assert: no demand, no tokens.
		if s.running() {
			t.Fatalf("expected stopped scheduler after New")
		}

		// Demand alone is not enough.
		s.Show()
		if s.running() {
			t.Fatalf("expected stopped scheduler with no tokens")
		}

		// Demand plus a token starts the ticker.
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !s.running() {
			t.Fatalf("expected running scheduler after Show and Register")
		}
	})

	t.Run("HideStopsAndShowIsIdempotent", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Unix(0, 0)}
		s := newTestScheduler(clk, newFakeGenerator())
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s.Show()
		s.Show() // duplicate demand signal must be a no-op

		// Act
		s.Hide()
		s.Hide()

		// Assert
		if s.running() {
			t.Fatalf("expected stopped scheduler after Hide")
		}

		s.Show()
		if !s.running() {
			t.Fatalf("expected scheduler to restart on Show")
		}
	})

	t.Run("UnregisterLastTokenStopsTicker", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Unix(0, 0)}
		s := newTestScheduler(clk, newFakeGenerator())
		s.Show()
		if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.Register(context.Background(), Token{ID: 2, Secret: "BBB", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		s.Unregister(1)

		// Assert: one token left, still running.
		if !s.running() {
			t.Fatalf("expected running scheduler with one token left")
		}
		if _, ok := s.Snapshot(1); ok {
			t.Fatalf("expected snapshot gone after unregister")
		}

		s.Unregister(2)
		if s.running() {
			t.Fatalf("expected stopped scheduler after last unregister")
		}

		// Stopped ticker does not restart on its own; a new Register does it.
		if err := s.Register(context.Background(), Token{ID: 3, Secret: "CCC", Digits: 6, Period: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !s.running() {
			t.Fatalf("expected scheduler to restart on next Register")
		}
	})
}

func TestClose(t *testing.T) {
	// Arrange
	clk := &fakeClock{now: time.Unix(0, 0)}
	s := newTestScheduler(clk, newFakeGenerator())
	s.Show()
	if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 30}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Act
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert
	if s.running() {
		t.Fatalf("expected stopped scheduler after Close")
	}
}

func TestSnapshots(t *testing.T) {
	// Arrange
	clk := &fakeClock{now: time.Unix(95, 0)}
	s := newTestScheduler(clk, newFakeGenerator())
	if err := s.Register(context.Background(), Token{ID: 1, Secret: "AAA", Digits: 6, Period: 30}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Register(context.Background(), Token{ID: 2, Secret: "BBB", Digits: 6, Period: 60}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Act
	snaps := s.Snapshots()

	// Assert
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[2].Period != 60 {
		t.Fatalf("expected period 60 for token 2, got %d", snaps[2].Period)
	}
}
