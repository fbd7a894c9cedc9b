package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/otpdeck/internal/pkg/clock"
	"go.uber.org/atomic"
)

var (
	// ErrInvalidPeriod is returned when a token has a non-positive rotation period.
	ErrInvalidPeriod = errors.New("scheduler: token period must be positive")

	// ErrInvalidDigits is returned when a token has a non-positive digit count.
	ErrInvalidDigits = errors.New("scheduler: token digits must be positive")
)

// PlaceholderCode is displayed for a token whose secret cannot produce a code.
// The token stays registered and its remaining seconds keep counting down.
const PlaceholderCode = "------"

// DefaultInterval is the physical ticker interval used when Config.Interval is zero.
const DefaultInterval = time.Second

// CodeGenerator produces a one-time code for a secret at a point in time.
//
// It must be deterministic for identical inputs and must report a malformed
// secret as an error instead of panicking.
type CodeGenerator interface {
	GenerateCode(secret string, digits, period int, algorithm string, at time.Time) (string, error)
}

// Token is the scheduler's view of a registered rotating code.
type Token struct {
	// ID uniquely identifies the token for its lifetime.
	ID int64
	// Secret is the Base32-encoded shared secret.
	Secret string
	// Digits is the code length.
	Digits int
	// Period is the rotation interval in seconds.
	Period int
	// Algorithm is the digest name: SHA1, SHA256 or SHA512.
	Algorithm string
}

// Snapshot is the cached display state of one token.
type Snapshot struct {
	// Code is the last computed code, or PlaceholderCode on generation failure.
	Code string
	// Remaining is the number of seconds until the code rotates.
	Remaining int
	// Period is the rotation interval copied at registration time.
	Period int
}

type entry struct {
	code      string
	remaining int
	period    int
}

// Stats exposes scheduler counters for observability.
type Stats struct {
	// Ticks is the number of completed tick passes.
	Ticks uint64
	// PeriodComputations counts boundary computations, one per distinct
	// period value per tick.
	PeriodComputations uint64
	// Registered is the number of tokens currently registered.
	Registered int
}

// Config holds the scheduler dependencies.
type Config struct {
	// Clock provides the shared time source.
	Clock clock.Clocker
	// Generator computes codes for registered tokens.
	Generator CodeGenerator
	// Interval overrides the physical ticker interval. Zero means DefaultInterval.
	Interval time.Duration
}

// Scheduler keeps the current code and remaining seconds of every registered
// token fresh on one shared clock.
//
// The physical ticker only runs while visibility demand is on and at least one
// token is registered; otherwise the scheduler consumes no scheduled resources.
// All cache mutation happens inside one mutex so a tick is a single atomic
// pass over the registered set.
type Scheduler struct {
	clock    clock.Clocker
	gen      CodeGenerator
	interval time.Duration

	mu        sync.Mutex
	tokens    map[int64]Token
	cache     map[int64]*entry
	subs      map[chan struct{}]struct{}
	shouldRun bool
	active    bool
	stop      chan struct{}

	// counted under mu; one increment per distinct period per tick
	periodComputations uint64

	ticks *atomic.Uint64
}

// New constructs a stopped Scheduler. It does not tick until Show is called
// and a token is registered.
func New(cfg Config) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Scheduler{
		clock:    cfg.Clock,
		gen:      cfg.Generator,
		interval: interval,
		tokens:   make(map[int64]Token),
		cache:    make(map[int64]*entry),
		subs:     make(map[chan struct{}]struct{}),
		ticks:    atomic.NewUint64(0),
	}
}

// Register inserts or fully replaces a token and immediately computes its code
// and remaining seconds from the current time. Registering the first token
// while visibility demand is on starts the ticker.
func (s *Scheduler) Register(ctx context.Context, t Token) error {
	if t.Period <= 0 {
		return ErrInvalidPeriod
	}
	if t.Digits <= 0 {
		return ErrInvalidDigits
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.tokens[t.ID] = t
	s.cache[t.ID] = &entry{
		code:      s.generate(ctx, t, now),
		remaining: t.Period - int(now.Unix()%int64(t.Period)),
		period:    t.Period,
	}

	s.startLocked()

	return nil
}

// Unregister removes the token's registration and cache. Removing the last
// token stops the ticker; it does not restart until the next Register or Show.
func (s *Scheduler) Unregister(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, id)
	delete(s.cache, id)

	if len(s.tokens) == 0 {
		s.stopLocked()
	}
}

// Show turns visibility demand on and starts the ticker when at least one
// token is registered. Duplicate signals are idempotent.
func (s *Scheduler) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shouldRun = true
	s.startLocked()
}

// Hide turns visibility demand off and unconditionally stops the ticker.
// Duplicate signals are idempotent.
func (s *Scheduler) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shouldRun = false
	s.stopLocked()
}

// Snapshot returns the cached state for a token id. The second return value is
// false when the id was never registered or has been unregistered.
func (s *Scheduler) Snapshot(id int64) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache[id]
	if !ok {
		return Snapshot{}, false
	}

	return Snapshot{Code: e.code, Remaining: e.remaining, Period: e.period}, true
}

// Snapshots returns the cached state of every registered token.
func (s *Scheduler) Snapshots() map[int64]Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]Snapshot, len(s.cache))
	for id, e := range s.cache {
		out[id] = Snapshot{Code: e.code, Remaining: e.remaining, Period: e.period}
	}

	return out
}

// Subscribe registers an observer channel that receives one coalesced signal
// per tick. The returned cancel func must be called to release the channel.
func (s *Scheduler) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}

	return ch, cancel
}

// Ticks returns the monotonically increasing tick counter.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}

// Stats returns current scheduler counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Ticks:              s.ticks.Load(),
		PeriodComputations: s.periodComputations,
		Registered:         len(s.tokens),
	}
}

// Close stops the ticker regardless of demand. Intended for service shutdown.
func (s *Scheduler) Close() error {
	s.Hide()
	return nil
}

// startLocked starts the run loop when demand is on and tokens exist.
// Callers must hold mu.
func (s *Scheduler) startLocked() {
	if s.active || !s.shouldRun || len(s.tokens) == 0 {
		return
	}

	s.active = true
	s.stop = make(chan struct{})
	go s.run(s.stop)
}

// stopLocked stops the run loop if it is running. Callers must hold mu.
func (s *Scheduler) stopLocked() {
	if !s.active {
		return
	}

	close(s.stop)
	s.active = false
}

func (s *Scheduler) run(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick recomputes remaining seconds for every registered token, batching the
// boundary computation by period value so work scales with the number of
// distinct periods rather than the number of tokens. A code is regenerated
// only when the new remaining is greater than the cached one (the counter
// wrapped past a boundary) or the cached remaining still equals the full
// period. A single observer signal fires after the whole pass.
func (s *Scheduler) tick() {
	ctx := context.Background()

	s.mu.Lock()

	now := s.clock.Now()
	secs := now.Unix()
	remainingByPeriod := make(map[int]int)

	for id, tok := range s.tokens {
		rem, ok := remainingByPeriod[tok.Period]
		if !ok {
			rem = tok.Period - int(secs%int64(tok.Period))
			remainingByPeriod[tok.Period] = rem
			s.periodComputations++
		}

		e := s.cache[id]
		if rem > e.remaining || e.remaining == e.period {
			e.code = s.generate(ctx, tok, now)
		}
		e.remaining = rem
	}

	subs := make([]chan struct{}, 0, len(s.subs))
	for ch := range s.subs {
		subs = append(subs, ch)
	}

	s.mu.Unlock()

	s.ticks.Inc()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default: // observer has an undelivered signal pending; coalesce
		}
	}
}

func (s *Scheduler) generate(ctx context.Context, t Token, at time.Time) string {
	code, err := s.gen.GenerateCode(t.Secret, t.Digits, t.Period, t.Algorithm, at)
	if err != nil {
		slog.WarnContext(ctx, "code generation failed, showing placeholder", "token_id", t.ID, "error", err)
		return PlaceholderCode
	}

	return code
}
