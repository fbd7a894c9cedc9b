package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shandysiswandi/otpdeck/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpdeck/internal/pkg/jwt"
	"github.com/shandysiswandi/otpdeck/internal/pkg/migration"
	"github.com/shandysiswandi/otpdeck/internal/pkg/scheduler"
	"github.com/shandysiswandi/otpdeck/internal/pkg/storage"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
)

type fakeRepoDB struct {
	mu        sync.Mutex
	tokens    map[int64]entity.StoredToken
	createErr error
	listErr   error
	deleteErr error
}

func newFakeRepoDB() *fakeRepoDB {
	return &fakeRepoDB{tokens: make(map[int64]entity.StoredToken)}
}

func (r *fakeRepoDB) CreateToken(_ context.Context, in entity.StoredToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	r.tokens[in.ID] = in

	return nil
}

func (r *fakeRepoDB) CreateTokens(ctx context.Context, in []entity.StoredToken) error {
	for _, st := range in {
		if err := r.CreateToken(ctx, st); err != nil {
			return err
		}
	}

	return nil
}

func (r *fakeRepoDB) GetToken(_ context.Context, id int64) (*entity.StoredToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.tokens[id]
	if !ok {
		return nil, nil
	}

	return &st, nil
}

func (r *fakeRepoDB) ListTokens(_ context.Context) ([]entity.StoredToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}

	out := make([]entity.StoredToken, 0, len(r.tokens))
	for _, st := range r.tokens {
		out = append(out, st)
	}

	return out, nil
}

func (r *fakeRepoDB) DeleteToken(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.tokens, id)

	return nil
}

type fakeRepoMessaging struct {
	mu         sync.Mutex
	registered []TokenRegisteredEvent
	imported   []ImportCompletedEvent
}

func (m *fakeRepoMessaging) PublishTokenRegistered(_ context.Context, msg TokenRegisteredEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registered = append(m.registered, msg)

	return nil
}

func (m *fakeRepoMessaging) PublishImportCompleted(_ context.Context, msg ImportCompletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.imported = append(m.imported, msg)

	return nil
}

type fakeScheduler struct {
	mu           sync.Mutex
	registered   map[int64]scheduler.Token
	unregistered []int64
	shows        int
	hides        int
	snaps        map[int64]scheduler.Snapshot
	ticks        uint64
	signals      chan struct{}
	registerErr  error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		registered: make(map[int64]scheduler.Token),
		snaps:      make(map[int64]scheduler.Snapshot),
		signals:    make(chan struct{}, 1),
	}
}

func (s *fakeScheduler) Register(_ context.Context, t scheduler.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registerErr != nil {
		return s.registerErr
	}
	s.registered[t.ID] = t

	return nil
}

func (s *fakeScheduler) Unregister(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.registered, id)
	s.unregistered = append(s.unregistered, id)
}

func (s *fakeScheduler) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shows++
}

func (s *fakeScheduler) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hides++
}

func (s *fakeScheduler) Snapshot(id int64) (scheduler.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snaps[id]

	return snap, ok
}

func (s *fakeScheduler) Snapshots() map[int64]scheduler.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]scheduler.Snapshot, len(s.snaps))
	for id, snap := range s.snaps {
		out[id] = snap
	}

	return out
}

func (s *fakeScheduler) Subscribe() (<-chan struct{}, func()) {
	return s.signals, func() {}
}

func (s *fakeScheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ticks
}

func (s *fakeScheduler) registeredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.registered)
}

type fakeDecoder struct {
	accounts []migration.Account
	err      error
}

func (d *fakeDecoder) Decode(context.Context, string) ([]migration.Account, error) {
	return d.accounts, d.err
}

type fakeIdempotency struct {
	mu   sync.Mutex
	keys []string
}

func (i *fakeIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (i *fakeIdempotency) MarkCompleted(context.Context, string, time.Duration) error {
	return nil
}

func (i *fakeIdempotency) MarkFailed(context.Context, string, time.Duration) error {
	return nil
}

func (i *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	i.mu.Lock()
	i.keys = append(i.keys, key)
	i.mu.Unlock()

	return fn(ctx)
}

type fakeJWT struct {
	err error
}

func (j *fakeJWT) Generate(sessionID, vaultName string) (string, error) {
	if j.err != nil {
		return "", j.err
	}

	return "jwt-" + sessionID + "-" + vaultName, nil
}

func (j *fakeJWT) Verify(string) (jwt.Claims, error) {
	return jwt.Claims{}, errors.New("not implemented")
}

type fakeBlob struct {
	mu   sync.Mutex
	objs map[string][]byte
	err  error
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objs: make(map[string][]byte)}
}

func (b *fakeBlob) Put(_ context.Context, key string, data []byte, _ storage.PutOptions) (storage.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return storage.ObjectInfo{}, b.err
	}
	b.objs[key] = data

	return storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (b *fakeBlob) Get(_ context.Context, key string) ([]byte, storage.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.objs[key]
	if !ok {
		return nil, storage.ObjectInfo{}, errors.New("not found")
	}

	return data, storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (b *fakeBlob) Close() error { return nil }

type counterUID struct {
	mu   sync.Mutex
	next int64
}

func (u *counterUID) Generate() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.next++

	return u.next
}

type fixedUUID struct{}

func (fixedUUID) Generate() string { return "uuid-1" }

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func yamlConfig(passphraseHash string, startVisible bool) string {
	return fmt.Sprintf(`
app:
  name: otpdeck
modules:
  vault:
    passphrase_hash: %q
    session_ttl_minutes: 60
    start_visible: %t
`, passphraseHash, startVisible)
}
