package usecase

import (
	"context"

	"github.com/shandysiswandi/otpdeck/internal/pkg/clock"
	"github.com/shandysiswandi/otpdeck/internal/pkg/config"
	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
	"github.com/shandysiswandi/otpdeck/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpdeck/internal/pkg/hash"
	"github.com/shandysiswandi/otpdeck/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpdeck/internal/pkg/instrument"
	"github.com/shandysiswandi/otpdeck/internal/pkg/jwt"
	"github.com/shandysiswandi/otpdeck/internal/pkg/migration"
	"github.com/shandysiswandi/otpdeck/internal/pkg/otp"
	"github.com/shandysiswandi/otpdeck/internal/pkg/scheduler"
	"github.com/shandysiswandi/otpdeck/internal/pkg/secretbox"
	"github.com/shandysiswandi/otpdeck/internal/pkg/storage"
	"github.com/shandysiswandi/otpdeck/internal/pkg/uid"
	"github.com/shandysiswandi/otpdeck/internal/pkg/validator"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
	"go.opentelemetry.io/otel/trace"
)

type TokenRegisteredEvent struct {
	TokenID int64
	Label   string
	Issuer  string
	Source  string
}

type ImportCompletedEvent struct {
	Imported int
	Skipped  int
	TokenIDs []int64
}

type repoMessaging interface {
	PublishTokenRegistered(ctx context.Context, msg TokenRegisteredEvent) error
	PublishImportCompleted(ctx context.Context, msg ImportCompletedEvent) error
}

type repoDB interface {
	CreateToken(ctx context.Context, in entity.StoredToken) error
	CreateTokens(ctx context.Context, in []entity.StoredToken) error
	GetToken(ctx context.Context, id int64) (*entity.StoredToken, error)
	ListTokens(ctx context.Context) ([]entity.StoredToken, error)
	DeleteToken(ctx context.Context, id int64) error
}

type codeScheduler interface {
	Register(ctx context.Context, t scheduler.Token) error
	Unregister(id int64)
	Show()
	Hide()
	Snapshot(id int64) (scheduler.Snapshot, bool)
	Snapshots() map[int64]scheduler.Snapshot
	Subscribe() (<-chan struct{}, func())
	Ticks() uint64
}

type migrationDecoder interface {
	Decode(ctx context.Context, rawURL string) ([]migration.Account, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	blob          storage.BlobStore
	bcrypt        hash.Hash
	box           secretbox.Encryptor
	uid           uid.NumberID
	uuid          uid.StringID
	totp          otp.OTP
	sched         codeScheduler
	decoder       migrationDecoder
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	Blob          storage.BlobStore
	Bcrypt        hash.Hash
	SecretBox     secretbox.Encryptor
	UID           uid.NumberID
	UUID          uid.StringID
	Totp          otp.OTP
	Scheduler     codeScheduler
	Decoder       migrationDecoder
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		blob:          dep.Blob,
		bcrypt:        dep.Bcrypt,
		box:           dep.SecretBox,
		uid:           dep.UID,
		uuid:          dep.UUID,
		totp:          dep.Totp,
		sched:         dep.Scheduler,
		decoder:       dep.Decoder,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return clm, nil
}

// decryptSecret recovers a token's plaintext Base32 secret from its stored
// ciphertext.
func (s *Usecase) decryptSecret(t *entity.StoredToken) (string, error) {
	plain, err := s.box.Decrypt(t.SecretCiphertext, secretbox.Scope{
		TokenID: t.ID,
		Purpose: secretbox.PurposeTokenSecret,
	})
	if err != nil {
		return "", err
	}

	return string(plain), nil
}

func (s *Usecase) schedulerToken(t entity.Token) scheduler.Token {
	return scheduler.Token{
		ID:        t.ID,
		Secret:    t.Secret,
		Digits:    t.Digits,
		Period:    t.Period,
		Algorithm: t.Algorithm.String(),
	}
}
