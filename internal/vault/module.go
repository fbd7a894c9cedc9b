package vault

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpdeck/internal/pkg/clock"
	"github.com/shandysiswandi/otpdeck/internal/pkg/config"
	"github.com/shandysiswandi/otpdeck/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpdeck/internal/pkg/hash"
	"github.com/shandysiswandi/otpdeck/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpdeck/internal/pkg/instrument"
	"github.com/shandysiswandi/otpdeck/internal/pkg/jwt"
	"github.com/shandysiswandi/otpdeck/internal/pkg/messaging"
	"github.com/shandysiswandi/otpdeck/internal/pkg/migration"
	"github.com/shandysiswandi/otpdeck/internal/pkg/otp"
	"github.com/shandysiswandi/otpdeck/internal/pkg/router"
	"github.com/shandysiswandi/otpdeck/internal/pkg/scheduler"
	"github.com/shandysiswandi/otpdeck/internal/pkg/secretbox"
	"github.com/shandysiswandi/otpdeck/internal/pkg/storage"
	"github.com/shandysiswandi/otpdeck/internal/pkg/uid"
	"github.com/shandysiswandi/otpdeck/internal/pkg/validator"
	"github.com/shandysiswandi/otpdeck/internal/vault/inbound"
	"github.com/shandysiswandi/otpdeck/internal/vault/outbound/db"
	"github.com/shandysiswandi/otpdeck/internal/vault/outbound/mq"
	"github.com/shandysiswandi/otpdeck/internal/vault/usecase"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   *redis.Client              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Blob        storage.BlobStore          `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	Scheduler   *scheduler.Scheduler       `validate:"required"`
	SecretBox   secretbox.Encryptor        `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Bcrypt      hash.Hash                  `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Totp        otp.OTP                    `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

// New wires the vault module: outbound adapters, usecases and HTTP endpoints.
// It also loads persisted tokens into the scheduler.
func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbVault := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbVault,
		RepoMessaging: repoMsg,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Blob:          dep.Blob,
		Bcrypt:        dep.Bcrypt,
		SecretBox:     dep.SecretBox,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Totp:          dep.Totp,
		Scheduler:     dep.Scheduler,
		Decoder:       migration.NewDecoder(),
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	if err := uc.Start(ctx); err != nil {
		return err
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
