package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
	"github.com/shandysiswandi/otpdeck/internal/pkg/migration"
	"github.com/shandysiswandi/otpdeck/internal/pkg/secretbox"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
)

type MigrationImportInput struct {
	URL string `validate:"required"`
	// IdempotencyKey makes retried imports safe; empty disables the guard.
	IdempotencyKey string
}

type MigrationImportOutput struct {
	Imported int
	TokenIDs []int64
}

// MigrationImport decodes a vendor migration payload and imports every valid
// account in one transaction, registering each with the scheduler.
func (s *Usecase) MigrationImport(ctx context.Context, in MigrationImportInput) (*MigrationImportOutput, error) {
	ctx, span := s.startSpan(ctx, "MigrationImport")
	defer span.End()

	if _, err := s.authenticated(ctx); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var out *MigrationImportOutput
	work := func(ctx context.Context) error {
		var err error
		out, err = s.importPayload(ctx, in.URL)
		return err
	}

	if key := strings.TrimSpace(in.IdempotencyKey); key != "" {
		if err := s.idemp.Exec(ctx, "vault:import:"+key, work); err != nil {
			return nil, err
		}
		return out, nil
	}

	if err := work(ctx); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Usecase) importPayload(ctx context.Context, rawURL string) (*MigrationImportOutput, error) {
	accounts, err := s.decoder.Decode(ctx, rawURL)
	if errors.Is(err, migration.ErrNoAccounts) {
		return nil, goerror.NewBusiness("no accounts found in migration payload", goerror.CodeInvalidInput)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to decode migration payload", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	stored := make([]entity.StoredToken, 0, len(accounts))
	for _, acc := range accounts {
		id := s.uid.Generate()

		ciphertext, err := s.box.Encrypt([]byte(acc.Secret), secretbox.Scope{
			TokenID: id,
			Purpose: secretbox.PurposeTokenSecret,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to encrypt imported secret", "token_id", id, "error", err)
			return nil, goerror.NewServer(err)
		}

		stored = append(stored, entity.StoredToken{
			Token: entity.Token{
				ID:        id,
				Label:     acc.Name,
				Issuer:    acc.Issuer,
				Secret:    acc.Secret,
				Digits:    acc.Digits,
				Period:    acc.Period,
				Algorithm: entity.AlgorithmFromString(acc.Algorithm),
				Source:    entity.SourceMigration,
				CreatedAt: now,
			},
			SecretCiphertext: ciphertext,
		})
	}

	if err := s.repoDB.CreateTokens(ctx, stored); err != nil {
		slog.ErrorContext(ctx, "failed to repo create imported tokens", "count", len(stored), "error", err)
		return nil, goerror.NewServer(err)
	}

	for _, st := range stored {
		if err := s.sched.Register(ctx, s.schedulerToken(st.Token)); err != nil {
			slog.WarnContext(ctx, "failed to register imported token", "token_id", st.ID, "error", err)
		}
	}

	ids := lo.Map(stored, func(st entity.StoredToken, _ int) int64 { return st.ID })

	s.goroutine.Go(ctx, func(ctx context.Context) error {
		return s.repoMessaging.PublishImportCompleted(ctx, ImportCompletedEvent{
			Imported: len(ids),
			TokenIDs: ids,
		})
	})

	return &MigrationImportOutput{Imported: len(ids), TokenIDs: ids}, nil
}
