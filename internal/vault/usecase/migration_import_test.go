package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
	"github.com/shandysiswandi/otpdeck/internal/pkg/migration"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
)

func TestMigrationImport(t *testing.T) {
	accounts := []migration.Account{
		{Issuer: "Example", Name: "user@example.com", Secret: "GEZDGNBVGY3TQOJQ", Digits: 6, Algorithm: "SHA1", Period: 30},
		{Issuer: "Other", Name: "admin@example.com", Secret: "MFRGGZDF", Digits: 8, Algorithm: "SHA256", Period: 30},
	}

	t.Run("ImportsAllAccounts", func(t *testing.T) {
		// Arrange
		env := defaultEnv(t)
		env.decoder.accounts = accounts

		// Act
		out, err := env.uc.MigrationImport(authCtx(), MigrationImportInput{URL: "otpauth-migration://offline?data=x"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Imported != 2 || len(out.TokenIDs) != 2 {
			t.Fatalf("unexpected output: %+v", out)
		}
		if len(env.db.tokens) != 2 {
			t.Fatalf("expected 2 persisted tokens, got %d", len(env.db.tokens))
		}
		if env.sched.registeredCount() != 2 {
			t.Fatalf("expected 2 scheduler registrations")
		}

		first := env.db.tokens[out.TokenIDs[0]]
		if first.Source != entity.SourceMigration {
			t.Fatalf("expected migration source, got %v", first.Source)
		}
		if len(first.SecretCiphertext) == 0 {
			t.Fatalf("expected encrypted secret at rest")
		}

		if err := env.grm.Wait(); err != nil {
			t.Fatalf("unexpected goroutine error: %v", err)
		}
		env.mq.mu.Lock()
		defer env.mq.mu.Unlock()
		if len(env.mq.imported) != 1 || env.mq.imported[0].Imported != 2 {
			t.Fatalf("expected one import event, got %+v", env.mq.imported)
		}
	})

	t.Run("IdempotencyKeyGuardsRetry", func(t *testing.T) {
		// Arrange
		env := defaultEnv(t)
		env.decoder.accounts = accounts

		// Act
		_, err := env.uc.MigrationImport(authCtx(), MigrationImportInput{
			URL:            "otpauth-migration://offline?data=x",
			IdempotencyKey: "req-42",
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		env.idemp.mu.Lock()
		defer env.idemp.mu.Unlock()
		if len(env.idemp.keys) != 1 || env.idemp.keys[0] != "vault:import:req-42" {
			t.Fatalf("expected namespaced idempotency key, got %v", env.idemp.keys)
		}
	})

	t.Run("NoIdempotencyWithoutKey", func(t *testing.T) {
		env := defaultEnv(t)
		env.decoder.accounts = accounts

		if _, err := env.uc.MigrationImport(authCtx(), MigrationImportInput{URL: "otpauth-migration://offline?data=x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		env.idemp.mu.Lock()
		defer env.idemp.mu.Unlock()
		if len(env.idemp.keys) != 0 {
			t.Fatalf("expected idempotency bypassed without key, got %v", env.idemp.keys)
		}
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		// Arrange
		env := defaultEnv(t)
		env.decoder.err = migration.ErrNoAccounts

		// Act
		_, err := env.uc.MigrationImport(authCtx(), MigrationImportInput{URL: "otpauth-migration://offline?data=x"})

		// Assert
		assertBusinessCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := defaultEnv(t)

		_, err := env.uc.MigrationImport(context.Background(), MigrationImportInput{URL: "otpauth-migration://offline?data=x"})

		assertBusinessCode(t, err, goerror.CodeUnauthorized)
	})
}
