package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/otpdeck/internal/pkg/scheduler"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
)

func TestTokenList(t *testing.T) {
	t.Run("JoinsSnapshots", func(t *testing.T) {
		// Arrange: two stored tokens, only one known to the scheduler.
		env := defaultEnv(t)
		env.db.tokens[1] = entity.StoredToken{Token: entity.Token{ID: 1, Label: "a", Digits: 6, Period: 30, Algorithm: entity.AlgorithmSHA1}}
		env.db.tokens[2] = entity.StoredToken{Token: entity.Token{ID: 2, Label: "b", Digits: 6, Period: 30, Algorithm: entity.AlgorithmSHA1}}
		env.sched.snaps[1] = scheduler.Snapshot{Code: "123456", Remaining: 12, Period: 30}
		env.sched.ticks = 42

		// Act
		out, err := env.uc.TokenList(authCtx())

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Tokens) != 2 {
			t.Fatalf("expected 2 tokens, got %d", len(out.Tokens))
		}
		if out.Ticks != 42 {
			t.Fatalf("expected ticks 42, got %d", out.Ticks)
		}

		byID := map[int64]entity.TokenWithCode{}
		for _, tok := range out.Tokens {
			byID[tok.ID] = tok
		}
		if byID[1].Code != "123456" || byID[1].Remaining != 12 {
			t.Fatalf("expected live snapshot joined: %+v", byID[1])
		}
		if byID[2].Code != "" || byID[2].Remaining != 0 {
			t.Fatalf("expected empty snapshot for unregistered token: %+v", byID[2])
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := defaultEnv(t)

		if _, err := env.uc.TokenList(context.Background()); err == nil {
			t.Fatalf("expected authentication error")
		}
	})
}
