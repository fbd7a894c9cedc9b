package usecase

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
)

type TokenListOutput struct {
	Tokens []entity.TokenWithCode
	Ticks  uint64
}

// TokenList returns every stored token joined with its live code snapshot.
// Secrets are never part of the response; a token missing from the scheduler
// cache shows an empty code.
func (s *Usecase) TokenList(ctx context.Context) (*TokenListOutput, error) {
	ctx, span := s.startSpan(ctx, "TokenList")
	defer span.End()

	if _, err := s.authenticated(ctx); err != nil {
		return nil, err
	}

	rows, err := s.repoDB.ListTokens(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list tokens", "error", err)
		return nil, goerror.NewServer(err)
	}

	snaps := s.sched.Snapshots()
	tokens := lo.Map(rows, func(row entity.StoredToken, _ int) entity.TokenWithCode {
		snap := snaps[row.ID] // zero Snapshot when unregistered
		return entity.TokenWithCode{
			ID:        row.ID,
			Label:     row.Label,
			Issuer:    row.Issuer,
			Digits:    row.Digits,
			Period:    row.Period,
			Algorithm: row.Algorithm,
			Source:    row.Source,
			Code:      snap.Code,
			Remaining: snap.Remaining,
		}
	})

	return &TokenListOutput{Tokens: tokens, Ticks: s.sched.Ticks()}, nil
}
