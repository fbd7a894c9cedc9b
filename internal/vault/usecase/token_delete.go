package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
)

type TokenDeleteInput struct {
	ID int64 `validate:"required,gt=0"`
}

// TokenDelete unregisters the token from the scheduler and removes it from
// the vault. Deleting an unknown id is NotFound.
func (s *Usecase) TokenDelete(ctx context.Context, in TokenDeleteInput) error {
	ctx, span := s.startSpan(ctx, "TokenDelete")
	defer span.End()

	if _, err := s.authenticated(ctx); err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.DeleteToken(ctx, in.ID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness("token not found", goerror.CodeNotFound)
		}
		slog.ErrorContext(ctx, "failed to repo delete token", "token_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.sched.Unregister(in.ID)

	return nil
}
