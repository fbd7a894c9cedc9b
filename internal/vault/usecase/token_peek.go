package usecase

import (
	"context"

	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
)

type TokenPeekInput struct {
	ID int64 `validate:"required,gt=0"`
}

type TokenPeekOutput struct {
	Snapshot entity.CodeSnapshot
}

// TokenPeek returns the live snapshot of one token. Ids that were never
// registered, or have been unregistered, are NotFound.
func (s *Usecase) TokenPeek(ctx context.Context, in TokenPeekInput) (*TokenPeekOutput, error) {
	ctx, span := s.startSpan(ctx, "TokenPeek")
	defer span.End()

	if _, err := s.authenticated(ctx); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	snap, ok := s.sched.Snapshot(in.ID)
	if !ok {
		return nil, goerror.NewBusiness("token not found", goerror.CodeNotFound)
	}

	return &TokenPeekOutput{Snapshot: entity.CodeSnapshot{
		Code:      snap.Code,
		Remaining: snap.Remaining,
		Period:    snap.Period,
	}}, nil
}
