package usecase

import "context"

// VisibilityShow signals demand for live codes. The scheduler starts ticking
// when at least one token is registered. Duplicate calls are idempotent.
func (s *Usecase) VisibilityShow(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "VisibilityShow")
	defer span.End()

	if _, err := s.authenticated(ctx); err != nil {
		return err
	}

	s.sched.Show()

	return nil
}

// VisibilityHide withdraws demand and unconditionally stops the ticker.
// Duplicate calls are idempotent.
func (s *Usecase) VisibilityHide(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "VisibilityHide")
	defer span.End()

	if _, err := s.authenticated(ctx); err != nil {
		return err
	}

	s.sched.Hide()

	return nil
}
