package usecase

import (
	"context"
	"log/slog"
)

// Start loads every persisted token, registers it with the scheduler and
// applies the configured initial visibility. Called once during app startup.
func (s *Usecase) Start(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Start")
	defer span.End()

	rows, err := s.repoDB.ListTokens(ctx)
	if err != nil {
		return err
	}

	for i := range rows {
		secret, err := s.decryptSecret(&rows[i])
		if err != nil {
			// One undecryptable row must not keep the service down.
			slog.ErrorContext(ctx, "skipping token with undecryptable secret", "token_id", rows[i].ID, "error", err)
			continue
		}

		tok := rows[i].Token
		tok.Secret = secret
		if err := s.sched.Register(ctx, s.schedulerToken(tok)); err != nil {
			slog.ErrorContext(ctx, "skipping token rejected by scheduler", "token_id", tok.ID, "error", err)
		}
	}

	if s.cfg.GetBool("modules.vault.start_visible") {
		s.sched.Show()
	}

	slog.InfoContext(ctx, "vault tokens registered", "count", len(rows))

	return nil
}
