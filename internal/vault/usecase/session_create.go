package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
)

type SessionCreateInput struct {
	Passphrase string `validate:"required"`
}

type SessionCreateOutput struct {
	AccessToken string
	ExpiresIn   int64
}

// SessionCreate unlocks the vault: the passphrase is checked against the
// configured bcrypt hash and a session JWT is issued on success.
func (s *Usecase) SessionCreate(ctx context.Context, in SessionCreateInput) (*SessionCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "SessionCreate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	storedHash := s.cfg.GetString("modules.vault.passphrase_hash")
	if storedHash == "" {
		slog.ErrorContext(ctx, "vault passphrase hash is not configured")
		return nil, goerror.NewServer(nil)
	}

	if !s.bcrypt.Verify(storedHash, in.Passphrase) {
		slog.WarnContext(ctx, "vault unlock rejected")
		return nil, goerror.NewBusiness("invalid passphrase", goerror.CodeUnauthorized)
	}

	sessionID := s.uuid.Generate()
	token, err := s.jwt.Generate(sessionID, s.cfg.GetString("app.name"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session jwt", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &SessionCreateOutput{
		AccessToken: token,
		ExpiresIn:   int64(s.cfg.GetMinute("modules.vault.session_ttl_minutes").Seconds()),
	}, nil
}
