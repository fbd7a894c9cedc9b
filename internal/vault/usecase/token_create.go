package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
	"github.com/shandysiswandi/otpdeck/internal/pkg/migration"
	"github.com/shandysiswandi/otpdeck/internal/pkg/secretbox"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
)

type TokenCreateInput struct {
	Label     string `validate:"required,max=128"`
	Issuer    string `validate:"max=128"`
	Secret    string // empty means provision a new secret
	Digits    int    `validate:"omitempty,oneof=6 8"`
	Period    int    `validate:"omitempty,gt=0"`
	Algorithm string `validate:"omitempty,oneof=SHA1 SHA256 SHA512"`
}

type TokenCreateOutput struct {
	ID int64
	// Secret and URI are only set when the secret was provisioned here, so the
	// caller can enroll the counterpart authenticator app.
	Secret string
	URI    string
}

// TokenCreate stores a new token and registers it with the scheduler. When no
// secret is supplied a fresh one is provisioned along with an otpauth URI.
func (s *Usecase) TokenCreate(ctx context.Context, in TokenCreateInput) (*TokenCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "TokenCreate")
	defer span.End()

	if _, err := s.authenticated(ctx); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Digits == 0 {
		in.Digits = 6
	}
	if in.Period == 0 {
		in.Period = 30
	}
	algo := entity.AlgorithmFromString(in.Algorithm)

	var secret, uri string
	provisioned := in.Secret == ""
	if provisioned {
		var err error
		secret, uri, err = s.totp.Provision(in.Issuer, in.Label, in.Digits, in.Period, algo.String())
		if err != nil {
			slog.ErrorContext(ctx, "failed to provision totp secret", "error", err)
			return nil, goerror.NewServer(err)
		}
	} else {
		raw, err := migration.DecodeSecret(strings.TrimSpace(in.Secret))
		if err != nil {
			return nil, goerror.NewBusiness("secret is not valid Base32", goerror.CodeInvalidInput)
		}
		secret = migration.EncodeSecret(raw)
	}

	id := s.uid.Generate()
	ciphertext, err := s.box.Encrypt([]byte(secret), secretbox.Scope{
		TokenID: id,
		Purpose: secretbox.PurposeTokenSecret,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt token secret", "token_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	token := entity.Token{
		ID:        id,
		Label:     strings.TrimSpace(in.Label),
		Issuer:    strings.TrimSpace(in.Issuer),
		Secret:    secret,
		Digits:    in.Digits,
		Period:    in.Period,
		Algorithm: algo,
		Source:    entity.SourceManual,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repoDB.CreateToken(ctx, entity.StoredToken{
		Token:            token,
		SecretCiphertext: ciphertext,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create token", "token_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.sched.Register(ctx, s.schedulerToken(token)); err != nil {
		slog.ErrorContext(ctx, "failed to register token with scheduler", "token_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.goroutine.Go(ctx, func(ctx context.Context) error {
		return s.repoMessaging.PublishTokenRegistered(ctx, TokenRegisteredEvent{
			TokenID: id,
			Label:   token.Label,
			Issuer:  token.Issuer,
			Source:  token.Source.String(),
		})
	})

	out := &TokenCreateOutput{ID: id}
	if provisioned {
		out.Secret = secret
		out.URI = uri
	}

	return out, nil
}
