package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/otpdeck/internal/pkg/router"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
	"github.com/shandysiswandi/otpdeck/internal/vault/usecase"
)

// HTTPEndpoint exposes HTTP handlers for vault sessions, tokens and imports.
type HTTPEndpoint struct {
	uc uc
}

// SessionCreate unlocks the vault with the master passphrase and returns a
// session token.
func (h *HTTPEndpoint) SessionCreate(r *router.Request) (any, error) {
	var req SessionCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SessionCreate(r.Context(), usecase.SessionCreateInput{Passphrase: req.Passphrase})
	if err != nil {
		return nil, err
	}

	return SessionCreateResponse{
		AccessToken: resp.AccessToken,
		ExpiresIn:   resp.ExpiresIn,
	}, nil
}

// TokenCreate stores a new token; when no secret is given one is provisioned
// and returned once, together with its otpauth URI.
func (h *HTTPEndpoint) TokenCreate(r *router.Request) (any, error) {
	var req TokenCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TokenCreate(r.Context(), usecase.TokenCreateInput{
		Label:     req.Label,
		Issuer:    req.Issuer,
		Secret:    req.Secret,
		Digits:    req.Digits,
		Period:    req.Period,
		Algorithm: req.Algorithm,
	})
	if err != nil {
		return nil, err
	}

	return TokenCreateResponse{
		ID:     resp.ID,
		Secret: resp.Secret,
		URI:    resp.URI,
	}, nil
}

// TokenList returns every token with its live code snapshot.
func (h *HTTPEndpoint) TokenList(r *router.Request) (any, error) {
	resp, err := h.uc.TokenList(r.Context())
	if err != nil {
		return nil, err
	}

	return TokenListResponse{
		Tokens: lo.Map(resp.Tokens, func(t entity.TokenWithCode, _ int) TokenItem {
			return TokenItem{
				ID:        t.ID,
				Label:     t.Label,
				Issuer:    t.Issuer,
				Digits:    t.Digits,
				Period:    t.Period,
				Algorithm: t.Algorithm.String(),
				Source:    t.Source.String(),
				Code:      t.Code,
				Remaining: t.Remaining,
			}
		}),
		Ticks: resp.Ticks,
	}, nil
}

// TokenPeek returns the live snapshot of a single token.
func (h *HTTPEndpoint) TokenPeek(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.TokenPeek(r.Context(), usecase.TokenPeekInput{ID: id})
	if err != nil {
		return nil, err
	}

	return TokenPeekResponse{
		Code:      resp.Snapshot.Code,
		Remaining: resp.Snapshot.Remaining,
		Period:    resp.Snapshot.Period,
	}, nil
}

// TokenDelete removes a token from the vault and the scheduler.
func (h *HTTPEndpoint) TokenDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.TokenDelete(r.Context(), usecase.TokenDeleteInput{ID: id}); err != nil {
		return nil, err
	}

	return nil, nil
}

// MigrationImport decodes a migration payload URL and imports its accounts.
func (h *HTTPEndpoint) MigrationImport(r *router.Request) (any, error) {
	var req MigrationImportRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.MigrationImport(r.Context(), usecase.MigrationImportInput{
		URL:            req.URL,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return nil, err
	}

	return MigrationImportResponse{
		Imported: resp.Imported,
		TokenIDs: resp.TokenIDs,
	}, nil
}

// VisibilityShow turns live code rotation on.
func (h *HTTPEndpoint) VisibilityShow(r *router.Request) (any, error) {
	if err := h.uc.VisibilityShow(r.Context()); err != nil {
		return nil, err
	}

	return VisibilityResponse{Visible: true}, nil
}

// VisibilityHide turns live code rotation off.
func (h *HTTPEndpoint) VisibilityHide(r *router.Request) (any, error) {
	if err := h.uc.VisibilityHide(r.Context()); err != nil {
		return nil, err
	}

	return VisibilityResponse{Visible: false}, nil
}

// VaultBackup exports all tokens to object storage.
func (h *HTTPEndpoint) VaultBackup(r *router.Request) (any, error) {
	resp, err := h.uc.VaultBackup(r.Context())
	if err != nil {
		return nil, err
	}

	return VaultBackupResponse{
		Key:   resp.Key,
		Count: resp.Count,
	}, nil
}
