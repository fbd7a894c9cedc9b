package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/otpdeck/internal/pkg/router"
	"github.com/shandysiswandi/otpdeck/internal/vault/usecase"
)

type uc interface {
	SessionCreate(ctx context.Context, in usecase.SessionCreateInput) (*usecase.SessionCreateOutput, error)

	TokenCreate(ctx context.Context, in usecase.TokenCreateInput) (*usecase.TokenCreateOutput, error)
	TokenDelete(ctx context.Context, in usecase.TokenDeleteInput) error
	TokenList(ctx context.Context) (*usecase.TokenListOutput, error)
	TokenPeek(ctx context.Context, in usecase.TokenPeekInput) (*usecase.TokenPeekOutput, error)

	MigrationImport(ctx context.Context, in usecase.MigrationImportInput) (*usecase.MigrationImportOutput, error)

	VisibilityShow(ctx context.Context) error
	VisibilityHide(ctx context.Context) error

	VaultBackup(ctx context.Context) (*usecase.VaultBackupOutput, error)

	StreamTicks(ctx context.Context) <-chan uint64
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Session
	r.POST("/api/v1/vault/session", end.SessionCreate)

	// Tokens (need authenticated)
	r.GET("/api/v1/vault/tokens", end.TokenList)
	r.POST("/api/v1/vault/tokens", end.TokenCreate)
	r.GET("/api/v1/vault/tokens/:id", end.TokenPeek)
	r.DELETE("/api/v1/vault/tokens/:id", end.TokenDelete)

	// Migration import (need authenticated)
	r.POST("/api/v1/vault/import", end.MigrationImport)

	// Visibility demand (need authenticated)
	r.POST("/api/v1/vault/visibility/show", end.VisibilityShow)
	r.POST("/api/v1/vault/visibility/hide", end.VisibilityHide)

	// Backup (need authenticated)
	r.POST("/api/v1/vault/backup", end.VaultBackup)

	// Live tick stream (need authenticated)
	r.GETRaw("/api/v1/vault/stream", http.HandlerFunc(end.Stream))
}
