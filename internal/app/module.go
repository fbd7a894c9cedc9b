package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpdeck/internal/vault"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.vault.enabled") {
		if err := vault.New(a.ctx, vault.Dependency{
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			Bcrypt:      a.bcrypt,
			Clock:       a.clock,
			Validator:   a.validator,
			Router:      a.router,
			Totp:        a.totp,
			Scheduler:   a.scheduler,
			SecretBox:   a.secretbox,
			DBConn:      a.dbConn,
			CacheConn:   a.cacheConn,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			Blob:        a.blob,
			Goroutine:   a.goroutine,
			JWT:         a.jwt,
		}); err != nil {
			slog.Error("failed to init module vault", "error", err)
			os.Exit(1)
		}
	}
}
