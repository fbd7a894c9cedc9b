package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpdeck/internal/pkg/clock"
	"github.com/shandysiswandi/otpdeck/internal/pkg/config"
	"github.com/shandysiswandi/otpdeck/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpdeck/internal/pkg/hash"
	"github.com/shandysiswandi/otpdeck/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpdeck/internal/pkg/instrument"
	"github.com/shandysiswandi/otpdeck/internal/pkg/jwt"
	"github.com/shandysiswandi/otpdeck/internal/pkg/messaging"
	"github.com/shandysiswandi/otpdeck/internal/pkg/otp"
	"github.com/shandysiswandi/otpdeck/internal/pkg/router"
	"github.com/shandysiswandi/otpdeck/internal/pkg/scheduler"
	"github.com/shandysiswandi/otpdeck/internal/pkg/secretbox"
	"github.com/shandysiswandi/otpdeck/internal/pkg/storage"
	"github.com/shandysiswandi/otpdeck/internal/pkg/uid"
	"github.com/shandysiswandi/otpdeck/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	bcrypt    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	totp      otp.OTP
	jwt       jwt.JWT
	secretbox secretbox.Encryptor
	scheduler *scheduler.Scheduler

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	messaging messaging.Messaging
	blob      storage.BlobStore

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initBlobStorage()
	app.initMessaging()
	app.initScheduler()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
