package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/greenguardian-backend-go/internal/airquality"
	"github.com/jengzang/greenguardian-backend-go/internal/api"
	"github.com/jengzang/greenguardian-backend-go/internal/blob"
	"github.com/jengzang/greenguardian-backend-go/internal/cache"
	"github.com/jengzang/greenguardian-backend-go/internal/config"
	"github.com/jengzang/greenguardian-backend-go/internal/database"
	"github.com/jengzang/greenguardian-backend-go/internal/handler"
	"github.com/jengzang/greenguardian-backend-go/internal/identity"
	"github.com/jengzang/greenguardian-backend-go/internal/kv"
	"github.com/jengzang/greenguardian-backend-go/internal/middleware"
	"github.com/jengzang/greenguardian-backend-go/internal/repository"
	"github.com/jengzang/greenguardian-backend-go/internal/service"
	"go.uber.org/zap"
)

// App holds the wired stores and services
type App struct {
	Config *config.Config
	Log    *zap.Logger

	Store    kv.Store
	Blobs    blob.Store
	Verifier identity.Verifier

	Air        *airquality.Service
	Reports    *service.ReportService
	Knowledge  *service.KnowledgeService
	DropPoints *service.DropPointService
	Theme      *service.ThemeService

	limiter *middleware.RateLimiter
	closers []func() error
}

// New opens the configured backends and wires the services
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openBlobs(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openVerifier(ctx); err != nil {
		a.Close()
		return nil, err
	}

	fetcher := airquality.NewClient(cfg.AirQualityURL, cfg.AirQualityTimeout)
	a.Air = airquality.NewService(fetcher, cache.New(a.Store), log)

	prefs := repository.NewPreferenceRepository(a.Store)
	a.Reports = service.NewReportService(repository.NewReportRepository(a.Store, log), a.Blobs, log)
	if err := a.Reports.EnsureSchema(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to upgrade report index: %w", err)
	}
	a.Knowledge = service.NewKnowledgeService(prefs)
	a.DropPoints = service.NewDropPointService()
	a.Theme = service.NewThemeService(prefs)

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.KVBackend {
	case config.KVBackendRedis:
		store, err := kv.NewRedisStore(ctx, a.Config.Redis)
		if err != nil {
			return err
		}
		a.Store = store
		a.closers = append(a.closers, store.Close)
	case config.KVBackendMemory:
		a.Store = kv.NewMemoryStore()
	default:
		conn, err := database.Open(database.Config{Path: a.Config.DBPath}, a.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		a.Store = kv.NewSQLiteStore(conn)
		a.closers = append(a.closers, conn.Close)
	}
	a.Log.Info("Key-value store ready", zap.String("backend", a.Config.KVBackend))
	return nil
}

func (a *App) openBlobs(ctx context.Context) error {
	switch a.Config.BlobBackend {
	case config.BlobBackendMinio:
		store, err := blob.NewMinioStore(ctx, a.Config.Minio, a.Log)
		if err != nil {
			return err
		}
		a.Blobs = store
	default:
		store, err := blob.NewLocalStore(a.Config.DataDir)
		if err != nil {
			return err
		}
		a.Blobs = store
	}
	a.Log.Info("Blob store ready", zap.String("backend", a.Config.BlobBackend))
	return nil
}

func (a *App) openVerifier(ctx context.Context) error {
	switch a.Config.Auth {
	case config.AuthFirebase:
		v, err := identity.NewFirebaseVerifier(ctx, a.Config.Firebase.ProjectID, a.Config.Firebase.CredentialsFile)
		if err != nil {
			return err
		}
		a.Verifier = v
	case config.AuthNone:
		a.Verifier = nil
	default:
		a.Verifier = identity.NewJWTVerifier(a.Config.JWTSecret)
	}
	return nil
}

// Router builds the HTTP engine over the wired services
func (a *App) Router() *gin.Engine {
	reports := handler.NewReportHandler(a.Reports, a.Config.MaxUploadBytes)
	h := api.Handlers{
		Air:        handler.NewAirHandler(a.Air),
		Reports:    reports,
		Knowledge:  handler.NewKnowledgeHandler(a.Knowledge),
		DropPoints: handler.NewDropPointHandler(a.DropPoints),
		Theme:      handler.NewThemeHandler(a.Theme),
	}

	opts := api.Options{
		Logger:         a.Log,
		Verifier:       a.Verifier,
		MaxUploadBytes: a.Config.MaxUploadBytes,
	}
	if a.Config.RateLimit > 0 && a.limiter == nil {
		a.limiter = middleware.NewRateLimiter(a.Config.RateLimit, time.Minute)
	}
	opts.RateLimiter = a.limiter
	if local, ok := a.Blobs.(*blob.LocalStore); ok {
		opts.PhotoDir = filepath.Join(local.Root(), "reports")
	}
	return api.SetupRouter(h, opts)
}

// Close waits for background photo cleanups and releases the backends
func (a *App) Close() error {
	if a.Reports != nil {
		a.Reports.Wait()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}

	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
