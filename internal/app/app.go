package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/skillsenselab/medscribe/internal/auth"
	"github.com/skillsenselab/medscribe/internal/config"
	"github.com/skillsenselab/medscribe/internal/credentials"
	"github.com/skillsenselab/medscribe/internal/database"
	"github.com/skillsenselab/medscribe/internal/logger"
	"github.com/skillsenselab/medscribe/internal/notes"
	"github.com/skillsenselab/medscribe/internal/observability"
	"github.com/skillsenselab/medscribe/internal/proxy"
	"github.com/skillsenselab/medscribe/internal/server"
	"github.com/skillsenselab/medscribe/internal/server/middleware"
	"github.com/skillsenselab/medscribe/internal/transcription"
)

// App wires configuration into the transcription, notes and HTTP
// components and manages their lifecycle.
type App struct {
	Cfg      *config.Config
	Log      *logger.Logger
	DB       *gorm.DB
	Resolver *credentials.Resolver
	Metrics  *observability.Metrics

	Orchestrator *transcription.Orchestrator
	Compiler     *notes.Compiler
	Repo         *notes.Repository

	shutdownFns []func(context.Context) error
}

// New builds the application from a validated config.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()

	a := &App{Cfg: cfg, Log: log}

	if cfg.Observability.Enabled {
		if err := a.initObservability(ctx); err != nil {
			return nil, err
		}
	}

	if err := a.initCredentials(); err != nil {
		return nil, err
	}
	a.initPipeline()

	return a, nil
}

func (a *App) initObservability(ctx context.Context) error {
	cfg := a.Cfg
	tracerCfg := observability.DefaultTracerConfig(cfg.Service.Name)
	tracerCfg.ServiceVersion = cfg.Service.Version
	tracerCfg.Environment = cfg.Service.Environment
	tracerCfg.Endpoint = cfg.Observability.Endpoint
	tracerCfg.Insecure = cfg.Observability.Insecure
	tracerCfg.SampleRate = cfg.Observability.SampleRate

	tp, err := observability.InitTracer(ctx, tracerCfg)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.shutdownFns = append(a.shutdownFns, tp.Shutdown)

	meterCfg := observability.DefaultMeterConfig(cfg.Service.Name)
	meterCfg.ServiceVersion = cfg.Service.Version
	meterCfg.Environment = cfg.Service.Environment
	meterCfg.Endpoint = cfg.Observability.Endpoint
	meterCfg.Insecure = cfg.Observability.Insecure

	mp, err := observability.InitMeter(ctx, &meterCfg)
	if err != nil {
		return fmt.Errorf("init meter: %w", err)
	}
	a.shutdownFns = append(a.shutdownFns, mp.Shutdown)

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Service.Name))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}
	a.Metrics = metrics
	return nil
}

func (a *App) initCredentials() error {
	var store credentials.Store
	if a.Cfg.Platform == "native" && a.Cfg.Credentials.StoreKey != "" {
		s, err := credentials.NewSecureStore(a.Cfg.Credentials.StorePath, a.Cfg.Credentials.StoreKey)
		if err != nil {
			return fmt.Errorf("open secure store: %w", err)
		}
		store = s
	}
	a.Resolver = credentials.NewResolver(a.Cfg.Platform, store, a.Cfg.Credentials, a.Log)
	return nil
}

func (a *App) initPipeline() {
	cfg := a.Cfg

	var transport transcription.Transport
	if cfg.Platform == "web" {
		transport = transcription.NewProxyTransport(cfg.Transcription.ProxyOrigin)
	} else {
		transport = transcription.NewNativeTransport()
	}

	primary := transcription.NewWhisperProvider(a.Resolver, transport, cfg.Transcription.SpeechModel, cfg.Transcription.Language)
	secondary := transcription.NewGeminiProvider(a.Resolver, transport, cfg.Transcription.FallbackModel, cfg.Transcription.Language)
	a.Orchestrator = transcription.NewOrchestrator(primary, secondary, a.Log, a.Metrics)

	a.Compiler = notes.NewCompiler(a.Resolver, transport, cfg.Notes.Model, nil, a.Log, a.Metrics)
}

// OpenDatabase opens the note store and runs migrations.
func (a *App) OpenDatabase() error {
	db, err := database.Open(a.Cfg.Database.DSN, a.Cfg.Database.MaxOpenConns, a.Cfg.Database.MaxIdleConns, a.Log)
	if err != nil {
		return err
	}
	a.DB = db
	a.shutdownFns = append(a.shutdownFns, func(context.Context) error {
		return database.Close(db)
	})

	a.Repo = notes.NewRepository(db, a.Log)
	if a.Cfg.Database.AutoMigrate {
		if err := a.Repo.Migrate(); err != nil {
			return err
		}
	}
	return nil
}

// Serve runs the HTTP surface (relay routes plus the authenticated note
// API) until the context is cancelled or a termination signal arrives.
func (a *App) Serve(ctx context.Context) error {
	if a.DB == nil {
		if err := a.OpenDatabase(); err != nil {
			return err
		}
	}

	srv := server.New(a.Cfg.Server, a.Log)
	srv.ApplyMiddleware()
	engine := srv.GinEngine()

	relay := proxy.NewHandler(a.Log)
	relay.Register(engine)

	jwtSvc, err := auth.NewService(a.Cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("auth setup: %w", err)
	}
	authed := engine.Group("/", middleware.Auth(middleware.AuthConfig{
		TokenValidator: jwtSvc.ValidatorFunc(),
	}))
	notes.NewHandler(a.Repo, a.Compiler).Register(authed)

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if err := srv.Start(ctx); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	a.Log.Info("shutting down")
	if err := srv.Stop(context.Background()); err != nil {
		a.Log.Error("server stop failed", logger.Fields("error", err.Error()))
	}
	return a.Shutdown(context.Background())
}

// Shutdown runs the registered shutdown hooks in reverse order.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	for i := len(a.shutdownFns) - 1; i >= 0; i-- {
		if err := a.shutdownFns[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Hostname is used as the local user id for single-user native captures.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "local"
	}
	return name
}
