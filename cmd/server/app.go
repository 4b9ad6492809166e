package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/logoforge-api/internal/api"
	"github.com/phrazzld/logoforge-api/internal/batch"
	"github.com/phrazzld/logoforge-api/internal/config"
	"github.com/phrazzld/logoforge-api/internal/credit"
	"github.com/phrazzld/logoforge-api/internal/events"
	"github.com/phrazzld/logoforge-api/internal/platform/falqueue"
	"github.com/phrazzld/logoforge-api/internal/platform/gemini"
	"github.com/phrazzld/logoforge-api/internal/platform/postgres"
	"github.com/phrazzld/logoforge-api/internal/platform/redisstate"
	"github.com/phrazzld/logoforge-api/internal/promptgen"
	"github.com/phrazzld/logoforge-api/internal/service"
	"github.com/phrazzld/logoforge-api/internal/storage"

	// Register the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// application holds the assembled dependency graph for the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db          *sql.DB
	redisClient *redis.Client
	registry    *batch.Registry

	projectHandler    *api.ProjectHandler
	refinementHandler *api.RefinementHandler
	brandKitHandler   *api.BrandKitHandler
	progressHandler   *api.ProgressHandler
	streamHandler     *api.StreamHandler
}

// newApplication wires every component from configuration: database,
// session store, credit ledger, generation pipeline, services, and
// HTTP handlers.
func newApplication(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	db, err := openDatabase(ctx, cfg.Database.URL, appLogger)
	if err != nil {
		return nil, err
	}

	unitStore := postgres.NewPostgresUnitStore(db, appLogger)
	projectStore := postgres.NewPostgresProjectStore(db, appLogger)

	ledger, err := buildLedger(cfg, db, appLogger)
	if err != nil {
		return nil, err
	}

	sessions, redisClient, err := buildSessionStore(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	genClient, err := falqueue.NewClient(cfg.Generator, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator client: %w", err)
	}

	bucket, err := storage.NewBucketClient(cfg.Storage, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	var producer promptgen.Producer
	if cfg.LLM.GeminiAPIKey != "" {
		geminiProducer, err := gemini.NewPromptProducer(ctx, appLogger, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create prompt producer: %w", err)
		}
		producer = geminiProducer
	} else {
		appLogger.Info("No Gemini API key configured, using fallback prompt catalog")
	}

	registry := batch.NewRegistry(appLogger)

	submitter, err := batch.NewSubmitter(unitStore, genClient, cfg.Batch.MaxConcurrentSubmissions, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create submitter: %w", err)
	}

	reconciler, err := batch.NewReconciler(
		unitStore,
		genClient,
		genClient,
		bucket,
		cfg.Batch.GenerationTimeout(),
		appLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconciler: %w", err)
	}

	eventHandler, err := service.NewBatchEventHandler(
		unitStore,
		submitter,
		reconciler,
		registry,
		cfg.Batch.KitSuccessThreshold,
		appLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch event handler: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(appLogger)
	emitter.RegisterHandler(eventHandler)

	sessionTTL := cfg.Sessions.TTL()

	orchestrator, err := service.NewOrchestratorService(
		projectStore, unitStore, producer, sessions, emitter, sessionTTL, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator service: %w", err)
	}

	refinements, err := service.NewRefinementService(
		unitStore, ledger, producer, sessions, emitter,
		cfg.Credits.RefinementCost, sessionTTL, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create refinement service: %w", err)
	}

	brandKits, err := service.NewBrandKitService(
		unitStore, projectStore, sessions, emitter, sessionTTL, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create brand kit service: %w", err)
	}

	progress, err := service.NewProgressService(unitStore, sessions, cfg.Batch.KitSuccessThreshold, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}

	streamHandler, err := api.NewStreamHandler(
		progress,
		cfg.Stream.PollInterval(),
		cfg.Stream.HeartbeatInterval(),
		cfg.Stream.MaxDuration(),
		appLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream handler: %w", err)
	}

	return &application{
		config:            cfg,
		logger:            appLogger,
		db:                db,
		redisClient:       redisClient,
		registry:          registry,
		projectHandler:    api.NewProjectHandler(orchestrator, appLogger),
		refinementHandler: api.NewRefinementHandler(refinements, appLogger),
		brandKitHandler:   api.NewBrandKitHandler(brandKits, appLogger),
		progressHandler:   api.NewProgressHandler(progress, appLogger),
		streamHandler:     streamHandler,
	}, nil
}

// openDatabase opens and verifies the postgres connection pool.
func openDatabase(ctx context.Context, dbURL string, appLogger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	appLogger.Info("Database connection verified")
	return db, nil
}

// buildLedger selects the credit ledger backend from configuration.
func buildLedger(cfg *config.Config, db *sql.DB, appLogger *slog.Logger) (credit.Ledger, error) {
	switch cfg.Credits.Backend {
	case "postgres":
		return postgres.NewPostgresLedger(db, appLogger), nil
	case "grant-all":
		appLogger.Warn("Credit ledger is in grant-all mode; no balances are enforced")
		return credit.NewGrantAllLedger(appLogger), nil
	default:
		return nil, fmt.Errorf("unknown credits backend %q", cfg.Credits.Backend)
	}
}

// buildSessionStore selects the session store backend. The returned redis
// client is nil when the in-memory backend is configured.
func buildSessionStore(
	cfg *config.Config,
	appLogger *slog.Logger,
) (redisstate.SessionStore, *redis.Client, error) {
	switch cfg.Sessions.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		client := redis.NewClient(opts)
		sessionStore, err := redisstate.NewRedisStore(client)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		appLogger.Info("Using redis session store")
		return sessionStore, client, nil
	case "memory":
		appLogger.Info("Using in-memory session store")
		return redisstate.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown sessions backend %q", cfg.Sessions.Backend)
	}
}

// cleanup releases everything the application holds open. Supervised batch
// jobs get a bounded grace period to finish before the process exits.
func (app *application) cleanup() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.registry.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Batch registry shutdown incomplete", "error", err)
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("Error closing database connection", "error", err)
	}
}
