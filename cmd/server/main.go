package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lessontree/internal/auth"
	"lessontree/internal/config"
	"lessontree/internal/dispatch"
	"lessontree/internal/doctree"
	classroomRepo "lessontree/internal/domain/repositories/classroom"
	"lessontree/internal/handler"
	"lessontree/internal/middleware"
	"lessontree/internal/repository/memory"
	"lessontree/internal/repository/postgres"
	postgresClassroom "lessontree/internal/repository/postgres/classroom"
	"lessontree/internal/repository/sqlite"
	serviceAuth "lessontree/internal/service/auth"
	serviceClassroom "lessontree/internal/service/classroom"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"collapse_store", cfg.CollapseStore,
	)

	// Create pgx connection pool
	ctx := context.Background()
	poolOpts := postgres.PoolOptions{MaxConns: 25, MinConns: 5}
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, poolOpts)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", poolOpts.MaxConns,
		"min_conns", poolOpts.MinConns,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	spaceRepo := postgresClassroom.NewSpaceRepository(repoConfig)
	docRepo := postgresClassroom.NewDocumentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Long-lived collapse cache
	var collapseStore classroomRepo.CollapseStore
	switch cfg.CollapseStore {
	case config.CollapseStoreSQLite:
		store, err := sqlite.OpenCollapseStore(cfg.SQLitePath, logger)
		if err != nil {
			log.Fatalf("Failed to open collapse store: %v", err)
		}
		defer store.Close()
		collapseStore = store
	default:
		collapseStore = memory.NewCollapseStore()
	}

	// Reorders are coalesced per space and written in one transaction
	positions := dispatch.New(
		func(ctx context.Context, spaceID string, updates []doctree.PositionUpdate) error {
			return txManager.ExecTx(ctx, func(ctx context.Context) error {
				return docRepo.UpdatePositions(ctx, spaceID, updates)
			})
		},
		dispatch.Config{
			Delay:       cfg.ReorderDebounce,
			SendTimeout: cfg.ReorderSendTimeout,
			Logger:      logger.With("component", "reorder_dispatcher"),
		},
	)

	// Create services
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(spaceRepo, docRepo)
	validator := serviceClassroom.NewResourceValidator(docRepo)
	sessions := serviceClassroom.NewTreeSessions()

	spaceService := serviceClassroom.NewSpaceService(spaceRepo, sessions, positions, logger)
	docService := serviceClassroom.NewDocumentService(docRepo, txManager, validator, authorizer, positions, logger)
	treeService := serviceClassroom.NewTreeService(docRepo, collapseStore, sessions, authorizer, logger)
	reorderService := serviceClassroom.NewReorderService(treeService, positions, authorizer, logger)

	logger.Info("services initialized")

	handlers := &handler.Handlers{
		Health:   handler.NewHealthHandler(pool, logger),
		Space:    handler.NewSpaceHandler(spaceService, logger),
		Document: handler.NewDocumentHandler(docService, logger),
		Tree:     handler.NewTreeHandler(treeService, reorderService, logger),
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLogger → Auth → Routes
	var verifier auth.JWTVerifier
	if cfg.AuthDisabled {
		logger.Warn("AUTH DISABLED: every request runs as the dev user", "user_id", cfg.DevUserID)
		h = middleware.DevAuthMiddleware(cfg.DevUserID)(h)
	} else {
		verifier, err = auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		h = middleware.AuthMiddleware(verifier, logger)(h)
	}
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	// Pending reorders are written before the pool closes
	positions.Close(shutdownCtx)

	if verifier != nil {
		if err := verifier.Close(); err != nil {
			logger.Warn("jwt verifier close failed", "error", err)
		}
	}

	logger.Info("server stopped")
}
