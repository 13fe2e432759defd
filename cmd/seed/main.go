package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"lessontree/internal/config"
	"lessontree/internal/dispatch"
	"lessontree/internal/doctree"
	"lessontree/internal/repository/postgres"
	postgresClassroom "lessontree/internal/repository/postgres/classroom"
	"lessontree/internal/seed"
	serviceAuth "lessontree/internal/service/auth"
	serviceClassroom "lessontree/internal/service/classroom"

	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed a space")
	fixturePath := flag.String("fixture", "", "YAML fixture to seed (defaults to the built-in sample space)")
	owner := flag.String("owner", "", "Owner user ID (defaults to DEV_USER_ID)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	// Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: -drop-tables is not allowed in the prod environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ownerID := *owner
	if ownerID == "" {
		ownerID = cfg.DevUserID
	}

	// Load the fixture before touching the database
	var (
		fixture *seed.Fixture
		err     error
	)
	if *fixturePath != "" {
		fixture, err = seed.LoadFixture(*fixturePath)
	} else {
		fixture, err = seed.DefaultFixture()
	}
	if err != nil && !*schemaOnly {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		logger.Info("dropping tables", "prefix", cfg.TablePrefix)
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("schema ready", "spaces", tables.Spaces, "documents", tables.Documents)

	if *schemaOnly {
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	spaceRepo := postgresClassroom.NewSpaceRepository(repoConfig)
	docRepo := postgresClassroom.NewDocumentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Seeding never reorders; the services still need a position writer
	positions := dispatch.New(
		func(ctx context.Context, spaceID string, updates []doctree.PositionUpdate) error {
			return txManager.ExecTx(ctx, func(ctx context.Context) error {
				return docRepo.UpdatePositions(ctx, spaceID, updates)
			})
		},
		dispatch.Config{Logger: logger},
	)
	defer positions.Close(ctx)

	authorizer := serviceAuth.NewOwnerBasedAuthorizer(spaceRepo, docRepo)
	validator := serviceClassroom.NewResourceValidator(docRepo)
	sessions := serviceClassroom.NewTreeSessions()

	spaceService := serviceClassroom.NewSpaceService(spaceRepo, sessions, positions, logger)
	docService := serviceClassroom.NewDocumentService(docRepo, txManager, validator, authorizer, positions, logger)

	seeder := seed.NewSeeder(spaceService, docService, logger)
	space, created, err := seeder.Seed(ctx, ownerID, fixture)
	if err != nil {
		log.Fatalf("Seeding failed after %d documents: %v", created, err)
	}

	logger.Info("seeding complete",
		"space_id", space.ID,
		"space", space.Name,
		"owner_id", ownerID,
		"documents", created,
	)
}
