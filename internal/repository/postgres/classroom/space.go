package classroom

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"lessontree/internal/domain"
	models "lessontree/internal/domain/models/classroom"
	repo "lessontree/internal/domain/repositories/classroom"
	"lessontree/internal/repository/postgres"
)

// PostgresSpaceRepository implements the SpaceRepository interface
type PostgresSpaceRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewSpaceRepository creates a new space repository
func NewSpaceRepository(config *postgres.RepositoryConfig) repo.SpaceRepository {
	return &PostgresSpaceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new space
func (r *PostgresSpaceRepository) Create(ctx context.Context, space *models.Space) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Spaces)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		space.OwnerID,
		space.Name,
		space.CreatedAt,
		space.UpdatedAt,
	).Scan(&space.ID, &space.CreatedAt, &space.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create space: %w", err)
	}

	return nil
}

// GetByID retrieves a space owned by ownerID
func (r *PostgresSpaceRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Space, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, created_at, updated_at, deleted_at
		FROM %s
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
	`, r.tables.Spaces)

	return r.getOne(ctx, id, query, id, ownerID)
}

// GetByIDOnly retrieves a space by UUID only.
// Use when authorization is handled separately (e.g., by ResourceAuthorizer)
func (r *PostgresSpaceRepository) GetByIDOnly(ctx context.Context, id string) (*models.Space, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, created_at, updated_at, deleted_at
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Spaces)

	return r.getOne(ctx, id, query, id)
}

func (r *PostgresSpaceRepository) getOne(ctx context.Context, id, query string, args ...interface{}) (*models.Space, error) {
	var space models.Space
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(
		&space.ID,
		&space.OwnerID,
		&space.Name,
		&space.CreatedAt,
		&space.UpdatedAt,
		&space.DeletedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("space %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get space: %w", err)
	}

	return &space, nil
}

// List retrieves all live spaces for an owner
func (r *PostgresSpaceRepository) List(ctx context.Context, ownerID string) ([]models.Space, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, created_at, updated_at, deleted_at
		FROM %s
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
	`, r.tables.Spaces)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	spaces := make([]models.Space, 0)
	for rows.Next() {
		var space models.Space
		if err := rows.Scan(
			&space.ID,
			&space.OwnerID,
			&space.Name,
			&space.CreatedAt,
			&space.UpdatedAt,
			&space.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, space)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spaces: %w", err)
	}

	return spaces, nil
}

// Update updates a space's name
func (r *PostgresSpaceRepository) Update(ctx context.Context, space *models.Space) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Spaces)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		space.Name,
		space.UpdatedAt,
		space.ID,
		space.OwnerID,
	).Scan(&space.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("space %s: %w", space.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update space: %w", err)
	}

	return nil
}

// Delete soft-deletes a space. Its documents stay in place and become
// unreachable with it.
func (r *PostgresSpaceRepository) Delete(ctx context.Context, id, ownerID string) (*models.Space, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $1
		WHERE id = $2 AND owner_id = $3 AND deleted_at IS NULL
		RETURNING id, owner_id, name, created_at, updated_at, deleted_at
	`, r.tables.Spaces)

	var space models.Space
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, time.Now(), id, ownerID).Scan(
		&space.ID,
		&space.OwnerID,
		&space.Name,
		&space.CreatedAt,
		&space.UpdatedAt,
		&space.DeletedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("space %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("delete space: %w", err)
	}

	r.logger.Info("space soft-deleted", "id", id, "owner_id", ownerID)
	return &space, nil
}
