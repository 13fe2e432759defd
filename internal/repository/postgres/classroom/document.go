package classroom

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"lessontree/internal/doctree"
	"lessontree/internal/domain"
	models "lessontree/internal/domain/models/classroom"
	repo "lessontree/internal/domain/repositories/classroom"
	"lessontree/internal/repository/postgres"
)

const documentColumns = `id, space_id, parent_id, position, title, document_type, created_at, updated_at, deleted_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) repo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (space_id, parent_id, position, title, document_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.SpaceID,
		doc.ParentID,
		doc.Index,
		doc.Title,
		doc.DocumentType,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("space %s: %w", doc.SpaceID, domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a live document
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return doc, nil
}

// ListBySpace returns every live document of a space. Order is left to the
// tree codec.
func (r *PostgresDocumentRepository) ListBySpace(ctx context.Context, spaceID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE space_id = $1 AND deleted_at IS NULL
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// NextIndex returns one past the highest live sibling position under parentID
func (r *PostgresDocumentRepository) NextIndex(ctx context.Context, spaceID string, parentID *string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(position) + 1, 0)
		FROM %s
		WHERE space_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND deleted_at IS NULL
	`, r.tables.Documents)

	var next int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, spaceID, parentID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next index: %w", err)
	}

	return next, nil
}

// Update updates title, document type and placement
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, document_type = $2, parent_id = $3, position = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Title,
		doc.DocumentType,
		doc.ParentID,
		doc.Index,
		doc.UpdatedAt,
		doc.ID,
	).Scan(&doc.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update document: %w", err)
	}

	return nil
}

// UpdatePositions writes every (parent_id, position) pair in one batch.
// Rows deleted since the reorder was computed are skipped silently.
func (r *PostgresDocumentRepository) UpdatePositions(ctx context.Context, spaceID string, updates []doctree.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, position = $2, updated_at = $3
		WHERE id = $4 AND space_id = $5 AND deleted_at IS NULL
	`, r.tables.Documents)

	now := time.Now()
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.ParentID, u.Index, now, u.ID, spaceID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	results := executor.SendBatch(ctx, batch)
	defer results.Close()

	skipped := 0
	for _, u := range updates {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("update position of %s: %w", u.ID, err)
		}
		if tag.RowsAffected() == 0 {
			skipped++
		}
	}

	if skipped > 0 {
		r.logger.Debug("position updates skipped missing rows",
			"space_id", spaceID,
			"skipped", skipped,
		)
	}

	return nil
}

// SoftDeleteSubtree marks a document and all of its live descendants deleted
func (r *PostgresDocumentRepository) SoftDeleteSubtree(ctx context.Context, spaceID, id string) (int, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %[1]s
			WHERE id = $1 AND space_id = $2 AND deleted_at IS NULL
			UNION
			SELECT d.id FROM %[1]s d
			JOIN subtree s ON d.parent_id = s.id
			WHERE d.space_id = $2 AND d.deleted_at IS NULL
		)
		UPDATE %[1]s
		SET deleted_at = $3
		WHERE id IN (SELECT id FROM subtree)
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, spaceID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("delete document subtree: %w", err)
	}

	deleted := int(tag.RowsAffected())
	if deleted == 0 {
		return 0, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return deleted, nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.SpaceID,
		&doc.ParentID,
		&doc.Index,
		&doc.Title,
		&doc.DocumentType,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
