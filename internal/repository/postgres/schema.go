package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables and indexes if they don't exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, prefix string) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	createSpaces := `
		CREATE TABLE IF NOT EXISTS ` + tables.Spaces + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createSpaces); err != nil {
		return fmt.Errorf("create spaces table: %w", err)
	}

	// parent_id has no FK: rows under a deleted parent are re-rooted on read
	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			space_id UUID NOT NULL REFERENCES ` + tables.Spaces + `(id) ON DELETE CASCADE,
			parent_id UUID,
			position INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
			title TEXT NOT NULL,
			document_type TEXT NOT NULL DEFAULT 'document',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			CHECK (parent_id IS NULL OR parent_id <> id)
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `spaces_owner ON ` + tables.Spaces + `(owner_id) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `documents_space ON ` + tables.Documents + `(space_id) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `documents_space_parent ON ` + tables.Documents + `(space_id, parent_id, position)`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// DropTables drops every table owned by this service, children first
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Documents, tables.Spaces} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
