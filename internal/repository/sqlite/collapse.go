// Package sqlite persists per-reader collapse state in a local SQLite file so
// it survives restarts without touching the shared Postgres database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	repo "lessontree/internal/domain/repositories/classroom"
)

const schema = `
CREATE TABLE IF NOT EXISTS collapse_state (
	user_id   TEXT NOT NULL,
	space_id  TEXT NOT NULL,
	node_id   TEXT NOT NULL,
	collapsed INTEGER NOT NULL,
	PRIMARY KEY (user_id, space_id, node_id)
)`

// CollapseStore implements the CollapseStore interface on SQLite
type CollapseStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenCollapseStore opens (or creates) the database at path. Use ":memory:"
// for a throwaway store.
func OpenCollapseStore(path string, logger *slog.Logger) (*CollapseStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open collapse store: %w", err)
	}

	// A single writer avoids SQLITE_BUSY and keeps ":memory:" on one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create collapse_state table: %w", err)
	}

	return &CollapseStore{db: db, path: path, logger: logger}, nil
}

// Close closes the database connection
func (s *CollapseStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the stored state for key
func (s *CollapseStore) Load(ctx context.Context, key repo.CollapseKey) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT node_id, collapsed FROM collapse_state WHERE user_id = ? AND space_id = ?`,
		key.UserID, key.SpaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("load collapse state: %w", err)
	}
	defer rows.Close()

	state := make(map[string]bool)
	for rows.Next() {
		var nodeID string
		var collapsed int
		if err := rows.Scan(&nodeID, &collapsed); err != nil {
			return nil, fmt.Errorf("scan collapse state: %w", err)
		}
		state[nodeID] = collapsed != 0
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collapse state: %w", err)
	}

	return state, nil
}

// Save replaces the stored state for key in one transaction
func (s *CollapseStore) Save(ctx context.Context, key repo.CollapseKey, state map[string]bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM collapse_state WHERE user_id = ? AND space_id = ?`,
		key.UserID, key.SpaceID,
	); err != nil {
		return fmt.Errorf("clear collapse state: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO collapse_state (user_id, space_id, node_id, collapsed) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for nodeID, collapsed := range state {
		v := 0
		if collapsed {
			v = 1
		}
		if _, err := stmt.ExecContext(ctx, key.UserID, key.SpaceID, nodeID, v); err != nil {
			return fmt.Errorf("insert collapse state: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit collapse state: %w", err)
	}

	s.logger.Debug("collapse state saved",
		"user_id", key.UserID,
		"space_id", key.SpaceID,
		"nodes", len(state),
	)
	return nil
}

// Clear removes the stored state for key
func (s *CollapseStore) Clear(ctx context.Context, key repo.CollapseKey) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM collapse_state WHERE user_id = ? AND space_id = ?`,
		key.UserID, key.SpaceID,
	); err != nil {
		return fmt.Errorf("clear collapse state: %w", err)
	}
	return nil
}
