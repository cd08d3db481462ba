// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/rolebot/internal/db"
	"github.com/example/rolebot/internal/ports/secondary"
)

// RoleCodeRepository implements secondary.RoleCodeRepository with SQLite.
type RoleCodeRepository struct {
	db *sql.DB
}

// NewRoleCodeRepository creates a new SQLite role/code repository.
func NewRoleCodeRepository(db *sql.DB) *RoleCodeRepository {
	return &RoleCodeRepository{db: db}
}

// Insert persists a new (list, role, code) row, replacing any stored row
// that already holds the code.
func (r *RoleCodeRepository) Insert(ctx context.Context, listName, roleID, code string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM role_code_lists WHERE code = ?", code); err != nil {
		return fmt.Errorf("failed to clear stale code: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO role_code_lists (list_name, role_id, code) VALUES (?, ?, ?)",
		listName, roleID, code,
	); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

// DeleteEntry removes the row for a code within a list.
// Deleting a row that is already gone is not an error.
func (r *RoleCodeRepository) DeleteEntry(ctx context.Context, listName, code string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM role_code_lists WHERE list_name = ? AND code = ?",
		listName, code,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	return nil
}

// DeleteList removes every row belonging to a list, orphaned rows included.
func (r *RoleCodeRepository) DeleteList(ctx context.Context, listName string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM role_code_lists WHERE list_name = ?", listName)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	return nil
}

// ScanAll retrieves every row in insertion order.
func (r *RoleCodeRepository) ScanAll(ctx context.Context) ([]*secondary.RoleCodeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, list_name, role_id, code, created_at FROM role_code_lists ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}
	defer rows.Close()

	var records []*secondary.RoleCodeRecord
	for rows.Next() {
		var createdAt sql.NullTime

		record := &secondary.RoleCodeRecord{}
		if err := rows.Scan(&record.ID, &record.ListName, &record.RoleID, &record.Code, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if createdAt.Valid {
			record.CreatedAt = createdAt.Time.Format(time.RFC3339)
		}

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}

	return records, nil
}

// Close closes the underlying database.
func (r *RoleCodeRepository) Close() error {
	return r.db.Close()
}

// RoleCodeRepositoryFactory opens one database file per guild under a data directory.
type RoleCodeRepositoryFactory struct {
	dataDir string
}

// NewRoleCodeRepositoryFactory creates a factory rooted at dataDir.
func NewRoleCodeRepositoryFactory(dataDir string) *RoleCodeRepositoryFactory {
	return &RoleCodeRepositoryFactory{dataDir: dataDir}
}

// Open opens (creating if needed) the guild's database.
func (f *RoleCodeRepositoryFactory) Open(ctx context.Context, guildID string) (secondary.RoleCodeRepository, error) {
	conn, err := db.OpenGuild(f.dataDir, guildID)
	if err != nil {
		return nil, err
	}
	return NewRoleCodeRepository(conn), nil
}

// Ensure the adapters implement the interfaces.
var (
	_ secondary.RoleCodeRepository        = (*RoleCodeRepository)(nil)
	_ secondary.RoleCodeRepositoryFactory = (*RoleCodeRepositoryFactory)(nil)
)
