package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for a guild database.
//
// The autoincrement id is the ordering key: rows are read back ORDER BY id so
// list positions survive a restart unchanged.
//
// Tests use this schema via GetSchemaSQL() instead of hardcoding their own.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS role_code_lists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	list_name TEXT NOT NULL,
	role_id TEXT NOT NULL,
	code TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_role_code_lists_list ON role_code_lists(list_name);
CREATE INDEX IF NOT EXISTS idx_role_code_lists_code ON role_code_lists(code);
`

// InitSchema creates the schema if absent, upgrading a legacy table first.
func InitSchema(db *sql.DB) error {
	legacy, err := isLegacyTable(db)
	if err != nil {
		return err
	}
	if legacy {
		if err := upgradeLegacyTable(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
