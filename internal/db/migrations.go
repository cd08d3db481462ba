package db

import (
	"database/sql"
	"fmt"
)

// LegacySchemaSQL is the table layout written by earlier releases:
// no ordering key and integer role IDs.
const LegacySchemaSQL = `
CREATE TABLE IF NOT EXISTS role_code_lists (
	list_name TEXT,
	role_id INTEGER,
	code TEXT
)
`

// isLegacyTable reports whether role_code_lists exists without an id column.
func isLegacyTable(db *sql.DB) (bool, error) {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='role_code_lists'").Scan(&tableCount)
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if tableCount == 0 {
		return false, nil
	}

	var idCount int
	err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('role_code_lists') WHERE name = 'id'").Scan(&idCount)
	if err != nil {
		return false, fmt.Errorf("failed to inspect role_code_lists columns: %w", err)
	}
	return idCount == 0, nil
}

// upgradeLegacyTable rebuilds role_code_lists with an ordering key.
// Existing rows keep their physical order (rowid) and null rows are discarded.
func upgradeLegacyTable(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin legacy upgrade: %w", err)
	}
	defer tx.Rollback()

	steps := []string{
		"ALTER TABLE role_code_lists RENAME TO role_code_lists_legacy",
		SchemaSQL,
		`INSERT INTO role_code_lists (list_name, role_id, code)
			SELECT list_name, CAST(role_id AS TEXT), code FROM role_code_lists_legacy
			WHERE list_name IS NOT NULL AND role_id IS NOT NULL AND code IS NOT NULL
			ORDER BY rowid`,
		"DROP TABLE role_code_lists_legacy",
	}
	for _, stmt := range steps {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("legacy upgrade failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit legacy upgrade: %w", err)
	}
	return nil
}
