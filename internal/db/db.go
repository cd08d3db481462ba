package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// GuildDBPath returns the path of a guild's database file inside dataDir.
func GuildDBPath(dataDir, guildID string) string {
	return filepath.Join(dataDir, fmt.Sprintf("role_codes_%s.db", guildID))
}

// Open opens the SQLite database at path and makes sure the schema exists.
// Use ":memory:" for a throwaway database.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// OpenGuild opens the database for a guild under dataDir.
func OpenGuild(dataDir, guildID string) (*sql.DB, error) {
	return Open(GuildDBPath(dataDir, guildID))
}
