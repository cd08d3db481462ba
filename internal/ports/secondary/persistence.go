// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// RoleCodeRepository defines the secondary port for role/code persistence.
// Each guild has its own repository instance backed by its own store.
type RoleCodeRepository interface {
	// Insert persists a new (list, role, code) row. A stored row that already
	// holds the code is replaced; the registry only inserts codes it does not
	// hold, so such a row is one whose role no longer resolves.
	Insert(ctx context.Context, listName, roleID, code string) error

	// DeleteEntry removes the row for a code within a list.
	DeleteEntry(ctx context.Context, listName, code string) error

	// DeleteList removes every row belonging to a list.
	DeleteList(ctx context.Context, listName string) error

	// ScanAll returns every persisted row in insertion order.
	ScanAll(ctx context.Context) ([]*RoleCodeRecord, error)

	// Close releases the underlying store.
	Close() error
}

// RoleCodeRecord represents a role/code row as stored in persistence.
type RoleCodeRecord struct {
	ID        int64
	ListName  string
	RoleID    string
	Code      string
	CreatedAt string
}

// RoleCodeRepositoryFactory opens the repository for a guild.
type RoleCodeRepositoryFactory interface {
	Open(ctx context.Context, guildID string) (RoleCodeRepository, error)
}
