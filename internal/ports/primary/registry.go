package primary

import (
	"context"
	"errors"

	"github.com/example/rolebot/internal/core/rolecode"
)

// Failure kinds returned by RegistryService. Match them with errors.Is.
var (
	ErrAlreadyExists    = rolecode.ErrAlreadyExists
	ErrListNotFound     = rolecode.ErrListNotFound
	ErrInvalidPosition  = rolecode.ErrInvalidPosition
	ErrDuplicateCode    = rolecode.ErrDuplicateCode
	ErrEmptyCode        = rolecode.ErrEmptyCode
	ErrEmptyName        = rolecode.ErrEmptyName
	ErrCodeNotFound     = errors.New("code not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// RegistryService defines the primary port for one guild's role/code lists.
type RegistryService interface {
	// CreateList creates an empty list.
	CreateList(ctx context.Context, name string) error

	// AddEntry appends a role/code pair to a list, creating the list if needed.
	AddEntry(ctx context.Context, listName string, role Role, code string) (*Entry, error)

	// RemoveEntryByPosition removes the entry at a 1-based position.
	RemoveEntryByPosition(ctx context.Context, listName string, position int) (*Entry, error)

	// DeleteList removes a list and all of its entries.
	DeleteList(ctx context.Context, listName string) error

	// RedeemCode returns the first entry whose code matches.
	RedeemCode(ctx context.Context, code string) (*Entry, error)

	// ListNames returns list names in creation order.
	ListNames(ctx context.Context) []string

	// Entries returns a list's entries in position order.
	Entries(ctx context.Context, listName string) ([]*Entry, error)

	// Rehydrate rebuilds in-memory state from the store.
	Rehydrate(ctx context.Context, resolver RoleResolver) error
}

// Role is a guild role referenced by identifier, with its display name.
type Role struct {
	ID   string
	Name string
}

// Entry is a role/code pair at its current position in a list.
// Sequence is recomputed on every read and is not a stable identifier.
type Entry struct {
	Sequence int
	Role     Role
	Code     string
}

// RoleResolver resolves persisted role IDs against the live guild roster.
type RoleResolver interface {
	ResolveRole(ctx context.Context, roleID string) (Role, bool)
}

// RoleResolverFunc adapts a function to RoleResolver.
type RoleResolverFunc func(ctx context.Context, roleID string) (Role, bool)

// ResolveRole calls f.
func (f RoleResolverFunc) ResolveRole(ctx context.Context, roleID string) (Role, bool) {
	return f(ctx, roleID)
}
