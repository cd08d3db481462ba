package primary

import (
	"context"
	"errors"
)

// ErrGuildNotReady is returned when a guild's registry has not been opened yet.
var ErrGuildNotReady = errors.New("guild session not ready")

// SessionService defines the primary port for per-guild registry lifecycle.
type SessionService interface {
	// Open opens (or returns the already open) registry for a guild,
	// rehydrating it from the guild's store.
	Open(ctx context.Context, guildID string) (RegistryService, error)

	// Registry returns the open registry for a guild.
	Registry(guildID string) (RegistryService, error)

	// Close releases every open store.
	Close() error
}
