package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/example/rolebot/internal/ports/primary"
	"github.com/example/rolebot/internal/ports/secondary"
)

type guildSession struct {
	repo     secondary.RoleCodeRepository
	registry *Registry
}

// GuildSessions implements the SessionService interface.
// It owns one Registry and one store per guild.
type GuildSessions struct {
	factory secondary.RoleCodeRepositoryFactory
	guild   secondary.GuildGateway
	logger  *zap.Logger

	// opening collapses concurrent first opens of one guild; mu guards only the map.
	opening  singleflight.Group
	mu       sync.Mutex
	sessions map[string]*guildSession
}

// NewGuildSessions creates a new GuildSessions with injected dependencies.
func NewGuildSessions(factory secondary.RoleCodeRepositoryFactory, guild secondary.GuildGateway, logger *zap.Logger) *GuildSessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuildSessions{
		factory:  factory,
		guild:    guild,
		logger:   logger,
		sessions: make(map[string]*guildSession),
	}
}

// Open returns the guild's registry, opening its store and rehydrating on first use.
// A slow first open of one guild never blocks lookups for other guilds.
func (s *GuildSessions) Open(ctx context.Context, guildID string) (primary.RegistryService, error) {
	if registry, ok := s.cached(guildID); ok {
		return registry, nil
	}

	v, err, _ := s.opening.Do(guildID, func() (any, error) {
		if registry, ok := s.cached(guildID); ok {
			return registry, nil
		}
		sess, err := s.openSession(ctx, guildID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.sessions[guildID] = sess
		s.mu.Unlock()
		return sess.registry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Registry), nil
}

func (s *GuildSessions) cached(guildID string) (*Registry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[guildID]
	if !ok {
		return nil, false
	}
	return sess.registry, true
}

func (s *GuildSessions) openSession(ctx context.Context, guildID string) (*guildSession, error) {
	repo, err := s.factory.Open(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open store for guild %s: %w", primary.ErrStoreUnavailable, guildID, err)
	}

	resolver, err := s.rosterResolver(ctx, guildID)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	registry := NewRegistry(repo, s.logger.With(zap.String("guild", guildID)))
	if err := registry.Rehydrate(ctx, resolver); err != nil {
		_ = repo.Close()
		return nil, err
	}

	return &guildSession{repo: repo, registry: registry}, nil
}

// Registry returns the open registry for a guild.
func (s *GuildSessions) Registry(guildID string) (primary.RegistryService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[guildID]
	if !ok {
		return nil, fmt.Errorf("guild %s: %w", guildID, primary.ErrGuildNotReady)
	}
	return sess.registry, nil
}

// Close closes every open store.
func (s *GuildSessions) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id, sess := range s.sessions {
		if err := sess.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("guild %s: %w", id, err))
		}
		delete(s.sessions, id)
	}
	return errors.Join(errs...)
}

// rosterResolver snapshots the guild's roles once and resolves against the snapshot.
func (s *GuildSessions) rosterResolver(ctx context.Context, guildID string) (primary.RoleResolver, error) {
	roster, err := s.guild.Roles(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles for guild %s: %w", guildID, err)
	}

	byID := make(map[string]primary.Role, len(roster))
	for _, r := range roster {
		byID[r.ID] = primary.Role{ID: r.ID, Name: r.Name}
	}
	return primary.RoleResolverFunc(func(_ context.Context, roleID string) (primary.Role, bool) {
		role, ok := byID[roleID]
		return role, ok
	}), nil
}

// Ensure GuildSessions implements the interface.
var _ primary.SessionService = (*GuildSessions)(nil)
