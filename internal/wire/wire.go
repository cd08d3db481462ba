// Package wire provides dependency injection for the rolebot application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/rolebot/internal/adapters/cli"
	"github.com/example/rolebot/internal/adapters/discord"
	"github.com/example/rolebot/internal/adapters/sqlite"
	"github.com/example/rolebot/internal/app"
	"github.com/example/rolebot/internal/config"
	"github.com/example/rolebot/internal/ports/primary"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	sessions *app.GuildSessions
	bot      *discord.Bot
	initErr  error
	once     sync.Once
)

// Configure sets the configuration and logger services are built from.
// It must be called before Bot.
func Configure(c *config.Config, l *zap.Logger) {
	cfg = c
	logger = l
}

// Bot returns the singleton Bot instance.
func Bot() (*discord.Bot, error) {
	once.Do(initServices)
	return bot, initErr
}

// Shutdown closes every guild store opened by the bot.
func Shutdown() error {
	if sessions == nil {
		return nil
	}
	return sessions.Close()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	if cfg == nil {
		initErr = errors.New("wire: Configure was not called")
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		initErr = err
		return
	}

	// Secondary adapters: Discord REST for the guild, one SQLite file per guild for lists
	gateway := discord.NewGuildGateway(session)
	factory := sqlite.NewRoleCodeRepositoryFactory(cfg.DataDir)

	// Services (primary ports implementation)
	sessions = app.NewGuildSessions(factory, gateway, logger.Named("sessions"))
	grants := app.NewGrantService(gateway, logger.Named("grants"))

	fetcher := discord.NewHTTPFetcher(&http.Client{Timeout: cfg.RequestTimeout()})
	handler := discord.NewHandler(session, sessions, grants, fetcher, logger.Named("discord"), cfg.RequestTimeout())
	bot = discord.NewBot(session, handler, cfg.GuildIDs, logger)
}

// ListAdapter opens one guild's store without connecting to Discord and
// returns an adapter over its lists. Role IDs stand in for role names.
// The returned func closes the store.
func ListAdapter(ctx context.Context, dataDir, guildID string, out io.Writer) (*cliadapter.ListAdapter, func() error, error) {
	repo, err := sqlite.NewRoleCodeRepositoryFactory(dataDir).Open(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}

	registry := app.NewRegistry(repo, nil)
	offline := primary.RoleResolverFunc(func(_ context.Context, roleID string) (primary.Role, bool) {
		return primary.Role{ID: roleID, Name: roleID}, true
	})
	if err := registry.Rehydrate(ctx, offline); err != nil {
		repo.Close()
		return nil, nil, err
	}

	return cliadapter.NewListAdapter(registry, out), repo.Close, nil
}
