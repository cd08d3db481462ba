package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Intents the bot needs: guild events and member lookups.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

// NewSession creates an unopened gateway session for a bot token.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	return s, nil
}

// Bot owns the gateway connection and routes its events to a Handler.
type Bot struct {
	session  *discordgo.Session
	handler  *Handler
	guildIDs []string
	logger   *zap.Logger
}

// NewBot wires handler to session's events. guildIDs restricts command
// registration to those guilds; empty registers globally.
func NewBot(session *discordgo.Session, handler *Handler, guildIDs []string, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		session:  session,
		handler:  handler,
		guildIDs: guildIDs,
		logger:   logger,
	}
}

// Run connects to the gateway and serves events until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	removers := []func(){
		b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
			b.logger.Info("connected", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
			if err := b.handler.RegisterCommands(ctx, r.Application.ID, b.guildIDs); err != nil {
				b.logger.Error("command registration failed", zap.Error(err))
			}
		}),
		b.session.AddHandler(func(_ *discordgo.Session, g *discordgo.GuildCreate) {
			if err := b.handler.OpenGuild(ctx, g.ID); err != nil {
				b.logger.Error("guild open failed", zap.String("guild", g.ID), zap.Error(err))
			}
		}),
		b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
			b.handler.HandleInteraction(ctx, i.Interaction)
		}),
	}
	defer func() {
		for _, remove := range removers {
			remove()
		}
	}()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	b.logger.Info("bot running")

	<-ctx.Done()

	b.logger.Info("shutting down")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord gateway: %w", err)
	}
	return nil
}
