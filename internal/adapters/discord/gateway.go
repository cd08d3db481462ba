package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/example/rolebot/internal/ports/secondary"
)

// memberSearchLimit caps the candidates fetched when resolving a username.
const memberSearchLimit = 25

// GuildGateway implements secondary.GuildGateway over the Discord REST API.
type GuildGateway struct {
	session Session
}

// NewGuildGateway creates a gateway that issues requests through session.
func NewGuildGateway(session Session) *GuildGateway {
	return &GuildGateway{session: session}
}

// Roles returns the guild's current roles.
func (g *GuildGateway) Roles(ctx context.Context, guildID string) ([]secondary.GuildRole, error) {
	roles, err := g.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	out := make([]secondary.GuildRole, 0, len(roles))
	for _, r := range roles {
		out = append(out, secondary.GuildRole{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// FindMemberByName resolves a member by username, falling back to
// global display name and then server nickname. Returns nil when nobody matches.
func (g *GuildGateway) FindMemberByName(ctx context.Context, guildID, username string) (*secondary.GuildMember, error) {
	name := strings.TrimSpace(username)
	// Legacy "name#1234" tags: search by the name part.
	if i := strings.LastIndex(name, "#"); i > 0 {
		name = name[:i]
	}
	if name == "" {
		return nil, nil
	}

	candidates, err := g.session.GuildMembersSearch(guildID, name, memberSearchLimit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to search members: %w", err)
	}

	matchers := []func(*discordgo.Member) bool{
		func(m *discordgo.Member) bool { return m.User.Username == name },
		func(m *discordgo.Member) bool { return m.User.GlobalName == name },
		func(m *discordgo.Member) bool { return m.Nick == name },
	}
	for _, match := range matchers {
		for _, m := range candidates {
			if m.User != nil && match(m) {
				return toGuildMember(m), nil
			}
		}
	}
	return nil, nil
}

// AddMemberRole grants a role to a member.
func (g *GuildGateway) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := g.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	return nil
}

// RemoveMemberRole revokes a role from a member.
func (g *GuildGateway) RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := g.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	return nil
}

func toGuildMember(m *discordgo.Member) *secondary.GuildMember {
	return &secondary.GuildMember{
		UserID:   m.User.ID,
		Username: m.User.Username,
		RoleIDs:  m.Roles,
	}
}

// Ensure GuildGateway implements the interface.
var _ secondary.GuildGateway = (*GuildGateway)(nil)
