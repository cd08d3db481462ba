package secondary

import "context"

// GuildRole is a role as reported by the chat platform.
type GuildRole struct {
	ID   string
	Name string
}

// GuildMember is a guild member with the role IDs they currently hold.
type GuildMember struct {
	UserID   string
	Username string
	RoleIDs  []string
}

// GuildGateway defines the secondary port for the live guild on the chat platform.
type GuildGateway interface {
	// Roles returns the guild's current role roster.
	Roles(ctx context.Context, guildID string) ([]GuildRole, error)

	// FindMemberByName looks a member up by username (nil if none).
	FindMemberByName(ctx context.Context, guildID, username string) (*GuildMember, error)

	// AddMemberRole grants a role to a member.
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error

	// RemoveMemberRole revokes a role from a member.
	RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error
}
