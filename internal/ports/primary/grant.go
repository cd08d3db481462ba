package primary

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrRoleNotFound is returned when a role name does not exist in the guild.
var ErrRoleNotFound = errors.New("role not found")

// GrantService defines the primary port for assigning roles to members.
type GrantService interface {
	// ToggleRole grants the role when the member lacks it and revokes it otherwise.
	ToggleRole(ctx context.Context, req ToggleRoleRequest) (ToggleResult, error)

	// GrantRoleToMembers grants a role to each named member.
	GrantRoleToMembers(ctx context.Context, req GrantRoleRequest) (*GrantRoleResponse, error)

	// GrantRoleFromCSV grants a role to the members named in the first CSV column.
	GrantRoleFromCSV(ctx context.Context, guildID, roleName string, r io.Reader) (*GrantRoleResponse, error)

	// ResolveRoleByName looks up a single role by display name.
	ResolveRoleByName(ctx context.Context, guildID, name string) (Role, error)

	// ResolveRoles looks up several roles by display name.
	ResolveRoles(ctx context.Context, guildID string, names []string) ([]Role, error)

	// ResolveRoleByID looks up a role by its platform identifier.
	ResolveRoleByID(ctx context.Context, guildID, roleID string) (Role, error)
}

// ToggleResult reports which way a toggle went.
type ToggleResult int

const (
	ToggleAdded ToggleResult = iota + 1
	ToggleRemoved
)

// ToggleRoleRequest contains parameters for toggling a member's role.
type ToggleRoleRequest struct {
	GuildID       string
	UserID        string
	MemberRoleIDs []string
	Role          Role
}

// GrantRoleRequest contains parameters for a bulk grant.
type GrantRoleRequest struct {
	GuildID   string
	RoleName  string
	Usernames []string
}

// GrantRoleResponse contains the outcome of a bulk grant.
type GrantRoleResponse struct {
	Role         Role
	SuccessCount int
	Failed       []string
}

// InvalidRolesError lists role names that could not be resolved.
type InvalidRolesError struct {
	Names []string
}

func (e *InvalidRolesError) Error() string {
	return "invalid roles: " + strings.Join(e.Names, ", ")
}

// Unwrap lets callers match ErrRoleNotFound.
func (e *InvalidRolesError) Unwrap() error { return ErrRoleNotFound }
