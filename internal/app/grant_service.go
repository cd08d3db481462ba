package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/rolebot/internal/ports/primary"
	"github.com/example/rolebot/internal/ports/secondary"
)

// grantConcurrency bounds in-flight member lookups and role grants per bulk request.
const grantConcurrency = 4

// GrantServiceImpl implements the GrantService interface.
type GrantServiceImpl struct {
	guild  secondary.GuildGateway
	logger *zap.Logger
}

// NewGrantService creates a new GrantService with injected dependencies.
func NewGrantService(guild secondary.GuildGateway, logger *zap.Logger) *GrantServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrantServiceImpl{
		guild:  guild,
		logger: logger,
	}
}

// ToggleRole grants the role when the member lacks it and revokes it otherwise.
func (s *GrantServiceImpl) ToggleRole(ctx context.Context, req primary.ToggleRoleRequest) (primary.ToggleResult, error) {
	if slices.Contains(req.MemberRoleIDs, req.Role.ID) {
		if err := s.guild.RemoveMemberRole(ctx, req.GuildID, req.UserID, req.Role.ID); err != nil {
			return 0, fmt.Errorf("failed to remove role %s: %w", req.Role.Name, err)
		}
		return primary.ToggleRemoved, nil
	}

	if err := s.guild.AddMemberRole(ctx, req.GuildID, req.UserID, req.Role.ID); err != nil {
		return 0, fmt.Errorf("failed to add role %s: %w", req.Role.Name, err)
	}
	return primary.ToggleAdded, nil
}

// GrantRoleToMembers grants a role to each named member.
// Failed usernames are reported in input order; one failure does not stop the rest.
func (s *GrantServiceImpl) GrantRoleToMembers(ctx context.Context, req primary.GrantRoleRequest) (*primary.GrantRoleResponse, error) {
	role, err := s.ResolveRoleByName(ctx, req.GuildID, req.RoleName)
	if err != nil {
		return nil, err
	}

	ok := make([]bool, len(req.Usernames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(grantConcurrency)

	for i, username := range req.Usernames {
		i, username := i, username
		g.Go(func() error {
			member, err := s.guild.FindMemberByName(gctx, req.GuildID, username)
			if err != nil || member == nil {
				s.logger.Debug("member lookup failed", zap.String("username", username), zap.Error(err))
				return nil
			}
			if err := s.guild.AddMemberRole(gctx, req.GuildID, member.UserID, role.ID); err != nil {
				s.logger.Warn("role grant failed",
					zap.String("username", username), zap.String("role", role.Name), zap.Error(err))
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &primary.GrantRoleResponse{Role: role}
	for i, username := range req.Usernames {
		if ok[i] {
			resp.SuccessCount++
		} else {
			resp.Failed = append(resp.Failed, username)
		}
	}
	return resp, nil
}

// GrantRoleFromCSV reads usernames from the first column of each non-empty record.
func (s *GrantServiceImpl) GrantRoleFromCSV(ctx context.Context, guildID, roleName string, r io.Reader) (*primary.GrantRoleResponse, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var usernames []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		if name := strings.TrimSpace(record[0]); name != "" {
			usernames = append(usernames, name)
		}
	}

	return s.GrantRoleToMembers(ctx, primary.GrantRoleRequest{
		GuildID:   guildID,
		RoleName:  roleName,
		Usernames: usernames,
	})
}

// ResolveRoleByName looks up a single role by display name.
func (s *GrantServiceImpl) ResolveRoleByName(ctx context.Context, guildID, name string) (primary.Role, error) {
	roles, err := s.ResolveRoles(ctx, guildID, []string{name})
	if err != nil {
		return primary.Role{}, err
	}
	return roles[0], nil
}

// ResolveRoles looks up roles by display name, preserving input order.
// Unknown names are collected into an InvalidRolesError.
func (s *GrantServiceImpl) ResolveRoles(ctx context.Context, guildID string, names []string) ([]primary.Role, error) {
	roster, err := s.guild.Roles(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild roles: %w", err)
	}

	byName := make(map[string]secondary.GuildRole, len(roster))
	for _, r := range roster {
		if _, dup := byName[r.Name]; !dup {
			byName[r.Name] = r
		}
	}

	var (
		roles   []primary.Role
		invalid []string
	)
	for _, name := range names {
		name = strings.TrimSpace(name)
		r, ok := byName[name]
		if !ok {
			invalid = append(invalid, name)
			continue
		}
		roles = append(roles, primary.Role{ID: r.ID, Name: r.Name})
	}
	if len(invalid) > 0 {
		return nil, &primary.InvalidRolesError{Names: invalid}
	}
	return roles, nil
}

// ResolveRoleByID looks up a role by its platform identifier.
func (s *GrantServiceImpl) ResolveRoleByID(ctx context.Context, guildID, roleID string) (primary.Role, error) {
	roster, err := s.guild.Roles(ctx, guildID)
	if err != nil {
		return primary.Role{}, fmt.Errorf("failed to fetch guild roles: %w", err)
	}
	for _, r := range roster {
		if r.ID == roleID {
			return primary.Role{ID: r.ID, Name: r.Name}, nil
		}
	}
	return primary.Role{}, fmt.Errorf("role %s: %w", roleID, primary.ErrRoleNotFound)
}

// Ensure GrantServiceImpl implements the interface.
var _ primary.GrantService = (*GrantServiceImpl)(nil)
