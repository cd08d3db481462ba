package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/example/rolebot/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.RoleCodeRepository        = (*mockRoleCodeRepository)(nil)
	_ secondary.RoleCodeRepositoryFactory = (*mockRepositoryFactory)(nil)
	_ secondary.GuildGateway              = (*mockGuildGateway)(nil)
)

// mockRoleCodeRepository implements secondary.RoleCodeRepository for testing.
// Rows are kept in insertion order like the SQLite adapter returns them.
type mockRoleCodeRepository struct {
	mu        sync.Mutex
	rows      []*secondary.RoleCodeRecord
	nextID    int64
	insertErr error
	deleteErr error
	scanErr   error
	closed    bool
}

func newMockRoleCodeRepository() *mockRoleCodeRepository {
	return &mockRoleCodeRepository{}
}

func (m *mockRoleCodeRepository) Insert(ctx context.Context, listName, roleID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.Code != code {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	m.nextID++
	m.rows = append(m.rows, &secondary.RoleCodeRecord{ID: m.nextID, ListName: listName, RoleID: roleID, Code: code})
	return nil
}

func (m *mockRoleCodeRepository) DeleteEntry(ctx context.Context, listName, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.rows[:0]
	for _, r := range m.rows {
		if !(r.ListName == listName && r.Code == code) {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	return nil
}

func (m *mockRoleCodeRepository) DeleteList(ctx context.Context, listName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.ListName != listName {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	return nil
}

func (m *mockRoleCodeRepository) ScanAll(ctx context.Context) ([]*secondary.RoleCodeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	out := make([]*secondary.RoleCodeRecord, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *mockRoleCodeRepository) Close() error {
	m.closed = true
	return nil
}

// codes returns "list/role/code" triples for assertions.
func (m *mockRoleCodeRepository) codes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.rows {
		out = append(out, r.ListName+"/"+r.RoleID+"/"+r.Code)
	}
	return out
}

// mockRepositoryFactory hands out one mock repository per guild.
type mockRepositoryFactory struct {
	mu      sync.Mutex
	repos   map[string]*mockRoleCodeRepository
	openErr error
	opened  int
}

func newMockRepositoryFactory() *mockRepositoryFactory {
	return &mockRepositoryFactory{repos: make(map[string]*mockRoleCodeRepository)}
}

func (f *mockRepositoryFactory) Open(ctx context.Context, guildID string) (secondary.RoleCodeRepository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	repo, ok := f.repos[guildID]
	if !ok {
		repo = newMockRoleCodeRepository()
		f.repos[guildID] = repo
	}
	return repo, nil
}

// mockGuildGateway implements secondary.GuildGateway for testing.
type mockGuildGateway struct {
	mu       sync.Mutex
	roles    []secondary.GuildRole
	members  map[string]*secondary.GuildMember // username -> member
	added    map[string][]string               // userID -> roleIDs added
	removed  map[string][]string               // userID -> roleIDs removed
	rolesErr error
	addErr   map[string]error      // userID -> error
	gates    map[string]*rolesGate // guildID -> gate held by Roles
}

// rolesGate holds a Roles call open until release is closed.
type rolesGate struct {
	entered chan struct{}
	release chan struct{}
}

// blockRoles makes the next Roles call for guildID wait on the returned gate.
func (m *mockGuildGateway) blockRoles(guildID string) *rolesGate {
	g := &rolesGate{entered: make(chan struct{}), release: make(chan struct{})}
	m.mu.Lock()
	m.gates[guildID] = g
	m.mu.Unlock()
	return g
}

func newMockGuildGateway(roles ...secondary.GuildRole) *mockGuildGateway {
	return &mockGuildGateway{
		roles:   roles,
		members: make(map[string]*secondary.GuildMember),
		added:   make(map[string][]string),
		removed: make(map[string][]string),
		addErr:  make(map[string]error),
		gates:   make(map[string]*rolesGate),
	}
}

func (m *mockGuildGateway) addMember(userID, username string) {
	m.members[username] = &secondary.GuildMember{UserID: userID, Username: username}
}

func (m *mockGuildGateway) Roles(ctx context.Context, guildID string) ([]secondary.GuildRole, error) {
	m.mu.Lock()
	gate := m.gates[guildID]
	delete(m.gates, guildID)
	m.mu.Unlock()
	if gate != nil {
		close(gate.entered)
		select {
		case <-gate.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.rolesErr != nil {
		return nil, m.rolesErr
	}
	return m.roles, nil
}

func (m *mockGuildGateway) FindMemberByName(ctx context.Context, guildID, username string) (*secondary.GuildMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.HasPrefix(username, "error") {
		return nil, errors.New("lookup failed")
	}
	return m.members[username], nil
}

func (m *mockGuildGateway) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.addErr[userID]; err != nil {
		return err
	}
	m.added[userID] = append(m.added[userID], roleID)
	return nil
}

func (m *mockGuildGateway) RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed[userID] = append(m.removed[userID], roleID)
	return nil
}
