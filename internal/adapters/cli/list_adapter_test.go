package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/example/rolebot/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

// mockRegistryService implements primary.RegistryService for testing
type mockRegistryService struct {
	names      []string
	entries    map[string][]*primary.Entry
	entriesErr error
}

func (m *mockRegistryService) CreateList(ctx context.Context, name string) error {
	return errors.New("not implemented in adapter")
}

func (m *mockRegistryService) AddEntry(ctx context.Context, listName string, role primary.Role, code string) (*primary.Entry, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockRegistryService) RemoveEntryByPosition(ctx context.Context, listName string, position int) (*primary.Entry, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockRegistryService) DeleteList(ctx context.Context, listName string) error {
	return errors.New("not implemented in adapter")
}

func (m *mockRegistryService) RedeemCode(ctx context.Context, code string) (*primary.Entry, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockRegistryService) ListNames(ctx context.Context) []string {
	return m.names
}

func (m *mockRegistryService) Entries(ctx context.Context, listName string) ([]*primary.Entry, error) {
	if m.entriesErr != nil {
		return nil, m.entriesErr
	}
	entries, ok := m.entries[listName]
	if !ok {
		return nil, primary.ErrListNotFound
	}
	return entries, nil
}

func (m *mockRegistryService) Rehydrate(ctx context.Context, resolver primary.RoleResolver) error {
	return errors.New("not implemented in adapter")
}

var _ primary.RegistryService = (*mockRegistryService)(nil)

func newMockRegistry() *mockRegistryService {
	return &mockRegistryService{
		names: []string{"vip", "empty"},
		entries: map[string][]*primary.Entry{
			"vip": {
				{Sequence: 1, Role: primary.Role{ID: "100", Name: "VIP"}, Code: "ABC123"},
				{Sequence: 2, Role: primary.Role{ID: "200", Name: "Gold"}, Code: "XYZ"},
			},
			"empty": {},
		},
	}
}

func TestListAdapter_Summary(t *testing.T) {
	var out bytes.Buffer
	adapter := NewListAdapter(newMockRegistry(), &out)

	if err := adapter.Summary(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	for _, want := range []string{"LIST", "vip", "2", "empty", "0"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
	if strings.Index(output, "vip") > strings.Index(output, "empty") {
		t.Errorf("expected lists in creation order, got: %s", output)
	}
}

func TestListAdapter_Summary_Empty(t *testing.T) {
	var out bytes.Buffer
	adapter := NewListAdapter(&mockRegistryService{}, &out)

	if err := adapter.Summary(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "No lists found") {
		t.Errorf("expected 'No lists found', got: %s", out.String())
	}
}

func TestListAdapter_Summary_Error(t *testing.T) {
	registry := newMockRegistry()
	registry.entriesErr = errors.New("boom")
	adapter := NewListAdapter(registry, &bytes.Buffer{})

	err := adapter.Summary(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func TestListAdapter_Show(t *testing.T) {
	var out bytes.Buffer
	adapter := NewListAdapter(newMockRegistry(), &out)

	if err := adapter.Show(context.Background(), "vip"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "List: vip") {
		t.Errorf("expected list header, got: %s", output)
	}
	if !strings.Contains(output, "1.") || !strings.Contains(output, "ABC123") {
		t.Errorf("expected first entry, got: %s", output)
	}
	if strings.Index(output, "ABC123") > strings.Index(output, "XYZ") {
		t.Errorf("expected entries in order, got: %s", output)
	}
}

func TestListAdapter_Show_Missing(t *testing.T) {
	adapter := NewListAdapter(newMockRegistry(), &bytes.Buffer{})

	err := adapter.Show(context.Background(), "nope")
	if !errors.Is(err, primary.ErrListNotFound) {
		t.Errorf("expected ErrListNotFound, got: %v", err)
	}
}
