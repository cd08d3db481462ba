package app

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/example/rolebot/internal/core/rolecode"
	"github.com/example/rolebot/internal/ports/primary"
	"github.com/example/rolebot/internal/ports/secondary"
)

type entry struct {
	role primary.Role
	code string
}

// Registry implements the RegistryService interface for a single guild.
// Memory is the source of truth at runtime; every mutation is written through
// to the repository before the lock is released, and rolled back if that write fails.
type Registry struct {
	repo   secondary.RoleCodeRepository
	logger *zap.Logger

	mu    sync.RWMutex
	lists map[string][]entry
	order []string
}

// NewRegistry creates an empty Registry backed by repo.
func NewRegistry(repo secondary.RoleCodeRepository, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		repo:   repo,
		logger: logger,
		lists:  make(map[string][]entry),
	}
}

// CreateList creates an empty list. Nothing is persisted until an entry is added.
func (r *Registry) CreateList(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.lists[name]
	if err := rolecode.CanCreateList(rolecode.CreateListContext{
		Name:       name,
		NameExists: exists,
	}).Error(); err != nil {
		return err
	}

	r.createLocked(name)
	return nil
}

// AddEntry appends a role/code pair, creating the list if it does not exist.
func (r *Registry) AddEntry(ctx context.Context, listName string, role primary.Role, code string) (*primary.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner := ""
	if found, ok := r.findLocked(code); ok {
		owner = found
	}
	if err := rolecode.CanAddEntry(rolecode.AddEntryContext{
		ListName:  listName,
		Code:      code,
		CodeOwner: owner,
	}).Error(); err != nil {
		return nil, err
	}

	_, existed := r.lists[listName]
	if !existed {
		r.createLocked(listName)
	}
	r.lists[listName] = append(r.lists[listName], entry{role: role, code: code})
	seq := len(r.lists[listName])

	if err := r.repo.Insert(ctx, listName, role.ID, code); err != nil {
		r.lists[listName] = r.lists[listName][:seq-1]
		if !existed {
			r.dropLocked(listName)
		}
		r.logger.Warn("rolled back entry after store failure",
			zap.String("list", listName), zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to save entry: %w", primary.ErrStoreUnavailable, err)
	}

	return &primary.Entry{Sequence: seq, Role: role, Code: code}, nil
}

// RemoveEntryByPosition removes the entry at a 1-based position.
// Entries after it shift down by one.
func (r *Registry) RemoveEntryByPosition(ctx context.Context, listName string, position int) (*primary.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, exists := r.lists[listName]
	if err := rolecode.CanRemoveEntry(rolecode.RemoveEntryContext{
		ListName:   listName,
		ListExists: exists,
		Position:   position,
		Length:     len(entries),
	}).Error(); err != nil {
		return nil, err
	}

	idx := position - 1
	removed := entries[idx]
	r.lists[listName] = slices.Delete(slices.Clone(entries), idx, idx+1)

	if err := r.repo.DeleteEntry(ctx, listName, removed.code); err != nil {
		r.lists[listName] = entries
		r.logger.Warn("rolled back entry removal after store failure",
			zap.String("list", listName), zap.Int("position", position), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to delete entry: %w", primary.ErrStoreUnavailable, err)
	}

	return &primary.Entry{Sequence: position, Role: removed.role, Code: removed.code}, nil
}

// DeleteList removes a list and every row stored for it.
func (r *Registry) DeleteList(ctx context.Context, listName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, exists := r.lists[listName]
	if err := rolecode.CanDeleteList(rolecode.DeleteListContext{
		ListName:   listName,
		ListExists: exists,
	}).Error(); err != nil {
		return err
	}

	order := slices.Clone(r.order)
	r.dropLocked(listName)

	if err := r.repo.DeleteList(ctx, listName); err != nil {
		r.lists[listName] = entries
		r.order = order
		r.logger.Warn("rolled back list deletion after store failure",
			zap.String("list", listName), zap.Error(err))
		return fmt.Errorf("%w: failed to delete list: %w", primary.ErrStoreUnavailable, err)
	}

	return nil
}

// RedeemCode scans lists in creation order and entries in position order,
// returning the first entry whose code matches exactly.
func (r *Registry) RedeemCode(ctx context.Context, code string) (*primary.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		for i, e := range r.lists[name] {
			if e.code == code {
				return &primary.Entry{Sequence: i + 1, Role: e.role, Code: e.code}, nil
			}
		}
	}
	return nil, primary.ErrCodeNotFound
}

// ListNames returns list names in creation order.
func (r *Registry) ListNames(ctx context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Entries returns a snapshot of a list's entries, numbered from 1.
func (r *Registry) Entries(ctx context.Context, listName string) ([]*primary.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, ok := r.lists[listName]
	if !ok {
		return nil, fmt.Errorf("list %q does not exist: %w", listName, primary.ErrListNotFound)
	}

	out := make([]*primary.Entry, len(entries))
	for i, e := range entries {
		out[i] = &primary.Entry{Sequence: i + 1, Role: e.role, Code: e.code}
	}
	return out, nil
}

// Rehydrate replaces in-memory state with the store's rows.
// Rows whose role no longer resolves are skipped and left in the store.
// The write lock is held from scan to swap so no mutation lands in between;
// resolver must not call back into the registry.
func (r *Registry) Rehydrate(ctx context.Context, resolver primary.RoleResolver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.repo.ScanAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to load entries: %w", primary.ErrStoreUnavailable, err)
	}

	lists := make(map[string][]entry)
	var order []string
	seen := make(map[string]bool)
	dropped := 0

	for _, rec := range records {
		role, ok := resolver.ResolveRole(ctx, rec.RoleID)
		if !ok {
			dropped++
			r.logger.Debug("skipping entry with unknown role",
				zap.String("list", rec.ListName), zap.String("role_id", rec.RoleID))
			continue
		}
		if seen[rec.Code] {
			dropped++
			r.logger.Warn("skipping duplicate code in store",
				zap.String("list", rec.ListName), zap.String("code", rec.Code))
			continue
		}
		seen[rec.Code] = true

		if _, ok := lists[rec.ListName]; !ok {
			order = append(order, rec.ListName)
		}
		lists[rec.ListName] = append(lists[rec.ListName], entry{role: role, code: rec.Code})
	}

	r.lists = lists
	r.order = order

	r.logger.Info("registry rehydrated",
		zap.Int("lists", len(order)),
		zap.Int("entries", len(records)-dropped),
		zap.Int("dropped", dropped))
	return nil
}

// Helper methods

func (r *Registry) createLocked(name string) {
	r.lists[name] = nil
	r.order = append(r.order, name)
}

func (r *Registry) dropLocked(name string) {
	delete(r.lists, name)
	if i := slices.Index(r.order, name); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

// findLocked returns the list holding code, if any.
func (r *Registry) findLocked(code string) (string, bool) {
	for _, name := range r.order {
		for _, e := range r.lists[name] {
			if e.code == code {
				return name, true
			}
		}
	}
	return "", false
}

// Ensure Registry implements the interface.
var _ primary.RegistryService = (*Registry)(nil)
