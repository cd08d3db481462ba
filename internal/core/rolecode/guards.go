// Package rolecode contains the pure business logic for role/code lists.
// Guards are pure functions that evaluate preconditions without side effects.
package rolecode

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds reported by the guards. Callers match them with errors.Is.
var (
	ErrAlreadyExists   = errors.New("list already exists")
	ErrListNotFound    = errors.New("list not found")
	ErrInvalidPosition = errors.New("invalid entry position")
	ErrDuplicateCode   = errors.New("duplicate code")
	ErrEmptyCode       = errors.New("empty code")
	ErrEmptyName       = errors.New("empty list name")
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Kind    error
}

// Error converts the guard result to an error if not allowed.
// The returned error unwraps to Kind.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &guardError{reason: r.Reason, kind: r.Kind}
}

type guardError struct {
	reason string
	kind   error
}

func (e *guardError) Error() string { return e.reason }
func (e *guardError) Unwrap() error { return e.kind }

func deny(kind error, format string, args ...any) GuardResult {
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf(format, args...),
		Kind:    kind,
	}
}

// CreateListContext provides context for list creation guards.
type CreateListContext struct {
	Name       string
	NameExists bool
}

// AddEntryContext provides context for entry insertion guards.
type AddEntryContext struct {
	ListName string
	Code     string
	// CodeOwner is the list already holding Code, empty if the code is free.
	CodeOwner string
}

// RemoveEntryContext provides context for entry removal guards.
type RemoveEntryContext struct {
	ListName   string
	ListExists bool
	Position   int
	Length     int
}

// DeleteListContext provides context for list deletion guards.
type DeleteListContext struct {
	ListName   string
	ListExists bool
}

// CanCreateList evaluates whether a list can be created.
// Rules:
// - Name must not be empty
// - Name must be unique within the guild
func CanCreateList(ctx CreateListContext) GuardResult {
	if strings.TrimSpace(ctx.Name) == "" {
		return deny(ErrEmptyName, "list name cannot be empty")
	}
	if ctx.NameExists {
		return deny(ErrAlreadyExists, "list %q already exists", ctx.Name)
	}
	return GuardResult{Allowed: true}
}

// CanAddEntry evaluates whether a role/code entry can be added.
// Rules:
// - List name must not be empty (a missing list is created implicitly)
// - Code must not be empty
// - Code must be unique across every list
func CanAddEntry(ctx AddEntryContext) GuardResult {
	if strings.TrimSpace(ctx.ListName) == "" {
		return deny(ErrEmptyName, "list name cannot be empty")
	}
	if ctx.Code == "" {
		return deny(ErrEmptyCode, "code cannot be empty")
	}
	if ctx.CodeOwner != "" {
		return deny(ErrDuplicateCode, "code %q already exists in list %q", ctx.Code, ctx.CodeOwner)
	}
	return GuardResult{Allowed: true}
}

// CanRemoveEntry evaluates whether the entry at a 1-based position can be removed.
// Rules:
// - List must exist
// - Position must lie within [1, length]
func CanRemoveEntry(ctx RemoveEntryContext) GuardResult {
	if !ctx.ListExists {
		return deny(ErrListNotFound, "list %q does not exist", ctx.ListName)
	}
	if ctx.Position < 1 || ctx.Position > ctx.Length {
		return deny(ErrInvalidPosition, "invalid entry number %d for list %q (has %d)", ctx.Position, ctx.ListName, ctx.Length)
	}
	return GuardResult{Allowed: true}
}

// CanDeleteList evaluates whether a list can be deleted.
func CanDeleteList(ctx DeleteListContext) GuardResult {
	if !ctx.ListExists {
		return deny(ErrListNotFound, "list %q does not exist", ctx.ListName)
	}
	return GuardResult{Allowed: true}
}
