// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/rolebot/internal/ports/primary"
)

// ListAdapter prints a guild's role-code lists for operators.
// It depends only on the RegistryService interface, enabling easy testing with mocks.
type ListAdapter struct {
	service primary.RegistryService
	out     io.Writer
}

// NewListAdapter creates a new ListAdapter with the given service.
func NewListAdapter(service primary.RegistryService, out io.Writer) *ListAdapter {
	return &ListAdapter{
		service: service,
		out:     out,
	}
}

// Summary prints every list with its entry count.
func (a *ListAdapter) Summary(ctx context.Context) error {
	names := a.service.ListNames(ctx)
	if len(names) == 0 {
		fmt.Fprintln(a.out, "No lists found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-24s %s\n", "LIST", "ENTRIES")
	fmt.Fprintln(a.out, "────────────────────────────────────")
	for _, name := range names {
		entries, err := a.service.Entries(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to read list %s: %w", name, err)
		}
		fmt.Fprintf(a.out, "%-24s %d\n", name, len(entries))
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show prints one list's entries in order.
func (a *ListAdapter) Show(ctx context.Context, listName string) error {
	entries, err := a.service.Entries(ctx, listName)
	if err != nil {
		return fmt.Errorf("failed to get list: %w", err)
	}

	fmt.Fprintf(a.out, "\nList: %s\n", color.New(color.Bold).Sprint(listName))
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "  (empty)")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(a.out, "  %s %-20s %s\n",
			color.New(color.FgHiBlack).Sprintf("%3d.", e.Sequence),
			color.New(color.FgCyan).Sprint(e.Role.Name),
			color.New(color.FgYellow).Sprint(e.Code))
	}
	fmt.Fprintln(a.out)

	return nil
}
