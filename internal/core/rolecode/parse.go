package rolecode

import (
	"errors"
	"strings"
)

// ErrMalformedEntry is returned when an entry is not of the form "role:code".
var ErrMalformedEntry = errors.New("entry must be of the form 'role:code'")

// ParseEntry splits an administrator-supplied "role:code" pair.
// Exactly one separator is allowed; both halves are trimmed and must be non-empty.
func ParseEntry(raw string) (roleName, code string, err error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return "", "", ErrMalformedEntry
	}
	roleName = strings.TrimSpace(parts[0])
	code = strings.TrimSpace(parts[1])
	if roleName == "" || code == "" {
		return "", "", ErrMalformedEntry
	}
	return roleName, code, nil
}

// SplitNames splits a comma-separated list, trimming each item and dropping blanks.
func SplitNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
