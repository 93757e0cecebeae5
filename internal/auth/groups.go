package auth

import (
	"strings"

	"github.com/SscSPs/family_bank/internal/core/domain"
)

// GroupPath is a group name split into its "/"-separated segments.
// "Parents/Admins" is nested within "Parents".
type GroupPath []string

// ParseGroup splits a group name into segments, dropping empty ones.
func ParseGroup(name string) GroupPath {
	parts := strings.Split(name, "/")
	path := make(GroupPath, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			path = append(path, p)
		}
	}
	return path
}

// Within reports whether g equals required or is nested below it.
// Segments compare whole, so "ParentsX" is not within "Parents".
func (g GroupPath) Within(required GroupPath) bool {
	if len(required) == 0 || len(g) < len(required) {
		return false
	}
	for i := range required {
		if g[i] != required[i] {
			return false
		}
	}
	return true
}

// HasGroup reports whether any held group is within required.
func HasGroup(held []string, required string) bool {
	want := ParseGroup(required)
	for _, h := range held {
		if ParseGroup(h).Within(want) {
			return true
		}
	}
	return false
}

// Predicate decides whether a verified principal may call an operation.
type Predicate func(p domain.Principal) bool

// AnyAuthenticated admits every verified principal.
func AnyAuthenticated() Predicate {
	return func(domain.Principal) bool { return true }
}

// RequireAnyGroup admits principals within at least one of groups.
func RequireAnyGroup(groups ...string) Predicate {
	return func(p domain.Principal) bool {
		for _, g := range groups {
			if HasGroup(p.Groups, g) {
				return true
			}
		}
		return false
	}
}

// IsParent reports whether p belongs to the parents group.
func IsParent(p domain.Principal) bool {
	return HasGroup(p.Groups, domain.GroupParents)
}
