package model

import (
	"fmt"
	"sort"
	"strings"
)

// Role grants distinct visibility and mutation rights.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleTaskCreator Role = "TASK_CREATOR"
	RoleReadOnly    Role = "READ_ONLY_USER"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTaskCreator, RoleReadOnly:
		return true
	}
	return false
}

// ParseRole normalizes and validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role: %q (valid: ADMIN, TASK_CREATOR, READ_ONLY_USER)", s)
	}
	return r, nil
}

// RoleSet is the set of roles held by a session. The login response reports
// each role as an independent boolean, so a session may hold zero or more
// roles at once even though account management assigns exactly one.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles. Invalid roles are ignored.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.IsValid() {
			s[r] = struct{}{}
		}
	}
	return s
}

// Has reports whether the set contains the role.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Intersects reports whether the two sets share at least one role.
func (s RoleSet) Intersects(other RoleSet) bool {
	for r := range s {
		if other.Has(r) {
			return true
		}
	}
	return false
}

// Equal reports whether the two sets contain exactly the same roles.
func (s RoleSet) Equal(other RoleSet) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if !other.Has(r) {
			return false
		}
	}
	return true
}

// Slice returns the roles in stable (sorted) order for display.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s RoleSet) String() string {
	if len(s) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, len(s))
	for _, r := range s.Slice() {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}
