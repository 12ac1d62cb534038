package models

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// Role is an authorization role carried by users and tokens.
type Role string

// Role constants for user authorization.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var ValidRoles = []Role{RoleUser, RoleAdmin}

// ParseRole accepts a role name in any case and returns the canonical role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range ValidRoles {
		if r == v {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
}

// RoleSet is a sorted, duplicate-free set of roles. It is stored and encoded
// as an array so that MongoDB membership queries on "roles" keep working.
type RoleSet []Role

// NewRoleSet normalizes roles into a set. Empty names are dropped.
func NewRoleSet(roles ...Role) RoleSet {
	seen := make(map[Role]struct{}, len(roles))
	out := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		r = Role(strings.ToUpper(strings.TrimSpace(string(r))))
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseRoleSet validates every name against ValidRoles.
func ParseRoleSet(names []string) (RoleSet, error) {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return NewRoleSet(roles...), nil
}

func (s RoleSet) Has(r Role) bool {
	for _, v := range s {
		if v == r {
			return true
		}
	}
	return false
}

// Valid reports whether the set is non-empty and only holds known roles.
func (s RoleSet) Valid() bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r != RoleUser && r != RoleAdmin {
			return false
		}
	}
	return true
}

func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Strings())
}

// UnmarshalJSON accepts the list form (["USER","ADMIN"], duplicates allowed),
// the set form ({"USER":true}) and a single comma separated string.
func (s *RoleSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	var names []string
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &names); err != nil {
			return fmt.Errorf("roles: %w", err)
		}
	case '{':
		var set map[string]bool
		if err := json.Unmarshal(data, &set); err != nil {
			return fmt.Errorf("roles: %w", err)
		}
		for name, present := range set {
			if present {
				names = append(names, name)
			}
		}
	case '"':
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return fmt.Errorf("roles: %w", err)
		}
		names = strings.Split(joined, ",")
	default:
		return fmt.Errorf("roles: unsupported encoding %q", data)
	}
	roles := make([]Role, len(names))
	for i, n := range names {
		roles[i] = Role(n)
	}
	*s = NewRoleSet(roles...)
	return nil
}
