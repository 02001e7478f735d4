package model

import "strings"

// Role is a user's authorization role.  Stored and compared lowercase; all
// comparisons go through Equal so casing from old tokens or hand-entered
// data never matters.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleWaiter     Role = "waiter"
	RoleCook       Role = "cook"
	RoleClient     Role = "client"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleSupervisor, RoleWaiter, RoleCook, RoleClient}

// ParseRole normalizes s and returns the matching canonical role.  The
// second return is false when s names no known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return known, true
		}
	}
	return "", false
}

// Equal compares roles case-insensitively.
func (r Role) Equal(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

func (r Role) String() string { return string(r) }
