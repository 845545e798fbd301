package directory

import "strings"

// Role is the caller's privilege level, higher values grant more.
type Role int

const (
	RoleUser Role = iota + 1
	RoleModerator
	RoleAdmin
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleModerator:
		return "moderator"
	case RoleUser:
		fallthrough
	default:
		return "user"
	}
}

// ParseRole parses a role name, unknown values degrade to user.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "moderator":
		return RoleModerator
	case "user":
		fallthrough
	default:
		return RoleUser
	}
}
