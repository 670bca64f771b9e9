package models

// Role is carried through signup, login and token claims. Nothing in the
// service gates behaviour on it.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole returns RoleUser for an empty string and false for anything it
// does not recognise.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "", RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}
