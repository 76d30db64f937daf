package model

// Role is the access level carried in a session credential.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	// RoleGuest is issued for browsing without an account. It can never be
	// assigned to a user.
	RoleGuest Role = "guest"
)

// Valid reports whether r is a role a user account can hold.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// UpdateRoleRequest is the payload for changing a user's role.
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=admin user"`
}
