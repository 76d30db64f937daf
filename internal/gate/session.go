package gate

import (
	"time"

	"github.com/bookworm/bookworm-web/internal/model"
)

// Session is the verified identity behind a request. It is built once by the gate
// and handed to handlers through the request context.
type Session struct {
	Subject   string
	Email     string
	Role      model.Role
	ExpiresAt time.Time
	// Token is the raw credential, forwarded to the library API.
	Token string
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == model.RoleAdmin
}
