package gate

import "errors"

// Gate outcomes that end in a redirect.
var (
	// ErrMissingCredential means the session cookie is absent or empty.
	ErrMissingCredential = errors.New("session credential missing")
	// ErrInvalidCredential covers bad signatures, expiry, malformed payloads and
	// missing role claims. Callers never see which one it was.
	ErrInvalidCredential = errors.New("session credential invalid or expired")
	// ErrForbidden means the credential is valid but its role does not satisfy the path.
	ErrForbidden = errors.New("role not permitted for path")
)
