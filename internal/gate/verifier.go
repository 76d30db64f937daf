package gate

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookworm/bookworm-web/internal/model"
)

// Claims is the payload of a session credential.
type Claims struct {
	jwt.RegisteredClaims
	UserID string     `json:"userId,omitempty"`
	Email  string     `json:"email,omitempty"`
	Role   model.Role `json:"role"`
}

// Verifier checks session credentials against a shared HMAC secret.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier. now is the clock used for expiry checks; nil means time.Now.
func NewVerifier(secret string, now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}
}

// Verify parses tokenStr and returns the session it describes. Every failure,
// including a panic inside the parser, is reported as ErrInvalidCredential.
func (v *Verifier) Verify(tokenStr string) (sess *Session, err error) {
	if tokenStr == "" {
		return nil, ErrMissingCredential
	}

	defer func() {
		if r := recover(); r != nil {
			sess = nil
			err = fmt.Errorf("%w: panic during verification: %v", ErrInvalidCredential, r)
		}
	}()

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !token.Valid {
		return nil, ErrInvalidCredential
	}
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: role claim missing", ErrInvalidCredential)
	}

	subject := claims.UserID
	if subject == "" {
		subject = claims.Subject
	}

	return &Session{
		Subject:   subject,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
		Token:     tokenStr,
	}, nil
}

// Sign issues an HS256 credential for claims. The server only verifies; this exists
// for the local issue-token tool and for tests.
func Sign(secret string, claims Claims) (string, error) {
	if secret == "" {
		return "", errors.New("signing secret is empty")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// NewClaims builds claims for subject with the given role, valid for ttl from now.
func NewClaims(subject, email string, role model.Role, now time.Time, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: subject,
		Email:  email,
		Role:   role,
	}
}
