// Package gate decides, per request, whether a path may be served to the holder
// of a session credential or must be redirected to login or the unauthorized page.
//
// Decide is a pure function of (path, credential, secret, clock). It keeps no state
// between calls and performs no I/O.
package gate

import (
	"time"

	"github.com/bookworm/bookworm-web/internal/config"
)

// Action is the gate's verdict.
type Action int

const (
	ActionAllow Action = iota
	ActionRedirect
)

func (a Action) String() string {
	if a == ActionRedirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the outcome of evaluating one request.
type Decision struct {
	Action Action
	// Target is set for ActionRedirect.
	Target string
	// Err names the failure behind a login or unauthorized redirect. Role-based
	// home redirects carry no error.
	Err error
	// Session is set whenever the credential verified, whatever the action.
	Session *Session
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

func allow() Decision {
	return Decision{Action: ActionAllow}
}

func redirect(target string, err error) Decision {
	return Decision{Action: ActionRedirect, Target: target, Err: err}
}

// Gate combines credential verification with the path policy.
type Gate struct {
	verifier  *Verifier
	policy    *Policy
	matcher   Matcher
	loginPath string
}

// New creates a Gate.
func New(verifier *Verifier, policy *Policy, matcher Matcher) *Gate {
	return &Gate{
		verifier:  verifier,
		policy:    policy,
		matcher:   matcher,
		loginPath: policy.loginPath,
	}
}

// NewFromConfig builds the gate the server runs with.
func NewFromConfig(cfg *config.Config) *Gate {
	return New(
		NewVerifier(cfg.RefreshTokenSecret, time.Now),
		DefaultPolicy(PolicyOptions{
			RootRedirect:          cfg.GateRootRedirect,
			AdminHomePath:         cfg.AdminHomePath,
			UserHomePath:          cfg.UserHomePath,
			LoginPath:             cfg.LoginPath,
			UnauthorizedPath:      cfg.UnauthorizedPath,
			GuestSettingsRedirect: cfg.GateGuestSettingsRedirect,
		}),
		NewMatcher(cfg.GateProtectedPaths),
	)
}

// Protects reports whether the gate runs on reqPath.
func (g *Gate) Protects(reqPath string) bool {
	return g.matcher.Protects(reqPath)
}

// Decide evaluates a request for reqPath carrying token (empty when the cookie is absent).
func (g *Gate) Decide(reqPath, token string) Decision {
	if token == "" {
		return redirect(g.loginPath, ErrMissingCredential)
	}

	sess, err := g.verifier.Verify(token)
	if err != nil {
		return redirect(g.loginPath, ErrInvalidCredential)
	}

	d := g.policy.Evaluate(reqPath, sess.Role)
	d.Session = sess
	return d
}

// Identify verifies token without applying any path policy. Used on unprotected
// paths, where a valid cookie only personalises the page.
func (g *Gate) Identify(token string) (*Session, error) {
	return g.verifier.Verify(token)
}
