package gate

import (
	"path"
	"strings"

	"github.com/bookworm/bookworm-web/internal/model"
)

// Rule classifies one path pattern. A rule either redirects by role (Redirects)
// or restricts the path to a single role (Require). A rule with neither allows.
type Rule struct {
	Pattern string
	// Exact matches Pattern only; otherwise Pattern matches itself and everything below it.
	Exact     bool
	Require   model.Role
	Redirects map[model.Role]string
}

// Match reports whether the rule applies to the cleaned request path p.
func (r Rule) Match(p string) bool {
	if r.Exact {
		return p == r.Pattern
	}
	return matchPrefix(r.Pattern, p)
}

// Policy is an ordered rule table; the first matching rule decides.
type Policy struct {
	rules            []Rule
	loginPath        string
	unauthorizedPath string
}

// PolicyOptions configures DefaultPolicy.
type PolicyOptions struct {
	RootRedirect          bool
	AdminHomePath         string
	UserHomePath          string
	LoginPath             string
	UnauthorizedPath      string
	// GuestSettingsRedirect sends guests away from /settings. Empty disables the rule.
	GuestSettingsRedirect string
}

// NewPolicy creates a policy from an explicit rule table.
func NewPolicy(loginPath, unauthorizedPath string, rules ...Rule) *Policy {
	return &Policy{
		rules:            rules,
		loginPath:        loginPath,
		unauthorizedPath: unauthorizedPath,
	}
}

// DefaultPolicy returns the library's rule table: role-based redirect on "/",
// admin-only admin section, user-only user dashboard and no settings for guests.
func DefaultPolicy(opts PolicyOptions) *Policy {
	rules := make([]Rule, 0, 4)
	if opts.RootRedirect {
		rules = append(rules, Rule{
			Pattern: "/",
			Exact:   true,
			Redirects: map[model.Role]string{
				model.RoleUser:  opts.UserHomePath,
				model.RoleAdmin: opts.AdminHomePath,
			},
		})
	}
	rules = append(rules,
		Rule{Pattern: "/dashboard/admin", Require: model.RoleAdmin},
		Rule{Pattern: "/dashboard/user", Require: model.RoleUser},
	)
	if opts.GuestSettingsRedirect != "" {
		rules = append(rules, Rule{
			Pattern:   "/settings",
			Redirects: map[model.Role]string{model.RoleGuest: opts.GuestSettingsRedirect},
		})
	}
	return NewPolicy(opts.LoginPath, opts.UnauthorizedPath, rules...)
}

// Evaluate applies the rule table to a verified role.
func (p *Policy) Evaluate(reqPath string, role model.Role) Decision {
	clean := CleanPath(reqPath)
	for _, rule := range p.rules {
		if !rule.Match(clean) {
			continue
		}
		if rule.Redirects != nil {
			if target := rule.Redirects[role]; target != "" && target != clean {
				return redirect(target, nil)
			}
			return allow()
		}
		if rule.Require != "" && role != rule.Require {
			return redirect(p.unauthorizedPath, ErrForbidden)
		}
		return allow()
	}
	return allow()
}

// Rules returns a copy of the rule table.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Matcher decides which paths the gate runs on.
type Matcher struct {
	root     bool
	prefixes []string
}

// NewMatcher builds a matcher from path prefixes. "/" protects the root path only.
func NewMatcher(patterns []string) Matcher {
	m := Matcher{}
	for _, pat := range patterns {
		pat = CleanPath(pat)
		if pat == "/" {
			m.root = true
			continue
		}
		m.prefixes = append(m.prefixes, pat)
	}
	return m
}

// Protects reports whether reqPath is subject to the gate.
func (m Matcher) Protects(reqPath string) bool {
	clean := CleanPath(reqPath)
	if clean == "/" {
		return m.root
	}
	for _, pre := range m.prefixes {
		if matchPrefix(pre, clean) {
			return true
		}
	}
	return false
}

// CleanPath normalises a request path so "/dashboard//admin/" and
// "/dashboard/x/../admin" classify like "/dashboard/admin".
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// matchPrefix matches whole path segments: "/books" covers "/books" and
// "/books/42" but not "/bookshelf".
func matchPrefix(prefix, p string) bool {
	if prefix == "/" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
