package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/logger"
)

// ContextKeySession is the Gin context key for the verified *gate.Session.
const ContextKeySession = "session"

// Gate runs the access gate before any handler. Protected paths are allowed or
// redirected; on other paths a valid cookie only attaches the session.
func Gate(g *gate.Gate, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	log = logger.Component(log, "gate")

	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)
		reqPath := c.Request.URL.Path

		if !g.Protects(reqPath) {
			if token != "" {
				if sess, err := g.Identify(token); err == nil {
					c.Set(ContextKeySession, sess)
				}
			}
			c.Next()
			return
		}

		d := g.Decide(reqPath, token)
		if d.Allowed() {
			c.Set(ContextKeySession, d.Session)
			c.Next()
			return
		}

		log.Debug().
			Str("path", reqPath).
			Str("target", d.Target).
			AnErr("reason", d.Err).
			Msg("request redirected")

		c.Redirect(http.StatusTemporaryRedirect, redirectLocation(c, d))
		c.Abort()
	}
}

// GetSession retrieves the verified session from the Gin context, or nil.
func GetSession(c *gin.Context) *gate.Session {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return nil
	}
	sess, ok := val.(*gate.Session)
	if !ok {
		return nil
	}
	return sess
}

// redirectLocation appends redirectTo to login redirects of page loads, so the
// login page can send the reader back after signing in.
func redirectLocation(c *gin.Context, d gate.Decision) string {
	toLogin := errors.Is(d.Err, gate.ErrMissingCredential) || errors.Is(d.Err, gate.ErrInvalidCredential)
	if !toLogin || c.Request.Method != http.MethodGet {
		return d.Target
	}
	q := url.Values{"redirectTo": {c.Request.URL.RequestURI()}}
	return d.Target + "?" + q.Encode()
}
