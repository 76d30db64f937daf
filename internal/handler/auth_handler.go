package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookworm/bookworm-web/internal/config"
	"github.com/bookworm/bookworm-web/internal/middleware"
	"github.com/bookworm/bookworm-web/internal/response"
	"github.com/bookworm/bookworm-web/internal/service"
)

// AuthHandler serves the login and unauthorized pages and ends sessions.
// Signing in itself happens against the auth service.
type AuthHandler struct {
	sessionService *service.SessionService
	cookieName     string
	secureCookie   bool
	homePath       string
}

func NewAuthHandler(sessionService *service.SessionService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		sessionService: sessionService,
		cookieName:     cfg.SessionCookieName,
		secureCookie:   cfg.IsProduction(),
		homePath:       "/",
	}
}

// LoginPage godoc
// GET /login
// Returns the login page model. redirectTo is where the reader goes after signing in.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	redirectTo := c.Query("redirectTo")
	if !sameSitePath(redirectTo) {
		redirectTo = h.homePath
	}

	data := gin.H{
		"page":       "login",
		"redirectTo": redirectTo,
	}
	if sess := middleware.GetSession(c); sess != nil {
		data["signedInAs"] = gin.H{"subject": sess.Subject, "role": sess.Role}
	}
	response.Success(c, http.StatusOK, data)
}

// Unauthorized godoc
// GET /unauthorized
func (h *AuthHandler) Unauthorized(c *gin.Context) {
	response.FailWithData(c, http.StatusForbidden, response.ErrForbidden,
		gin.H{"page": "unauthorized", "home": h.homePath})
}

// Logout godoc
// POST /auth/logout
// Deletes the session cookie. Works whether or not the cookie is still valid.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessionService.Logout(c.Request.Context(), middleware.GetSession(c))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, gin.H{"message": "logged out"})
}

// sameSitePath reports whether raw is a path on this site. Browsers treat a
// backslash as "/", so "/\host" leaves the site just like "//host".
func sameSitePath(raw string) bool {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.ContainsRune(raw, '\\') {
		return false
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.User == nil
}
