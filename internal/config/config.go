package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevRefreshSecret is used to verify session credentials when REFRESH_TOKEN_SECRET is
// unset outside production. It must never sign a real credential.
const DevRefreshSecret = "dev-only-refresh-secret"

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	AppEnv     string
	LogLevel   string
	LogFormat  string

	// APIBaseURL is the REST backend every page model is fetched from.
	APIBaseURL string
	APITimeout time.Duration

	// RedisURL enables the response cache. Empty disables caching.
	RedisURL string
	CacheTTL time.Duration

	RefreshTokenSecret string
	// UsingDevSecret reports that RefreshTokenSecret fell back to DevRefreshSecret.
	UsingDevSecret    bool
	SessionCookieName string

	// GateProtectedPaths lists the path prefixes the access gate runs on.
	// "/" matches the root path only.
	GateProtectedPaths []string
	// GateRootRedirect sends "/" to the role's home page.
	GateRootRedirect          bool
	// GateGuestSettingsRedirect is where a guest token on /settings is sent.
	// Set it empty to let guests through.
	GateGuestSettingsRedirect string
	AdminHomePath             string
	UserHomePath              string
	LoginPath                 string
	UnauthorizedPath          string

	// AllowedOrigins controls HTTP CORS.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins     []string
	RateLimitPerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:                getEnv("SERVER_PORT", "3000"),
		GinMode:                   getEnv("GIN_MODE", "debug"),
		AppEnv:                    getEnv("APP_ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		LogFormat:                 getEnv("LOG_FORMAT", "pretty"),
		APIBaseURL:                strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api/v1"), "/"),
		APITimeout:                time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 15)) * time.Second,
		RedisURL:                  getEnv("REDIS_URL", ""),
		CacheTTL:                  time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		RefreshTokenSecret:        os.Getenv("REFRESH_TOKEN_SECRET"),
		SessionCookieName:         getEnv("SESSION_COOKIE_NAME", "refreshToken"),
		GateProtectedPaths:        parseList(getEnv("GATE_PROTECTED_PATHS", "/,/dashboard,/library,/profile,/settings,/books")),
		GateRootRedirect:          getEnvBool("GATE_ROOT_REDIRECT", true),
		GateGuestSettingsRedirect: lookupEnv("GATE_GUEST_SETTINGS_REDIRECT", "/"),
		AdminHomePath:             getEnv("ADMIN_HOME_PATH", "/dashboard"),
		UserHomePath:              getEnv("USER_HOME_PATH", "/dashboard/user/library"),
		LoginPath:                 getEnv("LOGIN_PATH", "/login"),
		UnauthorizedPath:          getEnv("UNAUTHORIZED_PATH", "/unauthorized"),
		AllowedOrigins:            parseList(getEnv("ALLOWED_ORIGINS", "")),
		RateLimitPerMinute:        getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.RefreshTokenSecret == "" && !cfg.IsProduction() {
		cfg.RefreshTokenSecret = DevRefreshSecret
		cfg.UsingDevSecret = true
	}

	return cfg
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.AppEnv)
	return env == "production" || env == "prod"
}

// Validate rejects configurations the server cannot run safely with.
func (c *Config) Validate() error {
	var errs []error

	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required in production"))
	}
	if c.IsProduction() && c.RefreshTokenSecret == DevRefreshSecret {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET must not be the development secret in production"))
	}
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL is required"))
	}
	if c.SessionCookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME must not be empty"))
	}
	for _, p := range append([]string{c.AdminHomePath, c.UserHomePath, c.LoginPath, c.UnauthorizedPath}, c.GateProtectedPaths...) {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("path %q must start with /", p))
		}
	}
	if c.GateGuestSettingsRedirect != "" && !strings.HasPrefix(c.GateGuestSettingsRedirect, "/") {
		errs = append(errs, fmt.Errorf("path %q must start with /", c.GateGuestSettingsRedirect))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// lookupEnv is getEnv that keeps an explicitly empty value.
func lookupEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseList splits a comma-separated string into a trimmed slice.
// Returns nil if the input is empty.
func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
