// Command issue-token mints a session credential for local development, so
// gated pages can be exercised without the auth service.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/bookworm/bookworm-web/internal/config"
	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/logger"
	"github.com/bookworm/bookworm-web/internal/model"
)

func main() {
	subject := flag.String("subject", "", "user id placed in the sub and userId claims")
	email := flag.String("email", "", "email claim")
	role := flag.String("role", string(model.RoleUser), "role claim: admin or user")
	ttl := flag.Duration("ttl", 7*24*time.Hour, "credential lifetime")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	// Logs go to stderr so stdout carries only the token.
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProduction() {
		log.Fatal().Msg("issue-token refuses to run with APP_ENV=production")
	}

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	if *subject == "" {
		fmt.Fprint(os.Stderr, "Enter Subject (user id): ")
		line, _ := reader.ReadString('\n')
		*subject = strings.TrimSpace(line)
	}
	if *subject == "" {
		fmt.Fprintln(os.Stderr, "Error: Subject is required")
		os.Exit(1)
	}

	r := model.Role(strings.ToLower(strings.TrimSpace(*role)))
	if !r.Valid() {
		fmt.Fprintf(os.Stderr, "Error: unknown role %q (want admin or user)\n", *role)
		os.Exit(1)
	}
	if *ttl <= 0 {
		fmt.Fprintln(os.Stderr, "Error: ttl must be positive")
		os.Exit(1)
	}

	// An empty answer falls back to the secret a dev server runs with.
	secret := os.Getenv("REFRESH_TOKEN_SECRET")
	if secret == "" {
		fmt.Fprint(os.Stderr, "Enter REFRESH_TOKEN_SECRET (empty for the development secret): ")
		byteSecret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr) // Newline after secret input
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error reading secret")
			os.Exit(1)
		}
		secret = string(byteSecret)
	}
	if secret == "" {
		secret = config.DevRefreshSecret
		log.Warn().Msg("Signing with the development secret")
	}

	// ─── Sign ──────────────────────────────────────────────────────────
	claims := gate.NewClaims(*subject, *email, r, time.Now(), *ttl)
	token, err := gate.Sign(secret, claims)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign credential")
	}

	log.Info().
		Str("subject", *subject).
		Str("role", string(r)).
		Time("expires_at", claims.ExpiresAt.Time).
		Msg("Credential issued")

	fmt.Fprintf(os.Stderr, "Send it as the %s cookie, e.g. curl -b '%s=<token>' http://localhost:%s/dashboard\n",
		cfg.SessionCookieName, cfg.SessionCookieName, cfg.ServerPort)
	fmt.Println(token)
}
