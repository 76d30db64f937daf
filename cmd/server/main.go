package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/config"
	"github.com/bookworm/bookworm-web/internal/database"
	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/handler"
	"github.com/bookworm/bookworm-web/internal/logger"
	"github.com/bookworm/bookworm-web/internal/middleware"
	"github.com/bookworm/bookworm-web/internal/router"
	"github.com/bookworm/bookworm-web/internal/service"
	"github.com/bookworm/bookworm-web/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("env", cfg.AppEnv).
		Str("api", cfg.APIBaseURL).
		Msg("Starting Bookworm web server")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.UsingDevSecret {
		log.Warn().Msg("REFRESH_TOKEN_SECRET not set, using the development secret. Never do this in production")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	store, rdb, err := database.NewResponseCache(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Initialize Services ──────────────────────────────────────────
	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)

	bookService := service.NewBookService(api, store, cfg.CacheTTL, log)
	genreService := service.NewGenreService(api, store, cfg.CacheTTL, log)
	reviewService := service.NewReviewService(api, store, cfg.CacheTTL, log)
	libraryService := service.NewLibraryService(api, store, cfg.CacheTTL, log)
	tutorialService := service.NewTutorialService(api, store, cfg.CacheTTL, log)
	userService := service.NewUserService(api, store, cfg.CacheTTL, log)
	dashboardService := service.NewDashboardService(api, store, cfg.CacheTTL, log)
	sessionService := service.NewSessionService(store, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(sessionService, cfg),
		Catalog:   handler.NewCatalogHandler(bookService, genreService, reviewService, libraryService),
		Library:   handler.NewLibraryHandler(libraryService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Tutorial:  handler.NewTutorialHandler(tutorialService),
		Admin:     handler.NewAdminHandler(bookService, genreService, tutorialService, reviewService, userService),
		System:    handler.NewSystemHandler(rdb, log),
	}

	// Rate limiter for auth routes (RATE_LIMIT_PER_MINUTE requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer authLimiter.Stop()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(gate.NewFromConfig(cfg), handlers, authLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
