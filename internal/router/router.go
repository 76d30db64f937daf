package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/config"
	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/handler"
	"github.com/bookworm/bookworm-web/internal/middleware"
	"github.com/bookworm/bookworm-web/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Library   *handler.LibraryHandler
	Dashboard *handler.DashboardHandler
	Tutorial  *handler.TutorialHandler
	Admin     *handler.AdminHandler
	System    *handler.SystemHandler
}

// publicMaxAge is the browser cache lifetime of anonymous catalogue pages.
const publicMaxAge = 60

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter may be nil to disable rate limiting of /auth.
func SetupRouter(
	g *gate.Gate,
	handlers *Handlers,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		// The session cookie only travels cross-origin with credentials.
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// The gate runs before every handler. It decides on protected paths and
	// only attaches the session elsewhere.
	router.Use(middleware.Gate(g, cfg.SessionCookieName, log))

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// Health check.
	router.GET("/health", handlers.System.Health)

	// ─── 1. Public Pages ───────────────────────────────────────────────
	public := router.Group("")
	public.Use(middleware.CacheControl(publicMaxAge))
	{
		public.GET("/browse", handlers.Catalog.Browse)
		public.GET("/tutorials", handlers.Tutorial.List)
	}

	router.GET("/login", middleware.NoStore(), handlers.Auth.LoginPage)
	router.GET("/unauthorized", middleware.NoStore(), handlers.Auth.Unauthorized)

	// ─── 2. Auth (Rate Limited) ────────────────────────────────────────
	auth := router.Group("/auth")
	if authLimiter != nil {
		auth.Use(authLimiter.Middleware())
	}
	{
		auth.POST("/logout", handlers.Auth.Logout)
	}

	// ─── 3. Reader Pages (Gated) ───────────────────────────────────────
	reader := router.Group("")
	reader.Use(middleware.NoStore())
	{
		reader.GET("/", handlers.Dashboard.Home)
		reader.GET("/books/:id", handlers.Catalog.BookDetail)
		reader.POST("/books/:id/reviews", handlers.Catalog.AddReview)
		reader.POST("/books/:id/shelf", handlers.Catalog.AddToShelf)
		reader.GET("/library", handlers.Library.List)
		reader.GET("/dashboard", handlers.Dashboard.Stats)
	}

	// ─── 4. User Dashboard (role user) ─────────────────────────────────
	userDash := router.Group("/dashboard/user")
	userDash.Use(middleware.NoStore())
	{
		userDash.GET("/library", handlers.Library.List)
		userDash.PATCH("/library/:bookId", handlers.Library.UpdateShelf)
		userDash.DELETE("/library/:bookId", handlers.Library.Remove)
	}

	// ─── 5. Admin Dashboard (role admin) ───────────────────────────────
	adminDash := router.Group("/dashboard/admin")
	adminDash.Use(middleware.NoStore())
	{
		books := adminDash.Group("/books")
		{
			books.GET("", handlers.Admin.ListBooks)
			books.POST("", handlers.Admin.CreateBook)
			books.PATCH("/:id", handlers.Admin.UpdateBook)
			books.DELETE("/:id", handlers.Admin.DeleteBook)
		}

		genres := adminDash.Group("/genres")
		{
			genres.GET("", handlers.Admin.ListGenres)
			genres.POST("", handlers.Admin.CreateGenre)
			genres.PATCH("/:id", handlers.Admin.UpdateGenre)
			genres.DELETE("/:id", handlers.Admin.DeleteGenre)
		}

		tutorials := adminDash.Group("/tutorials")
		{
			tutorials.GET("", handlers.Tutorial.List)
			tutorials.POST("", handlers.Admin.CreateTutorial)
			tutorials.PATCH("/:id", handlers.Admin.UpdateTutorial)
			tutorials.DELETE("/:id", handlers.Admin.DeleteTutorial)
		}

		reviews := adminDash.Group("/reviews")
		{
			reviews.GET("", handlers.Admin.PendingReviews)
			reviews.PATCH("/:id/approve", handlers.Admin.ApproveReview)
			reviews.DELETE("/:id", handlers.Admin.DeleteReview)
		}

		users := adminDash.Group("/users")
		{
			users.GET("", handlers.Admin.ListUsers)
			users.PATCH("/:id/role", handlers.Admin.UpdateUserRole)
			users.DELETE("/:id", handlers.Admin.DeleteUser)
		}
	}

	return router
}
