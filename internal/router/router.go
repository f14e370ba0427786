package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/interview-master/backend/internal/config"
	"github.com/interview-master/backend/internal/handler"
	"github.com/interview-master/backend/internal/middleware"
	"github.com/interview-master/backend/internal/response"
	"github.com/interview-master/backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Interview *handler.InterviewHandler
	WS        *handler.WSHandler
	Events    *handler.EventsHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally (skips SSE and WebSocket upgrades).
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/signup", handlers.Auth.Signup)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Interview Group (JWT) ──────────────────────────────────────
	interviews := router.Group("/api/v1/interviews")
	interviews.Use(middleware.RequireJWT(authService))
	{
		interviews.POST("", handlers.Interview.Start)
		interviews.GET("/history", handlers.Interview.History)
		interviews.GET("/:session_id/state", handlers.Interview.State)
		interviews.POST("/:session_id/next", handlers.Interview.Next)
		interviews.POST("/:session_id/previous", handlers.Interview.Previous)
		interviews.POST("/:session_id/answer", handlers.Interview.Answer)
		interviews.POST("/:session_id/submit", handlers.Interview.Submit)
		interviews.GET("/:session_id/result", handlers.Interview.Result)

		// SSE observer stream (EventSource sends the token as a query param)
		interviews.GET("/:session_id/events", handlers.Events.InterviewEventsSSE)
	}

	// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/interviews/:session_id/monitor", handlers.WS.MonitorStream)
	}

	return router
}
