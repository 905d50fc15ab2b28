// internal/api/router.go
package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

// RouterOptions configures SetupRouter
type RouterOptions struct {
	AllowedOrigins []string
	DebugMode      bool
	Limiter        *RateLimiter
	// Gatherer backs /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer
}

// SetupRouter configures the HTTP routes
func SetupRouter(h *Handler, opts RouterOptions) *gin.Engine {
	if !opts.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(utils.GetLogger()))
	if h.Metrics != nil {
		router.Use(MetricsMiddleware(h.Metrics))
	}
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/healthz", h.Health)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	} else {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	if opts.Limiter != nil {
		api.Use(opts.Limiter.Middleware())
	}
	{
		api.GET("/scenarios", h.ListScenarios)
		api.GET("/scenarios/:id", h.GetScenario)
		api.POST("/scenarios/reload", h.ReloadScenarios)
		api.GET("/decision-options", h.GetDecisionOptions)

		api.GET("/sessions", h.ListSessions)
		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/:id", h.GetSession)
		api.DELETE("/sessions/:id", h.DeleteSession)

		api.POST("/sessions/:id/start", h.SessionCommand(CommandStart))
		api.POST("/sessions/:id/advance", h.SessionCommand(CommandAdvance))
		api.POST("/sessions/:id/retreat", h.SessionCommand(CommandRetreat))
		api.POST("/sessions/:id/branch", h.SelectBranch)
		api.POST("/sessions/:id/decisions", h.SetDecision)
		api.POST("/sessions/:id/submit", h.SessionCommand(CommandSubmit))
		api.POST("/sessions/:id/restart", h.SessionCommand(CommandRestart))
		api.POST("/sessions/:id/sound", h.SessionCommand(CommandSound))

		api.GET("/ws/status", h.GetWebSocketStatus)
	}

	router.GET("/ws/sessions/:id", h.SessionWebSocket)

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID"}
	config.MaxAge = 12 * time.Hour

	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	return config
}
