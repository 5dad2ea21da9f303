// Package api exposes the tempo services over HTTP with gin.
package api

import (
	"log/slog"
	"net/http"

	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/identity"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the collaborators the router needs. Metrics may be nil.
type Deps struct {
	Config   config.Config
	Logger   *slog.Logger
	Sessions service.SessionService
	Queries  service.QueryService
	Tags     service.TagService
	Users    service.UserService
	Auth     identity.Authenticator
	Metrics  *telemetry.Metrics
}

type handlers struct {
	sessions service.SessionService
	queries  service.QueryService
	tags     service.TagService
	users    service.UserService
	auth     identity.Authenticator
}

// NewRouter builds the gin engine with every route mounted under /api and
// the Prometheus endpoint at /metrics.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dev := d.Config.IsDevelopment()

	r := gin.New()
	r.Use(recovery(logger, dev))
	if d.Config.Telemetry.TraceExporter != "" && d.Config.Telemetry.TraceExporter != "none" {
		r.Use(otelgin.Middleware(d.Config.Telemetry.ServiceName))
	}
	r.Use(requestLogger(logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	h := &handlers{
		sessions: d.Sessions,
		queries:  d.Queries,
		tags:     d.Tags,
		users:    d.Users,
		auth:     d.Auth,
	}

	api := r.Group("/api", errorHandler(logger, dev))
	if d.Config.Server.RateLimit > 0 {
		api.Use(rateLimit(d.Config.Server.RateLimit, d.Config.Server.RateBurst))
	}
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.POST("/auth/logout", h.logout)

	authed := api.Group("", identity.Middleware(d.Auth))
	authed.GET("/auth/me", h.me)
	authed.PUT("/auth/me/settings", h.updateSettings)

	authed.GET("/tags", h.listTags)
	authed.POST("/tags", h.createTag)
	authed.DELETE("/tags/:id", h.deleteTag)

	sessions := authed.Group("/sessions")
	sessions.POST("", h.createSession)
	sessions.GET("", h.listSessions)
	sessions.GET("/scheduled", h.scheduledSessions)
	sessions.GET("/:id", h.getSession)
	sessions.PATCH("/:id", h.rescheduleSession)
	sessions.DELETE("/:id", h.deleteSession)
	sessions.POST("/:id/start", h.startSession)
	sessions.POST("/:id/stop", h.stopSession)
	sessions.POST("/:id/breaks/start", h.startBreak)
	sessions.POST("/:id/breaks/stop", h.stopBreak)

	authed.GET("/history", h.history)
	authed.GET("/upcoming", h.upcoming)
	authed.GET("/analytics", h.analytics)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Status: "error", Message: "route not found"})
	})
	return r
}
