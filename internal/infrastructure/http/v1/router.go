// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"linksoc/internal/core/idempotency"
	"linksoc/internal/domain/auth"
	"linksoc/internal/domain/labels"
	"linksoc/internal/domain/reprint"
	"linksoc/internal/domain/rules"
	"linksoc/internal/domain/tasks"
	"linksoc/internal/infrastructure/http/v1/handlers"
	"linksoc/internal/infrastructure/http/v1/middleware"
	"linksoc/internal/infrastructure/metrics"
	"linksoc/internal/infrastructure/storage/postgres"
	"linksoc/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is nil when the in-memory store is in use
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Metrics, when set, instruments requests and serves /metrics
	Metrics *metrics.Metrics

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Idempotency store; nil disables X-Idempotency-Key handling
	Idempotency idempotency.Store

	AuthService    *auth.Service
	LabelService   *labels.Service
	ReprintService *reprint.Service
	TaskService    *tasks.Service
	RuleService    *rules.Service

	// Debug enables gin debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters: logging and metrics read the status
	// written by the error handler, which in turn renders recovered panics)
	router.Use(middleware.Trace())
	if cfg.Logger != nil {
		router.Use(middleware.Logger(cfg.Logger))
	}
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		registerAuthRoutes(api, base, cfg)
		registerRuleRoutes(api, base, cfg)

		fifo := api.Group("/fifo")
		fifo.Use(middleware.Auth(cfg.JWTValidator))
		if cfg.Idempotency != nil {
			fifo.Use(middleware.Idempotency(cfg.Idempotency))
		}

		registerLabelRoutes(fifo, base, cfg)
		registerReprintRoutes(fifo, base, cfg)
		registerTaskRoutes(fifo, base, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}
	handlers.NewAuthHandler(base, cfg.AuthService).RegisterRoutes(rg.Group("/auth"))
}

// registerRuleRoutes registers the public flow-status rules table.
func registerRuleRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.RuleService == nil {
		return
	}
	rg.GET("/rules", handlers.NewRuleHandler(base, cfg.RuleService).List)
}

func registerLabelRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.LabelService == nil {
		return
	}
	RegisterLabelRoutes(rg, handlers.NewLabelHandler(base, cfg.LabelService))
}

func registerReprintRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.ReprintService == nil {
		return
	}
	h := handlers.NewReprintHandler(base, cfg.ReprintService)

	group := rg.Group("/reprint")
	group.GET("", h.Queue)
	group.POST("", h.Enqueue)
	group.GET("/labels", h.Labels)
	group.POST("/clear", h.Clear)
}

func registerTaskRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.TaskService == nil {
		return
	}
	h := handlers.NewTaskHandler(base, cfg.TaskService)

	group := rg.Group("/tasks")
	group.GET("", h.Completed)
	group.GET("/:id/labels", h.Labels)
}
