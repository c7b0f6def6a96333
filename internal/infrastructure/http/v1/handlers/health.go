package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"linksoc/internal/infrastructure/storage/postgres"
)

// Version is reported by /health/info. Set at build time with -ldflags.
var Version = "0.1.0"

// HealthHandler provides health check endpoints.
// A nil pool means the in-memory store is in use.
type HealthHandler struct {
	pool *postgres.Pool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool *postgres.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	info := gin.H{
		"app":     "linksoc",
		"version": Version,
		"store":   "memory",
	}

	if h.pool != nil {
		stat := h.pool.Stats()
		info["store"] = "postgres"
		info["database"] = map[string]any{
			"total_conns":    stat.TotalConns,
			"acquired_conns": stat.AcquiredConns,
			"idle_conns":     stat.IdleConns,
			"max_conns":      stat.MaxConns,
		}
	}

	c.JSON(http.StatusOK, info)
}

func (h *HealthHandler) ping(ctx context.Context) error {
	if h.pool == nil {
		return nil
	}
	return h.pool.Ping(ctx)
}
