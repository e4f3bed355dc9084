package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtside/field-booking/internal/worker"
	"github.com/courtside/field-booking/pkg/database"
	"github.com/courtside/field-booking/pkg/redis"
)

// HealthHandler exposes liveness and readiness probes
type HealthHandler struct {
	db     *database.Postgres
	redis  *redis.Client
	worker *worker.StaleBookingWorker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.Postgres, redisClient *redis.Client, staleWorker *worker.StaleBookingWorker) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, worker: staleWorker}
}

// Live handles GET /health
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	healthy := true

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.HealthCheck(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}
	if h.worker != nil {
		checks["sweeper"] = h.worker.GetStats()
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"healthy": healthy, "checks": checks})
}
