package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/pkg/identity"
)

// Pinger checks the database; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler liveness and mode report.
type HealthHandler struct {
	mode   identity.Mode
	pinger Pinger
}

// NewHealthHandler creates a HealthHandler. pinger may be nil.
func NewHealthHandler(mode identity.Mode, pinger Pinger) *HealthHandler {
	return &HealthHandler{mode: mode, pinger: pinger}
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"mode":   string(h.mode),
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			body["status"] = "degraded"
			body["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "ok"
	}

	c.JSON(http.StatusOK, body)
}
