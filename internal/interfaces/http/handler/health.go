package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/friendaudit/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger is a dependency whose reachability the health check reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
}

// HealthHandler reports process and dependency health
type HealthHandler struct {
	BaseHandler
	checks    map[string]Pinger
	timeout   time.Duration
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. Nil pingers are skipped.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{
		checks:    active,
		timeout:   2 * time.Second,
		startTime: time.Now(),
	}
}

// Health answers 200 when every dependency responds, else 503
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Checks:    make(map[string]string, len(h.checks)),
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = "unhealthy"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "healthy"
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}
