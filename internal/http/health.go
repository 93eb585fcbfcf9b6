package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	healthy   = "healthy"
	unhealthy = "unhealthy"

	pingTimeout = 2 * time.Second
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports whether the stores the API depends on answer.
// A dependency that is not wired is reported but does not fail the check.
type HealthController struct {
	db      Pinger
	queue   Pinger
	version string
}

func NewHealthController(db Pinger, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// WithQueue adds the background task queue to the checked dependencies.
func (h *HealthController) WithQueue(queue Pinger) *HealthController {
	h.queue = queue
	return h
}

// Status handles GET /health
func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:  healthy,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks: map[string]string{
			"database": pingStatus(ctx, h.db),
		},
	}
	if h.queue != nil {
		resp.Checks["tasks"] = pingStatus(ctx, h.queue)
	}

	code := http.StatusOK
	for _, result := range resp.Checks {
		if result != "ok" && result != "not configured" {
			resp.Status = unhealthy
			code = http.StatusServiceUnavailable
		}
	}
	c.IndentedJSON(code, resp)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// Ping handles GET /ping
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "pong"})
}
