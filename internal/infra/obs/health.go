package obs

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// NamedCheck probes one external dependency (Mongo, Redis) for readiness.
type NamedCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandlers serves the liveness and readiness probes. Livez only
// confirms the process answers requests; Readyz runs every registered
// dependency check and names the first one that fails.
type HealthHandlers struct {
	Checks []NamedCheck
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	for _, probe := range h.Checks {
		if probe.Check == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		err := probe.Check(ctx)
		cancel()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not ready",
				"dependency": probe.Name,
				"error":      err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
