package scheduler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves the scheduler's liveness, readiness and stats
// endpoints on its own small gin engine.
func (s *Scheduler) HealthHandler() http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())

	// liveness: process is up

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"ok": true,
		})
	})

	// readiness: loop is running and able to fire

	r.GET("/readyz", func(c *gin.Context) {
		s.readyMu.RLock()
		ready := s.ready
		s.readyMu.RUnlock()

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/statsz", func(c *gin.Context) {
		snap := s.metrics.Snapshot()

		c.JSON(http.StatusOK, gin.H{
			"fired":        snap.Fired,
			"done":         snap.Done,
			"skipped":      snap.Skipped,
			"failed":       snap.Failed,
			"avg_duration": snap.AverageDuration.String(),
			"max_duration": snap.MaxDuration.String(),
		})
	})

	return r
}
