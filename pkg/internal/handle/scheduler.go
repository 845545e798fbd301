package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/middleware"
)

// SchedulerStatus lists the background jobs with their run state.
func SchedulerStatus(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}
