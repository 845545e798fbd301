package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/scheduler"
)

type schedulerKey struct{}

// SchedulerMiddleware injects the background scheduler so the status
// endpoint can report on registered jobs.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), schedulerKey{}, sched)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetScheduler returns the scheduler from the request context, or nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	if sched, ok := c.Request.Context().Value(schedulerKey{}).(*scheduler.Scheduler); ok {
		return sched
	}

	return nil
}
