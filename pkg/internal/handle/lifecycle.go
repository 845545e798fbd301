package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dkozyrev/softvault/pkg/internal/service"
	"github.com/dkozyrev/softvault/pkg/internal/types"
	"github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/middleware"
)

// Lifecycle endpoints answer the legacy contract: {"error": false} on
// success, {"error": true} when the found version cannot transition.
// Unknown version ids answer 404 instead.

// Disable soft-deletes a version.
func Disable(c *gin.Context) {
	lifecycleAction(c, "disable", func(svc *service.LifecycleService, id int64, actor string) error {
		return svc.Disable(c.Request.Context(), id, actor)
	})
}

// Restore brings a disabled version back.
func Restore(c *gin.Context) {
	lifecycleAction(c, "restore", func(svc *service.LifecycleService, id int64, actor string) error {
		return svc.Restore(c.Request.Context(), id, actor)
	})
}

// Purge permanently deletes a disabled version. Admin only, enforced on
// the route.
func Purge(c *gin.Context) {
	lifecycleAction(c, "purge", func(svc *service.LifecycleService, id int64, actor string) error {
		return svc.Purge(c.Request.Context(), id, actor)
	})
}

func lifecycleAction(c *gin.Context, action string, fn func(*service.LifecycleService, int64, string) error) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := service.NewLifecycleService(c.Request.Context())

	if err := fn(svc, id, middleware.GetUser(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "version not found"})
			return
		}

		log.Logger().Error().Err(err).Str("action", action).Int64("version_id", id).Msg("lifecycle action failed")
		c.JSON(http.StatusOK, types.Failed())

		return
	}

	c.JSON(http.StatusOK, types.Ok())
}
