package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/context"
	"github.com/dkozyrev/softvault/pkg/internal/storage"
)

// StorageMiddleware makes the storage manager reachable from the request
// context for services created per request.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
