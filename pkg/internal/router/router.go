// Package router binds the catalog API paths to their handlers and
// authorization requirements.
package router

import (
	"github.com/gin-gonic/gin"

	appcache "github.com/dkozyrev/softvault/pkg/cache"
	"github.com/dkozyrev/softvault/pkg/internal/directory"
	"github.com/dkozyrev/softvault/pkg/internal/handle"
	"github.com/dkozyrev/softvault/pkg/middleware"
)

// Options carries the pieces the routes need beyond the global middleware
// chain.
type Options struct {
	// Cache, when set, shields the hot read endpoints (listing, search,
	// autocomplete) behind a short-TTL response cache.
	Cache *appcache.Cache
}

// RegisterAPIRoutes wires every /api/v1 route. Write access follows one
// rule: moderators mutate the catalog, admins additionally purge and see
// operational state.
func RegisterAPIRoutes(g *gin.RouterGroup, opts Options) {
	RegisterHealthCheckRoute(g)
	registerCatalogRoutes(g, opts)
	registerCategoryRoutes(g)
	registerAdminRoutes(g)
}

func registerCatalogRoutes(g *gin.RouterGroup, opts Options) {
	readCache := passthrough
	if opts.Cache != nil {
		readCache = middleware.CacheMiddleware(middleware.DefaultCacheConfig(opts.Cache))
	}

	versions := g.Group("/versions")
	{
		versions.GET("", readCache, handle.ListVersions)
		versions.GET("/:id/download", handle.Download)

		moderator := versions.Group("", middleware.RequireMinRole(directory.RoleModerator))
		{
			moderator.POST("/upload", handle.Upload)
			moderator.POST("/fill", handle.Fill)
			moderator.POST("/:id/disable", handle.Disable)
			moderator.POST("/:id/restore", handle.Restore)
		}

		versions.POST("/:id/purge", middleware.RequireMinRole(directory.RoleAdmin), handle.Purge)
	}

	products := g.Group("/products")
	{
		products.GET("/search", readCache, handle.Search)
		products.GET("/autocomplete", readCache, handle.Autocomplete)
		products.GET("/:id", handle.ProductView)
	}
}

func registerCategoryRoutes(g *gin.RouterGroup) {
	categories := g.Group("/categories")
	{
		categories.GET("", handle.ListCategories)

		moderator := categories.Group("", middleware.RequireMinRole(directory.RoleModerator))
		{
			moderator.POST("", handle.CreateCategory)
			moderator.POST("/link", handle.LinkCategories)
		}
	}
}

func registerAdminRoutes(g *gin.RouterGroup) {
	admin := g.Group("", middleware.RequireMinRole(directory.RoleAdmin))
	{
		admin.GET("/stats", handle.Stats)
		admin.GET("/scheduler/jobs", handle.SchedulerStatus)
	}
}

func passthrough(c *gin.Context) { c.Next() }
