package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/internal/service"
	"github.com/dkozyrev/softvault/pkg/internal/types"
	"github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/middleware"
)

// ListCategories lists every category.
func ListCategories(c *gin.Context) {
	svc := service.NewCategoryService(c.Request.Context())

	resp, err := svc.List(c.Request.Context())
	if err != nil {
		log.Logger().Error().Err(err).Msg("category listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateCategory adds a category.
func CreateCategory(c *gin.Context) {
	var req types.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewCategoryService(c.Request.Context())

	info, err := svc.Create(c.Request.Context(), req.Title)
	if err != nil {
		log.Logger().Error().Err(err).Msg("category create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})

		return
	}

	c.JSON(http.StatusOK, info)
}

// LinkCategories replaces a product's category set.
func LinkCategories(c *gin.Context) {
	var req types.CategoryLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewCategoryService(c.Request.Context())

	if err := svc.Link(c.Request.Context(), middleware.GetUser(c), &req); err != nil {
		log.Logger().Error().Err(err).Int64("product_id", req.ProductID).Msg("category link failed")
		c.JSON(http.StatusOK, types.Failed())

		return
	}

	c.JSON(http.StatusOK, types.Ok())
}

// Stats answers the admin dashboard counters.
func Stats(c *gin.Context) {
	svc := service.NewStatsService(c.Request.Context())

	resp, err := svc.Collect(c.Request.Context())
	if err != nil {
		log.Logger().Error().Err(err).Msg("stats collection failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})

		return
	}

	c.JSON(http.StatusOK, resp)
}
