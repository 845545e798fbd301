package handle

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/internal/directory"
	"github.com/dkozyrev/softvault/pkg/internal/service"
	"github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/middleware"
)

// ListVersions answers the catalog browse page. Moderators may request
// disabled and unfilled views; everyone else sees active versions only.
func ListVersions(c *gin.Context) {
	opts := service.ListOptions{
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", 0),
		ProductID: int64(intQuery(c, "productId", 0)),
	}

	if middleware.GetRole(c) >= directory.RoleModerator {
		opts.IncludeDisabled = c.Query("disabled") == "1"
		opts.OnlyUnfilled = c.Query("unfilled") == "1"
	}

	svc := service.NewCatalogService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), opts)
	if err != nil {
		log.Logger().Error().Err(err).Msg("version listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ProductView answers the product page.
func ProductView(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	includeDisabled := middleware.GetRole(c) >= directory.RoleModerator && c.Query("disabled") == "1"

	svc := service.NewCatalogService(c.Request.Context())

	resp, err := svc.ProductView(c.Request.Context(), id, includeDisabled)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Search matches products by title substring.
func Search(c *gin.Context) {
	svc := service.NewCatalogService(c.Request.Context())

	resp, err := svc.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		log.Logger().Error().Err(err).Msg("search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// Autocomplete suggests product titles for the search box.
func Autocomplete(c *gin.Context) {
	svc := service.NewCatalogService(c.Request.Context())

	resp, err := svc.Autocomplete(c.Request.Context(), c.Query("query"), intQuery(c, "limit", 0))
	if err != nil {
		log.Logger().Error().Err(err).Msg("autocomplete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "autocomplete failed"})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// Download streams a version's binary with its original file name.
func Download(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := service.NewCatalogService(c.Request.Context())

	rc, version, err := svc.Download(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "version not found"})
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(version.StoredName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, version.FileSize, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", version.StoredName),
	})
}
