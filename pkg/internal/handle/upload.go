package handle

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/internal/service"
	"github.com/dkozyrev/softvault/pkg/internal/types"
	"github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/middleware"
	"github.com/dkozyrev/softvault/pkg/rule"
)

// Multipart field names the frontend uses for the file batch, in lookup
// order.
var uploadFieldNames = []string{"files", "files[]", "file"}

// Upload accepts a multipart batch of binaries. Files succeed or fail
// independently; the answer pairs numbered errors with stored versions.
func Upload(c *gin.Context) {
	l := log.Logger()

	form, err := c.MultipartForm()
	if err != nil {
		l.Warn().Err(err).Msg("invalid multipart form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})

		return
	}

	headers := uploadFileHeaders(form)
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	files := make([]service.UploadedFile, 0, len(headers))

	for _, fh := range headers {
		data, err := readMultipartFile(fh)
		if err != nil {
			l.Warn().Err(err).Str("file", fh.Filename).Msg("failed to read upload")
			// An unreadable part still occupies its slot so numbering
			// stays aligned with the form.
			data = nil
		}

		files = append(files, service.UploadedFile{Name: fh.Filename, Data: data})
	}

	svc := service.NewIngestService(c.Request.Context())
	resp := svc.StoreBatch(c.Request.Context(), middleware.GetUser(c), files)

	c.JSON(http.StatusOK, resp)
}

func uploadFileHeaders(form *multipart.Form) []*multipart.FileHeader {
	for _, name := range uploadFieldNames {
		if fhs := form.File[name]; len(fhs) > 0 {
			return fhs
		}
	}

	// Unknown field name: take every file in the form, field by field.
	var all []*multipart.FileHeader
	for _, fhs := range form.File {
		all = append(all, fhs...)
	}

	return all
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// Fill applies manual metadata to uploaded versions.
func Fill(c *gin.Context) {
	l := log.Logger()

	var req types.FillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid fill request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no items provided"})
		return
	}

	for _, item := range req.Items {
		if err := rule.ValidateStruct(item); err != nil {
			l.Warn().Err(err).Int64("id", item.ID).Msg("malformed fill item")
			c.JSON(http.StatusBadRequest, gin.H{"error": "item id must be a positive integer"})

			return
		}
	}

	svc := service.NewFillService(c.Request.Context())
	resp := svc.Fill(c.Request.Context(), middleware.GetUser(c), &req)

	c.JSON(http.StatusOK, resp)
}
