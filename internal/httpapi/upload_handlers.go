package httpapi

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/imagestore"
)

// handleUpload accepts a multipart file or a base64 data URL and returns the
// stored image URL, used as the image reference on attendance and logbook
// submissions.
func (s *Server) handleUpload(c *gin.Context) {
	if s.Images == nil {
		c.JSON(http.StatusServiceUnavailable, envelope{Success: false, Message: "image storage not configured"})
		return
	}

	var result *imagestore.UploadResult
	var err error

	switch {
	case strings.Contains(c.ContentType(), "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			respondBadRequest(c, "file field required")
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			respondError(c, ferr)
			return
		}
		result, err = s.Images.UploadBytes(data, header.Filename)

	default:
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			respondBadRequest(c, `provide {"data": "<base64 data URL>"}`)
			return
		}
		result, err = s.Images.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("image upload failed: %v", err)
		c.JSON(http.StatusBadGateway, envelope{Success: false, Message: "image upload failed"})
		return
	}

	respondOK(c, http.StatusOK, "image uploaded", gin.H{
		"url":       result.SecureURL,
		"public_id": result.PublicID,
		"width":     result.Width,
		"height":    result.Height,
		"bytes":     result.Bytes,
	})
}
