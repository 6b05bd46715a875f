package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/internal/service"
)

// 5 MiB is plenty for a recipe photo after client-side resizing.
const maxImageBytes = 5 << 20

// ImageHandler accepts recipe image uploads. The service is nil when object
// storage is not configured.
type ImageHandler struct {
	images *service.ImageService
}

// NewImageHandler creates a new ImageHandler instance
func NewImageHandler(images *service.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// UploadImage handles POST /recipes/image (multipart field "image") and
// returns the stored image URL for use as a recipe's image_url.
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
		return
	}

	url, err := h.images.UploadRecipeImage(c.Request.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image_url": url})
}
