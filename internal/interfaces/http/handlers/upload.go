// internal/interfaces/http/handlers/upload.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/upload"
	"github.com/threadline/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// UploadHandler handles file upload endpoints
type UploadHandler struct {
	uploadService *upload.Service
	config        *config.Config
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(db *gorm.DB, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		uploadService: upload.NewService(db, cfg),
		config:        cfg,
	}
}

// AdminUploadFile handles POST /admin/uploads/:bucket
func (h *UploadHandler) AdminUploadFile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	bucket := c.Param("bucket")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	record, err := h.uploadService.SaveFile(userID, bucket, fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully",
		"data":    record,
	})
}

// AdminGetUploads handles GET /admin/uploads
func (h *UploadHandler) AdminGetUploads(c *gin.Context) {
	files, err := h.uploadService.List(c.Query("bucket"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Uploads retrieved successfully",
		"data":    files,
	})
}

// AdminDeleteUpload handles DELETE /admin/uploads/:id
func (h *UploadHandler) AdminDeleteUpload(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload ID"})
		return
	}

	if err := h.uploadService.Delete(uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Upload deleted successfully",
	})
}
