// internal/interfaces/http/handlers/contact.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/contact"
	"gorm.io/gorm"
)

// ContactHandler handles contact form endpoints
type ContactHandler struct {
	contactService *contact.Service
	config         *config.Config
}

// NewContactHandler creates a new contact handler
func NewContactHandler(db *gorm.DB, cfg *config.Config) *ContactHandler {
	return &ContactHandler{
		contactService: contact.NewService(db, cfg),
		config:         cfg,
	}
}

// Submit handles POST /contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contact.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	msg, err := h.contactService.Submit(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

// AdminGetMessages handles GET /admin/contact/messages
func (h *ContactHandler) AdminGetMessages(c *gin.Context) {
	var req contact.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.contactService.List(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Messages retrieved successfully",
		"data":    resp,
	})
}

// AdminResolveMessage handles PUT /admin/contact/messages/:id/resolve
func (h *ContactHandler) AdminResolveMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	msg, err := h.contactService.Resolve(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Message resolved successfully",
		"data":    msg,
	})
}

// AdminDeleteMessage handles DELETE /admin/contact/messages/:id
func (h *ContactHandler) AdminDeleteMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	if err := h.contactService.Delete(uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Message deleted successfully",
	})
}
