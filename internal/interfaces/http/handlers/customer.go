// internal/interfaces/http/handlers/customer.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/session"
	"gorm.io/gorm"
)

// CustomerHandler handles admin customer management endpoints
type CustomerHandler struct {
	sessionService *session.Service
	config         *config.Config
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CustomerHandler {
	return &CustomerHandler{
		sessionService: session.NewService(db, redisClient, cfg),
		config:         cfg,
	}
}

// AdminGetCustomers handles GET /admin/customers
func (h *CustomerHandler) AdminGetCustomers(c *gin.Context) {
	var req session.CustomerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.sessionService.ListCustomers(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customers retrieved successfully",
		"data":    resp,
	})
}

// AdminGetCustomer handles GET /admin/customers/:id
func (h *CustomerHandler) AdminGetCustomer(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	profile, err := h.sessionService.GetCustomer(uint(userID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer retrieved successfully",
		"data":    profile,
	})
}

// AdminUpdateCustomerRole handles PUT /admin/customers/:id/role
func (h *CustomerHandler) AdminUpdateCustomerRole(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	profile, err := h.sessionService.UpdateCustomerRole(uint(userID), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer role updated successfully",
		"data":    profile,
	})
}
