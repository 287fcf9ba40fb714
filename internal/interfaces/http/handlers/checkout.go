// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/cart"
	"github.com/threadline/storefront-backend/internal/domain/order"
	"github.com/threadline/storefront-backend/internal/domain/shipping"
	"github.com/threadline/storefront-backend/internal/interfaces/http/middleware"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CheckoutHandler {
	cartService := cart.NewService(db, redisClient, cfg)
	shipService := shipping.NewService(db, cfg)

	return &CheckoutHandler{
		orderService: order.NewService(db, cfg, cartService, shipService),
		config:       cfg,
	}
}

// Submit handles POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req order.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ord, err := h.orderService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		// An order may exist even when the submission did not finish cleanly
		if ord != nil && apperrors.IsKind(err, apperrors.KindPartialWriteWindow) {
			c.JSON(http.StatusCreated, gin.H{
				"message": "Order placed, but a follow-up step did not complete",
				"warning": err.Error(),
				"data":    ord,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    ord,
	})
}
