// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/cart"
	"github.com/threadline/storefront-backend/internal/domain/order"
	"github.com/threadline/storefront-backend/internal/domain/shipping"
	"github.com/threadline/storefront-backend/internal/interfaces/http/middleware"
	"github.com/threadline/storefront-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// InvoiceHandler handles invoice download endpoints
type InvoiceHandler struct {
	orderService *order.Service
	pdfService   *pdf.Service
	config       *config.Config
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *InvoiceHandler {
	cartService := cart.NewService(db, redisClient, cfg)
	shipService := shipping.NewService(db, cfg)

	return &InvoiceHandler{
		orderService: order.NewService(db, cfg, cartService, shipService),
		pdfService:   pdf.NewService(cfg),
		config:       cfg,
	}
}

// DownloadInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ord, err := h.orderService.GetOrder(userID, uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.pdfService.GenerateInvoice(ord)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate invoice"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", ord.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
