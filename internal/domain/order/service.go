// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/cart"
	"github.com/threadline/storefront-backend/internal/domain/shipping"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db          *gorm.DB
	config      *config.Config
	cartService *cart.Service
	shipService *shipping.Service
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service, shipService *shipping.Service) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: cartService,
		shipService: shipService,
	}
}

// SubmitRequest represents a checkout submission
type SubmitRequest struct {
	ShippingMethodID uint   `json:"shipping_method_id" binding:"required"`
	PaymentMethod    string `json:"payment_method" binding:"required"`

	RecipientName string `json:"recipient_name" binding:"required"`
	Street        string `json:"street" binding:"required"`
	Number        string `json:"number"`
	Complement    string `json:"complement"`
	City          string `json:"city" binding:"required"`
	State         string `json:"state" binding:"required"`
	PostalCode    string `json:"postal_code" binding:"required"`
	Country       string `json:"country"`

	Notes string `json:"notes"`
}

// ListRequest represents order list query parameters
type ListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Status string `form:"status"`
}

// ListResponse represents a paginated order listing
type ListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

// Submit places an order from the user's current cart. The header is written
// first, then the lines in one batch, then the cart is cleared. The steps are
// separate writes with no surrounding transaction: a failure after the header
// write surfaces as a partial-write error and the header row stays behind.
// The total is fixed here as subtotal plus the shipping base price and is
// never recomputed afterwards.
func (s *Service) Submit(ctx context.Context, userID uint, req *SubmitRequest) (*Order, error) {
	payment := PaymentMethod(req.PaymentMethod)
	if !payment.IsValid() {
		return nil, apperrors.ValidationFailed("payment method must be credit_card or pix")
	}

	userCart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if userCart.IsEmpty() {
		return nil, apperrors.ValidationFailed("cart is empty")
	}

	method, err := s.shipService.GetActive(req.ShippingMethodID)
	if err != nil {
		return nil, err
	}

	country := req.Country
	if country == "" {
		country = "BR"
	}

	ord := Order{
		OrderNumber:        s.generateOrderNumber(),
		UserID:             userID,
		Status:             StatusPending,
		Subtotal:           userCart.Subtotal,
		ShippingFee:        method.BasePrice,
		Total:              userCart.Subtotal + method.BasePrice,
		ShippingMethodID:   method.ID,
		ShippingMethodName: method.Name,
		PaymentMethod:      payment,
		RecipientName:      req.RecipientName,
		Street:             req.Street,
		Number:             req.Number,
		Complement:         req.Complement,
		City:               req.City,
		State:              req.State,
		PostalCode:         req.PostalCode,
		Country:            country,
		Notes:              req.Notes,
	}

	if err := s.db.Create(&ord).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to create order", err)
	}

	items := make([]OrderItem, 0, len(userCart.Lines))
	for _, line := range userCart.Lines {
		items = append(items, OrderItem{
			OrderID:   ord.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Size:      line.Size,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}

	if err := s.db.Create(&items).Error; err != nil {
		// The header already landed; it is not rolled back here
		return nil, apperrors.PartialWriteWindow(
			fmt.Sprintf("order %s created but item write failed", ord.OrderNumber), err)
	}
	ord.Items = items

	if err := s.cartService.Clear(ctx, userID); err != nil {
		// The order itself is complete; the caller gets it alongside the error
		return &ord, apperrors.PartialWriteWindow(
			fmt.Sprintf("order %s placed but cart was not cleared", ord.OrderNumber), err)
	}

	return &ord, nil
}

// GetUserOrders retrieves the user's order history, newest first
func (s *Service) GetUserOrders(userID uint, req *ListRequest) (*ListResponse, error) {
	query := s.db.Model(&Order{}).Where("user_id = ?", userID)
	return s.list(query, req)
}

// GetOrder retrieves one of the user's orders with its lines. Orders placed
// by other accounts are reported as not found.
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var ord Order
	result := s.db.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&ord)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve order", result.Error)
	}
	return &ord, nil
}

// AdminList retrieves orders across all accounts (admin)
func (s *Service) AdminList(req *ListRequest) (*ListResponse, error) {
	return s.list(s.db.Model(&Order{}), req)
}

// AdminGet retrieves any order with its lines (admin)
func (s *Service) AdminGet(orderID uint) (*Order, error) {
	var ord Order
	result := s.db.Preload("Items").First(&ord, orderID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve order", result.Error)
	}
	return &ord, nil
}

// UpdateStatus moves an order through its lifecycle (admin). Only the
// transitions in the status table are allowed.
func (s *Service) UpdateStatus(orderID uint, target Status) (*Order, error) {
	if !target.IsValid() {
		return nil, apperrors.ValidationFailed(fmt.Sprintf("unknown order status %q", target))
	}

	ord, err := s.AdminGet(orderID)
	if err != nil {
		return nil, err
	}

	if !ord.Status.CanTransitionTo(target) {
		return nil, apperrors.ValidationFailed(
			fmt.Sprintf("order cannot move from %s to %s", ord.Status, target))
	}

	if err := s.db.Model(ord).Update("status", target).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to update order status", err)
	}

	return s.AdminGet(orderID)
}

func (s *Service) list(query *gorm.DB, req *ListRequest) (*ListResponse, error) {
	var orders []Order
	var total int64

	if req.Status != "" {
		status := Status(req.Status)
		if !status.IsValid() {
			return nil, apperrors.ValidationFailed(fmt.Sprintf("unknown order status %q", req.Status))
		}
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to count orders", err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Items").Order("created_at desc").Offset(offset).Limit(req.Limit).Find(&orders).Error
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve orders", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Orders:     orders,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// generateOrderNumber builds a human-readable unique order reference
func (s *Service) generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("TL-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
