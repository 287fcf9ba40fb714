// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/product"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles shopping cart business logic
type Service struct {
	db     *gorm.DB
	redis  *redis.Client
	config *config.Config
}

// NewService creates a new cart service. The redis client may be nil, in which
// case the badge count cache is skipped.
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		redis:  redisClient,
		config: cfg,
	}
}

// AddRequest represents an add-to-cart request
type AddRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size"`
}

// SetQuantityRequest represents a quantity update for an existing line
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the user's current cart, fully aggregated
func (s *Service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	return s.buildCart(ctx, userID)
}

// AddItem adds a product to the cart. If the product is already present, the
// quantities are combined with a single atomic UPDATE so concurrent adds from
// two tabs never lose an increment.
func (s *Service) AddItem(ctx context.Context, userID uint, req *AddRequest) (*Cart, error) {
	var prod product.Product
	if err := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve product", err)
	}

	if !prod.IsInStock() {
		return nil, apperrors.ValidationFailed("product is out of stock")
	}

	item := CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
	}

	// Upsert on the (user, product) unique index; conflicts increment in place
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", req.Quantity),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to add item to cart", err)
	}

	s.invalidateBadge(ctx, userID)
	return s.buildCart(ctx, userID)
}

// SetQuantity replaces the quantity of an existing cart line. A quantity of
// zero or less removes the line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	result := s.db.Model(&CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		return nil, apperrors.RemoteRejected("failed to update cart item", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("cart item not found")
	}

	s.invalidateBadge(ctx, userID)
	return s.buildCart(ctx, userID)
}

// RemoveItem deletes a cart line. Removing a line that is already gone is not
// an error; the caller still gets the current cart back.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) (*Cart, error) {
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&CartItem{}).Error
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to remove cart item", err)
	}

	s.invalidateBadge(ctx, userID)
	return s.buildCart(ctx, userID)
}

// Clear removes every line from the user's cart. Unlike the other mutations it
// does not rebuild the cart; the caller already knows it is empty.
func (s *Service) Clear(ctx context.Context, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return apperrors.RemoteRejected("failed to clear cart", err)
	}

	s.invalidateBadge(ctx, userID)
	return nil
}

// LineCount returns the total number of units across all lines, used for the
// cart badge. Served from redis when available.
func (s *Service) LineCount(ctx context.Context, userID uint) (int, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, s.badgeKey(userID)).Int(); err == nil {
			return cached, nil
		}
	}

	var count int64
	err := s.db.Model(&CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, apperrors.RemoteRejected("failed to count cart items", err)
	}

	if s.redis != nil {
		s.redis.Set(ctx, s.badgeKey(userID), count, 5*time.Minute)
	}

	return int(count), nil
}

// buildCart loads every cart line with its product and aggregates totals.
// Lines are priced at the product's effective price at read time, so a price
// change between visits is reflected on the next read.
func (s *Service) buildCart(ctx context.Context, userID uint) (*Cart, error) {
	var items []CartItem
	err := s.db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve cart", err)
	}

	cart := &Cart{
		UserID: userID,
		Lines:  make([]CartLine, 0, len(items)),
	}

	for _, item := range items {
		unitPrice := item.Product.EffectivePrice()
		line := CartLine{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Name:          item.Product.Name,
			Slug:          item.Product.Slug,
			ImageURL:      item.Product.ImageURL,
			Size:          item.Size,
			Quantity:      item.Quantity,
			UnitPrice:     unitPrice,
			ListPrice:     item.Product.Price,
			LineTotal:     unitPrice * int64(item.Quantity),
			InStock:       item.Product.IsInStock(),
			StockQuantity: item.Product.StockQuantity,
		}
		cart.Lines = append(cart.Lines, line)
		cart.Subtotal += line.LineTotal
		cart.LineCount += item.Quantity
	}

	return cart, nil
}

func (s *Service) badgeKey(userID uint) string {
	return fmt.Sprintf("cart:badge:%d", userID)
}

func (s *Service) invalidateBadge(ctx context.Context, userID uint) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, s.badgeKey(userID))
}
