// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/threadline/storefront-backend/internal/domain/product"
)

// CartItem represents one product line in a user's shopping cart. One row per
// (user, product) pair; quantity is always positive, a zero quantity means the
// row is deleted instead.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Size      string    `gorm:"size:20" json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Product product.Product `gorm:"foreignKey:ProductID" json:"product"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "shopping_cart"
}

// CartLine is a cart item joined with its current product data, priced at the
// product's effective price at read time.
type CartLine struct {
	ID            uint   `json:"id"`
	ProductID     uint   `json:"product_id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	ImageURL      string `json:"image_url"`
	Size          string `json:"size"`
	Quantity      int    `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"`
	ListPrice     int64  `json:"list_price"`
	LineTotal     int64  `json:"line_total"`
	InStock       bool   `json:"in_stock"`
	StockQuantity int    `json:"stock_quantity"`
}

// Cart is the aggregated view of a user's cart returned after every read or
// mutation.
type Cart struct {
	UserID    uint       `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	Subtotal  int64      `json:"subtotal"`
	LineCount int        `json:"line_count"`
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
