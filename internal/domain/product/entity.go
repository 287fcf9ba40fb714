// internal/domain/product/entity.go
package product

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog item
type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;size:255" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	// Prices in cents. DiscountPrice, when set, is the effective sale price.
	Price         int64  `gorm:"not null" json:"price"`
	DiscountPrice *int64 `json:"discount_price,omitempty"`

	ImageURL      string    `gorm:"size:500" json:"image_url"`
	CategoryID    uint      `gorm:"not null;index" json:"category_id"`
	Sizes         SizeList  `gorm:"type:text" json:"sizes"`
	WeightGrams   int       `gorm:"default:0" json:"weight_grams"`
	StockQuantity int       `gorm:"default:0" json:"stock_quantity"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
}

// Category represents a product category
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	ImageURL    string         `gorm:"size:500" json:"image_url"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// SizeList stores the available sizes of a product as a JSON array in a text
// column, so the schema stays portable across Postgres and SQLite.
type SizeList []string

// Value implements driver.Valuer
func (s SizeList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (s *SizeList) Scan(value interface{}) error {
	if value == nil {
		*s = SizeList{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into SizeList", value)
	}
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// EffectivePrice returns the discount price when one is set, the list price
// otherwise. Cart subtotals and order line snapshots both use this rule.
func (p *Product) EffectivePrice() int64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// IsOnSale reports whether a discount price is set below the list price
func (p *Product) IsOnSale() bool {
	return p.DiscountPrice != nil && *p.DiscountPrice < p.Price
}

// IsInStock reports whether the product can currently be added to a cart
func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}
