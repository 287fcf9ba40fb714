// internal/domain/shipping/entity.go
package shipping

import (
	"time"

	"gorm.io/gorm"
)

// Method represents a shipping option offered at checkout. BasePrice is in
// cents; PricePerKg covers weight-based surcharges for heavier parcels.
type Method struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"not null;size:255" json:"name"`
	Description      string         `gorm:"size:500" json:"description"`
	BasePrice        int64          `gorm:"not null" json:"base_price"`
	PricePerKg       int64          `gorm:"default:0" json:"price_per_kg"`
	EstimatedDaysMin int            `gorm:"default:1" json:"estimated_days_min"`
	EstimatedDaysMax int            `gorm:"default:7" json:"estimated_days_max"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Method) TableName() string {
	return "shipping_methods"
}

// PriceFor returns the shipping cost for a parcel of the given weight
func (m *Method) PriceFor(weightGrams int) int64 {
	if m.PricePerKg == 0 || weightGrams <= 0 {
		return m.BasePrice
	}
	kg := (int64(weightGrams) + 999) / 1000
	return m.BasePrice + kg*m.PricePerKg
}
