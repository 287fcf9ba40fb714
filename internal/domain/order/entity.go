// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"
)

// Status represents the order lifecycle state
type Status string

// Order statuses
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// statusTransitions lists the allowed moves between statuses
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether the status may move to the target
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsValid reports whether the value is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod represents how the customer pays
type PaymentMethod string

// Payment methods
const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPix        PaymentMethod = "pix"
)

// IsValid reports whether the value is a known payment method
func (p PaymentMethod) IsValid() bool {
	return p == PaymentCreditCard || p == PaymentPix
}

// Order is the header row of a placed order. Total is fixed at submission
// from the cart subtotal plus the shipping fee and is never recomputed from
// the lines afterwards.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Status      Status `gorm:"not null;default:pending;size:20" json:"status"`

	// Amounts in cents
	Subtotal    int64 `gorm:"not null" json:"subtotal"`
	ShippingFee int64 `gorm:"not null" json:"shipping_fee"`
	Total       int64 `gorm:"not null" json:"total"`

	ShippingMethodID   uint   `gorm:"not null" json:"shipping_method_id"`
	ShippingMethodName string `gorm:"size:255" json:"shipping_method_name"`

	PaymentMethod PaymentMethod `gorm:"not null;size:20" json:"payment_method"`

	// Delivery address, embedded so the order survives later address edits
	RecipientName string `gorm:"not null;size:255" json:"recipient_name"`
	Street        string `gorm:"not null;size:255" json:"street"`
	Number        string `gorm:"size:50" json:"number"`
	Complement    string `gorm:"size:255" json:"complement"`
	City          string `gorm:"not null;size:255" json:"city"`
	State         string `gorm:"not null;size:100" json:"state"`
	PostalCode    string `gorm:"not null;size:20" json:"postal_code"`
	Country       string `gorm:"not null;size:100;default:BR" json:"country"`

	Notes     string         `gorm:"size:1000" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is one product line of an order. Name and unit price are
// snapshots taken at submission; later catalog edits do not reach back into
// placed orders.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null" json:"product_id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Size      string    `gorm:"size:20" json:"size"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	LineTotal int64     `gorm:"not null" json:"line_total"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }
