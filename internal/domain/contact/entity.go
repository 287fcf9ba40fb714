// internal/domain/contact/entity.go
package contact

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a message sent through the storefront contact form
type Message struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"not null;size:255" json:"name"`
	Email      string         `gorm:"not null;size:255" json:"email"`
	Subject    string         `gorm:"size:255" json:"subject"`
	Body       string         `gorm:"not null;type:text" json:"body"`
	IsResolved bool           `gorm:"default:false" json:"is_resolved"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Message) TableName() string {
	return "contact_messages"
}
