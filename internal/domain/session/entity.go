// internal/domain/session/entity.go
package session

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Roles a profile can carry
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Identity holds the credentials record for an account. It is written first
// during sign-up; the profile row follows as a separate write.
type Identity struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string         `gorm:"not null;size:255" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Profile holds the account's user-facing data, keyed by the identity ID
type Profile struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName    string      `gorm:"not null;size:255" json:"full_name"`
	Email       string      `gorm:"not null;size:255" json:"email"`
	Phone       string      `gorm:"size:50" json:"phone"`
	Address     string      `gorm:"size:255" json:"address"`
	City        string      `gorm:"size:100" json:"city"`
	State       string      `gorm:"size:50" json:"state"`
	Zip         string      `gorm:"size:20" json:"zip"`
	Role        string      `gorm:"not null;default:customer;size:20" json:"role"`
	Preferences Preferences `gorm:"type:text" json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Identity) TableName() string { return "identities" }
func (Profile) TableName() string  { return "profiles" }

// IsAdmin reports whether the profile carries the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Preferences stores per-account settings as JSON in a text column
type Preferences struct {
	Notifications bool   `json:"notifications"`
	Newsletter    bool   `json:"newsletter"`
	Theme         string `json:"theme"`
}

// DefaultPreferences returns the settings a fresh profile starts with
func DefaultPreferences() Preferences {
	return Preferences{
		Notifications: true,
		Newsletter:    false,
		Theme:         "light",
	}
}

// Value implements driver.Valuer
func (p Preferences) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (p *Preferences) Scan(value interface{}) error {
	if value == nil {
		*p = DefaultPreferences()
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into Preferences", value)
	}
}

// RedirectIntent tells the caller where to send the user after their profile
// loads. The service only reports the destination; it never performs the
// navigation itself.
type RedirectIntent string

// Redirect destinations
const (
	RedirectStorefrontHome RedirectIntent = "/"
	RedirectAdminHome      RedirectIntent = "/admin"
)

// RedirectFor maps a profile role to its landing destination
func RedirectFor(role string) RedirectIntent {
	if role == RoleAdmin {
		return RedirectAdminHome
	}
	return RedirectStorefrontHome
}
