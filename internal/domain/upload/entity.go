// internal/domain/upload/entity.go
package upload

import (
	"time"

	"gorm.io/gorm"
)

// UploadedFile records a file stored through the upload endpoint. Bucket is a
// logical folder (product images, category banners) under the storage root.
type UploadedFile struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Bucket       string         `gorm:"not null;size:100;index" json:"bucket"`
	FileName     string         `gorm:"not null;size:255" json:"file_name"`
	OriginalName string         `gorm:"size:255" json:"original_name"`
	MimeType     string         `gorm:"size:100" json:"mime_type"`
	SizeBytes    int64          `json:"size_bytes"`
	URL          string         `gorm:"size:500" json:"url"`
	UploadedBy   uint           `gorm:"index" json:"uploaded_by"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (UploadedFile) TableName() string {
	return "uploaded_files"
}
