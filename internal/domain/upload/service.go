// internal/domain/upload/service.go
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles file upload business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new upload service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// allowedBuckets are the logical folders uploads may target
var allowedBuckets = map[string]bool{
	"products":   true,
	"categories": true,
}

// SaveFile validates and stores an uploaded file under the given bucket and
// returns its record with the public URL.
func (s *Service) SaveFile(userID uint, bucket string, fileHeader *multipart.FileHeader) (*UploadedFile, error) {
	if !allowedBuckets[bucket] {
		return nil, apperrors.ValidationFailed(fmt.Sprintf("unknown upload bucket %q", bucket))
	}

	if fileHeader.Size > s.config.Storage.MaxUploadSize {
		return nil, apperrors.ValidationFailed(
			fmt.Sprintf("file exceeds the %d byte upload limit", s.config.Storage.MaxUploadSize))
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	if !s.extensionAllowed(ext) {
		return nil, apperrors.ValidationFailed(fmt.Sprintf("file type %q is not allowed", ext))
	}

	fileName := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	dir := filepath.Join(s.config.Storage.LocalPath, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.RemoteRejected("failed to prepare upload directory", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.ValidationFailed("uploaded file could not be read")
	}
	defer src.Close()

	dstPath := filepath.Join(dir, fileName)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to store uploaded file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return nil, apperrors.RemoteRejected("failed to store uploaded file", err)
	}

	record := UploadedFile{
		Bucket:       bucket,
		FileName:     fileName,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		SizeBytes:    fileHeader.Size,
		URL:          fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.config.Storage.PublicBaseURL, "/"), bucket, fileName),
		UploadedBy:   userID,
	}

	if err := s.db.Create(&record).Error; err != nil {
		os.Remove(dstPath)
		return nil, apperrors.RemoteRejected("failed to record uploaded file", err)
	}

	return &record, nil
}

// List retrieves upload records for a bucket (admin)
func (s *Service) List(bucket string) ([]UploadedFile, error) {
	var files []UploadedFile
	query := s.db.Order("created_at desc")
	if bucket != "" {
		query = query.Where("bucket = ?", bucket)
	}
	if err := query.Find(&files).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve uploads", err)
	}
	return files, nil
}

// Delete removes an upload record and its file from disk (admin)
func (s *Service) Delete(id uint) error {
	var record UploadedFile
	if err := s.db.First(&record, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("upload not found")
		}
		return apperrors.RemoteRejected("failed to retrieve upload", err)
	}

	if err := s.db.Delete(&record).Error; err != nil {
		return apperrors.RemoteRejected("failed to delete upload", err)
	}

	// Best effort; a missing file on disk is not an error
	os.Remove(filepath.Join(s.config.Storage.LocalPath, record.Bucket, record.FileName))
	return nil
}

func (s *Service) extensionAllowed(ext string) bool {
	for _, allowed := range s.config.Storage.AllowedExtensions {
		if strings.EqualFold(strings.TrimSpace(allowed), ext) {
			return true
		}
	}
	return false
}
