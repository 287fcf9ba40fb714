// internal/domain/contact/service.go
package contact

import (
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles contact message business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new contact service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// SubmitRequest represents a contact form submission
type SubmitRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Body    string `json:"body" binding:"required,max=5000"`
}

// ListRequest represents admin message list query parameters
type ListRequest struct {
	Page       int  `form:"page,default=1"`
	Limit      int  `form:"limit,default=20"`
	Unresolved bool `form:"unresolved"`
}

// ListResponse represents a paginated message listing
type ListResponse struct {
	Messages   []Message `json:"messages"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// Submit stores a contact form message. Anyone may submit; no account needed.
func (s *Service) Submit(req *SubmitRequest) (*Message, error) {
	msg := Message{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	}

	if err := s.db.Create(&msg).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to store message", err)
	}
	return &msg, nil
}

// List retrieves messages for the admin inbox, newest first
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	var messages []Message
	var total int64

	query := s.db.Model(&Message{})
	if req.Unresolved {
		query = query.Where("is_resolved = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to count messages", err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	offset := (req.Page - 1) * req.Limit
	err := query.Order("created_at desc").Offset(offset).Limit(req.Limit).Find(&messages).Error
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve messages", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Messages:   messages,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// Resolve marks a message as handled (admin)
func (s *Service) Resolve(id uint) (*Message, error) {
	result := s.db.Model(&Message{}).Where("id = ?", id).Update("is_resolved", true)
	if result.Error != nil {
		return nil, apperrors.RemoteRejected("failed to resolve message", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("message not found")
	}

	var msg Message
	if err := s.db.First(&msg, id).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to reload message", err)
	}
	return &msg, nil
}

// Delete removes a message (admin)
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Message{}, id)
	if result.Error != nil {
		return apperrors.RemoteRejected("failed to delete message", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("message not found")
	}
	return nil
}
