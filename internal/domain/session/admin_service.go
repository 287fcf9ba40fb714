// internal/domain/session/admin_service.go
package session

import (
	"strings"

	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
)

// CustomerListRequest represents admin customer list query parameters
type CustomerListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Search string `form:"search"`
	Role   string `form:"role"`
}

// CustomerListResponse represents a paginated customer listing
type CustomerListResponse struct {
	Customers  []Profile `json:"customers"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// ListCustomers retrieves profiles for the admin customer screen
func (s *Service) ListCustomers(req *CustomerListRequest) (*CustomerListResponse, error) {
	var profiles []Profile
	var total int64

	query := s.db.Model(&Profile{})

	if req.Search != "" {
		pattern := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to count customers", err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	offset := (req.Page - 1) * req.Limit
	err := query.Order("created_at desc").Offset(offset).Limit(req.Limit).Find(&profiles).Error
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve customers", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &CustomerListResponse{
		Customers:  profiles,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetCustomer retrieves a single profile by user ID (admin)
func (s *Service) GetCustomer(userID uint) (*Profile, error) {
	return s.loadProfileByUserID(userID)
}

// UpdateCustomerRole changes a profile's role (admin)
func (s *Service) UpdateCustomerRole(userID uint, role string) (*Profile, error) {
	if role != RoleCustomer && role != RoleAdmin {
		return nil, apperrors.ValidationFailed("role must be customer or admin")
	}

	result := s.db.Model(&Profile{}).Where("user_id = ?", userID).Update("role", role)
	if result.Error != nil {
		return nil, apperrors.RemoteRejected("failed to update role", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("profile not found")
	}

	return s.loadProfileByUserID(userID)
}
