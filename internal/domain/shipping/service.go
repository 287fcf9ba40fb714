// internal/domain/shipping/service.go
package shipping

import (
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles shipping method business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new shipping service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// MethodRequest represents shipping method create/update data (admin)
type MethodRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	BasePrice        int64  `json:"base_price" binding:"required,min=0"`
	PricePerKg       int64  `json:"price_per_kg"`
	EstimatedDaysMin int    `json:"estimated_days_min" binding:"min=0"`
	EstimatedDaysMax int    `json:"estimated_days_max" binding:"min=0"`
	IsActive         *bool  `json:"is_active"`
}

// ListActive retrieves the shipping options shown at checkout
func (s *Service) ListActive() ([]Method, error) {
	var methods []Method
	err := s.db.Where("is_active = ?", true).Order("base_price asc").Find(&methods).Error
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve shipping methods", err)
	}
	return methods, nil
}

// AdminList retrieves all shipping methods, including inactive ones
func (s *Service) AdminList() ([]Method, error) {
	var methods []Method
	if err := s.db.Order("base_price asc").Find(&methods).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve shipping methods", err)
	}
	return methods, nil
}

// Get retrieves a single shipping method by ID
func (s *Service) Get(id uint) (*Method, error) {
	var method Method
	result := s.db.First(&method, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("shipping method not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve shipping method", result.Error)
	}
	return &method, nil
}

// GetActive retrieves an active shipping method, as selectable at checkout
func (s *Service) GetActive(id uint) (*Method, error) {
	var method Method
	result := s.db.Where("id = ? AND is_active = ?", id, true).First(&method)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("shipping method not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve shipping method", result.Error)
	}
	return &method, nil
}

// Create creates a new shipping method (admin)
func (s *Service) Create(req *MethodRequest) (*Method, error) {
	if req.EstimatedDaysMax < req.EstimatedDaysMin {
		return nil, apperrors.ValidationFailed("estimated delivery window is inverted")
	}

	method := Method{
		Name:             req.Name,
		Description:      req.Description,
		BasePrice:        req.BasePrice,
		PricePerKg:       req.PricePerKg,
		EstimatedDaysMin: req.EstimatedDaysMin,
		EstimatedDaysMax: req.EstimatedDaysMax,
		IsActive:         true,
	}
	if req.IsActive != nil {
		method.IsActive = *req.IsActive
	}

	if err := s.db.Create(&method).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to create shipping method", err)
	}
	return &method, nil
}

// Update replaces a shipping method's fields (admin)
func (s *Service) Update(id uint, req *MethodRequest) (*Method, error) {
	method, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.EstimatedDaysMax < req.EstimatedDaysMin {
		return nil, apperrors.ValidationFailed("estimated delivery window is inverted")
	}

	updates := map[string]interface{}{
		"name":               req.Name,
		"description":        req.Description,
		"base_price":         req.BasePrice,
		"price_per_kg":       req.PricePerKg,
		"estimated_days_min": req.EstimatedDaysMin,
		"estimated_days_max": req.EstimatedDaysMax,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(method).Updates(updates).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to update shipping method", err)
	}

	return s.Get(id)
}

// Delete soft-deletes a shipping method (admin)
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Method{}, id)
	if result.Error != nil {
		return apperrors.RemoteRejected("failed to delete shipping method", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("shipping method not found")
	}
	return nil
}
