// internal/domain/product/category_service.go
package product

import (
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// CategoryService handles category business logic
type CategoryService struct {
	db     *gorm.DB
	config *config.Config
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, cfg *config.Config) *CategoryService {
	return &CategoryService{
		db:     db,
		config: cfg,
	}
}

// CategoryRequest represents category create/update data
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

// ListCategories retrieves all active categories
func (s *CategoryService) ListCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("is_active = ?", true).Order("name asc").Find(&categories).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve categories", err)
	}
	return categories, nil
}

// AdminListCategories retrieves all categories, including inactive ones
func (s *CategoryService) AdminListCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve categories", err)
	}
	return categories, nil
}

// GetCategory retrieves a single category by ID
func (s *CategoryService) GetCategory(id uint) (*Category, error) {
	var category Category
	result := s.db.First(&category, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("category not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve category", result.Error)
	}
	return &category, nil
}

// CreateCategory creates a new category (admin)
func (s *CategoryService) CreateCategory(req *CategoryRequest) (*Category, error) {
	category := Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.db.Create(&category).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to create category", err)
	}

	return &category, nil
}

// UpdateCategory updates a category (admin)
func (s *CategoryService) UpdateCategory(id uint, req *CategoryRequest) (*Category, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"slug":        req.Slug,
		"description": req.Description,
		"image_url":   req.ImageURL,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to update category", err)
	}

	return s.GetCategory(id)
}

// DeleteCategory soft-deletes a category with no remaining products (admin)
func (s *CategoryService) DeleteCategory(id uint) error {
	var count int64
	if err := s.db.Model(&Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return apperrors.RemoteRejected("failed to check category usage", err)
	}
	if count > 0 {
		return apperrors.ValidationFailed("category still has products assigned")
	}

	result := s.db.Delete(&Category{}, id)
	if result.Error != nil {
		return apperrors.RemoteRejected("failed to delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("category not found")
	}
	return nil
}
