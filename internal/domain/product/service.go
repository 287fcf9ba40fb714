// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"

	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
	OnSale     bool   `form:"on_sale"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
}

// ListResponse represents a paginated product listing
type ListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CreateRequest represents admin product creation data
type CreateRequest struct {
	Name          string   `json:"name" binding:"required"`
	Slug          string   `json:"slug" binding:"required"`
	Description   string   `json:"description"`
	Price         int64    `json:"price" binding:"required,min=1"`
	DiscountPrice *int64   `json:"discount_price"`
	ImageURL      string   `json:"image_url"`
	CategoryID    uint     `json:"category_id" binding:"required"`
	Sizes         []string `json:"sizes"`
	WeightGrams   int      `json:"weight_grams"`
	StockQuantity int      `json:"stock_quantity"`
	IsActive      *bool    `json:"is_active"`
}

// UpdateRequest represents admin product update data; nil fields are untouched
type UpdateRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *int64   `json:"price"`
	DiscountPrice *int64   `json:"discount_price"`
	ClearDiscount bool     `json:"clear_discount"`
	ImageURL      *string  `json:"image_url"`
	CategoryID    *uint    `json:"category_id"`
	Sizes         []string `json:"sizes"`
	WeightGrams   *int     `json:"weight_grams"`
	StockQuantity *int     `json:"stock_quantity"`
	IsActive      *bool    `json:"is_active"`
}

// List retrieves active products with filtering and pagination
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	return s.list(req, true)
}

// AdminList retrieves all products, including inactive ones
func (s *Service) AdminList(req *ListRequest) (*ListResponse, error) {
	return s.list(req, false)
}

func (s *Service) list(req *ListRequest, activeOnly bool) (*ListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Preload("Category")

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.Search != "" {
		pattern := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if req.OnSale {
		query = query.Where("discount_price IS NOT NULL AND discount_price < price")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to count products", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to retrieve products", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// Get retrieves a single active product by ID
func (s *Service) Get(id uint) (*Product, error) {
	var prod Product
	result := s.db.Preload("Category").Where("id = ? AND is_active = ?", id, true).First(&prod)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve product", result.Error)
	}
	return &prod, nil
}

// GetBySlug retrieves a single active product by slug
func (s *Service) GetBySlug(slug string) (*Product, error) {
	var prod Product
	result := s.db.Preload("Category").Where("slug = ? AND is_active = ?", slug, true).First(&prod)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve product", result.Error)
	}
	return &prod, nil
}

// Create creates a new product (admin)
func (s *Service) Create(req *CreateRequest) (*Product, error) {
	if req.DiscountPrice != nil && *req.DiscountPrice >= req.Price {
		return nil, apperrors.ValidationFailed("discount price must be below the list price")
	}

	var category Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		return nil, apperrors.ValidationFailed(fmt.Sprintf("category %d does not exist", req.CategoryID))
	}

	prod := Product{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		ImageURL:      req.ImageURL,
		CategoryID:    req.CategoryID,
		Sizes:         req.Sizes,
		WeightGrams:   req.WeightGrams,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to create product", err)
	}

	return &prod, nil
}

// Update applies a partial update to a product (admin)
func (s *Service) Update(id uint, req *UpdateRequest) (*Product, error) {
	var prod Product
	if err := s.db.First(&prod, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve product", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ClearDiscount {
		updates["discount_price"] = nil
	} else if req.DiscountPrice != nil {
		updates["discount_price"] = *req.DiscountPrice
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Sizes != nil {
		updates["sizes"] = SizeList(req.Sizes)
	}
	if req.WeightGrams != nil {
		updates["weight_grams"] = *req.WeightGrams
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&prod).Updates(updates).Error; err != nil {
			return nil, apperrors.RemoteRejected("failed to update product", err)
		}
	}

	// Re-read so the returned copy reflects persisted state
	if err := s.db.Preload("Category").First(&prod, id).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to reload product", err)
	}

	return &prod, nil
}

// Delete soft-deletes a product (admin)
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return apperrors.RemoteRejected("failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("product not found")
	}
	return nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"price":      true,
		"name":       true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
