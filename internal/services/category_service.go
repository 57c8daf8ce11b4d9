// internal/services/category_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
	"github.com/lojinha/loja-backend/internal/utils"
)

type CategoryService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func NewCategoryService(db *gorm.DB, authorizationService *AuthorizationService) *CategoryService {
	return &CategoryService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

// CreateCategory adds a catalog category. Admin only; names are unique
// case-insensitively.
func (s *CategoryService) CreateCategory(actor Actor, req *CategoryRequest) (*models.Category, error) {
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid category data", utils.GetValidationErrors(err))
	}

	name := strings.TrimSpace(req.Name)

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("category %q already exists", name)
	}

	category := &models.Category{
		Name:        name,
		Description: req.Description,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *CategoryService) GetCategory(categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := activeScope(s.db).First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category", categoryID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) ListCategories(params utils.PaginationParams) ([]models.Category, int64, error) {
	query := activeScope(s.db.Model(&models.Category{}))

	if params.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	var categories []models.Category
	query = utils.ApplySort(query, params, []string{"created_at", "name"})
	if err := utils.ApplyPagination(query, params).Find(&categories).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, total, nil
}

func (s *CategoryService) UpdateCategory(actor Actor, categoryID uint, req *CategoryRequest) (*models.Category, error) {
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid category data", utils.GetValidationErrors(err))
	}

	var category models.Category
	if err := activeScope(s.db).First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category", categoryID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	name := strings.TrimSpace(req.Name)

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, categoryID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("category %q already exists", name)
	}

	if err := s.db.Model(&category).Updates(map[string]interface{}{
		"name":        name,
		"description": req.Description,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return &category, nil
}

func (s *CategoryService) DisableCategory(actor Actor, categoryID uint) error {
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	return setActiveState(s.db, &models.Category{}, "category", categoryID, false)
}

func (s *CategoryService) EnableCategory(actor Actor, categoryID uint) error {
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	return setActiveState(s.db, &models.Category{}, "category", categoryID, true)
}
