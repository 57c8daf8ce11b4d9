// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
	"github.com/lojinha/loja-backend/internal/utils"
)

type ProductService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

type CreateProductRequest struct {
	Name             string           `json:"name" validate:"required,min=2,max=200"`
	Description      string           `json:"description" validate:"max=5000"`
	Price            decimal.Decimal  `json:"price" validate:"required"`
	InstallmentPrice *decimal.Decimal `json:"installment_price,omitempty"`
	InstallmentCount int              `json:"installment_count,omitempty" validate:"omitempty,min=1,max=12"`
	Discount         float64          `json:"discount,omitempty" validate:"omitempty,min=0,max=1"`
	StockAmount      int              `json:"stock_amount" validate:"min=0"`
	CategoryIDs      []uint           `json:"category_ids,omitempty"`
	Images           []string         `json:"images,omitempty" validate:"omitempty,dive,url"`
}

type UpdateProductRequest struct {
	Name             *string          `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description      *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	InstallmentPrice *decimal.Decimal `json:"installment_price,omitempty"`
	InstallmentCount *int             `json:"installment_count,omitempty" validate:"omitempty,min=1,max=12"`
	Discount         *float64         `json:"discount,omitempty" validate:"omitempty,min=0,max=1"`
	StockAmount      *int             `json:"stock_amount,omitempty" validate:"omitempty,min=0"`
	CategoryIDs      []uint           `json:"category_ids,omitempty"`
	Images           []string         `json:"images,omitempty" validate:"omitempty,dive,url"`
}

type ProductSearchParams struct {
	CategoryID uint
	SellerID   uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    bool
}

func NewProductService(db *gorm.DB, authorizationService *AuthorizationService) *ProductService {
	return &ProductService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

// CreateProduct registers a listing owned by the acting seller. The caller
// must hold the seller role.
func (s *ProductService) CreateProduct(actor Actor, req *CreateProductRequest) (*models.Product, error) {
	if err := s.authorizationService.RequireRole(actor, models.RoleSeller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid product data", utils.GetValidationErrors(err))
	}
	if !req.Price.IsPositive() {
		return nil, apperrors.Validation("price must be greater than zero")
	}

	product := &models.Product{
		SellerID:         actor.ID,
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		Price:            req.Price,
		InstallmentPrice: req.InstallmentPrice,
		InstallmentCount: req.InstallmentCount,
		Discount:         req.Discount,
		StockAmount:      req.StockAmount,
		Images:           pq.StringArray(req.Images),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return s.replaceCategories(tx, product, req.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.loadProduct(product.ID)
}

// GetProduct returns an active product with its seller and categories.
func (s *ProductService) GetProduct(productID uint) (*models.Product, error) {
	return s.loadProduct(productID)
}

// ListProducts searches the catalog. Only active products are visible; the
// text search matches name and description.
func (s *ProductService) ListProducts(params utils.PaginationParams, search ProductSearchParams) ([]models.Product, int64, error) {
	query := activeScope(s.db.Model(&models.Product{}))

	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}
	if search.SellerID != 0 {
		query = query.Where("seller_id = ?", search.SellerID)
	}
	if search.CategoryID != 0 {
		query = query.Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Where("pc.category_id = ?", search.CategoryID)
	}
	if search.MinPrice != nil {
		query = query.Where("price >= ?", search.MinPrice)
	}
	if search.MaxPrice != nil {
		query = query.Where("price <= ?", search.MaxPrice)
	}
	if search.InStock {
		query = query.Where("stock_amount > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	query = utils.ApplySort(query, params, []string{"created_at", "price", "rating", "orders_amount", "name"})
	if err := utils.ApplyPagination(query, params).
		Preload("Categories").Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// UpdateProduct applies a partial update. Only the selling user or an admin
// may modify a listing.
func (s *ProductService) UpdateProduct(actor Actor, productID uint, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid product data", utils.GetValidationErrors(err))
	}

	var product models.Product
	if err := activeScope(s.db).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizationService.RequireAccess(product.SellerID, actor); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, apperrors.Validation("price must be greater than zero")
		}
		updates["price"] = req.Price
	}
	if req.InstallmentPrice != nil {
		updates["installment_price"] = req.InstallmentPrice
	}
	if req.InstallmentCount != nil {
		updates["installment_count"] = *req.InstallmentCount
	}
	if req.Discount != nil {
		updates["discount"] = *req.Discount
	}
	if req.StockAmount != nil {
		updates["stock_amount"] = *req.StockAmount
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}
		}
		if req.CategoryIDs != nil {
			return s.replaceCategories(tx, &product, req.CategoryIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadProduct(productID)
}

// AddImage appends an uploaded image URL to the listing.
func (s *ProductService) AddImage(actor Actor, productID uint, url string) (*models.Product, error) {
	var product models.Product
	if err := activeScope(s.db).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizationService.RequireAccess(product.SellerID, actor); err != nil {
		return nil, err
	}

	product.Images = append(product.Images, url)
	if err := s.db.Model(&product).Update("images", product.Images).Error; err != nil {
		return nil, fmt.Errorf("failed to update product images: %w", err)
	}

	return &product, nil
}

func (s *ProductService) DisableProduct(actor Actor, productID uint) error {
	if err := s.requireProductAccess(actor, productID); err != nil {
		return err
	}
	return setActiveState(s.db, &models.Product{}, "product", productID, false)
}

func (s *ProductService) EnableProduct(actor Actor, productID uint) error {
	if err := s.requireProductAccess(actor, productID); err != nil {
		return err
	}
	return setActiveState(s.db, &models.Product{}, "product", productID, true)
}

func (s *ProductService) requireProductAccess(actor Actor, productID uint) error {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("product", productID)
		}
		return fmt.Errorf("database error: %w", err)
	}
	return s.authorizationService.RequireAccess(product.SellerID, actor)
}

func (s *ProductService) loadProduct(productID uint) (*models.Product, error) {
	var product models.Product
	if err := activeScope(s.db).Preload("Categories").Preload("Seller").
		First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// replaceCategories resets the many-to-many association after checking every
// referenced category exists and is active.
func (s *ProductService) replaceCategories(tx *gorm.DB, product *models.Product, categoryIDs []uint) error {
	if len(categoryIDs) == 0 {
		return tx.Model(product).Association("Categories").Clear()
	}

	var categories []models.Category
	if err := activeScope(tx).Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if len(categories) != len(categoryIDs) {
		found := make(map[uint]bool, len(categories))
		for _, cat := range categories {
			found[cat.ID] = true
		}
		for _, id := range categoryIDs {
			if !found[id] {
				return apperrors.NotFound("category", id)
			}
		}
	}

	if err := tx.Model(product).Association("Categories").Replace(categories); err != nil {
		return fmt.Errorf("failed to set product categories: %w", err)
	}
	return nil
}
