// internal/services/rating_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
	"github.com/lojinha/loja-backend/internal/utils"
)

type RatingService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

type RatingRequest struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func NewRatingService(db *gorm.DB, authorizationService *AuthorizationService) *RatingService {
	return &RatingService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

// RateProduct records one rating per user per product and refreshes the
// product's cached aggregate. A second rating from the same user is a
// conflict; use UpdateRating to change it.
func (s *RatingService) RateProduct(userID uint, productID uint, req *RatingRequest) (*models.Rating, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid rating data", utils.GetValidationErrors(err))
	}

	var rating *models.Rating

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := activeScope(tx).First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product", productID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Rating{}).
			Where("user_id = ? AND product_id = ?", userID, productID).Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			return apperrors.Conflict("user %d has already rated product %d", userID, productID)
		}

		rating = &models.Rating{
			UserID:    userID,
			ProductID: productID,
			Score:     req.Score,
			Comment:   req.Comment,
		}
		if err := tx.Create(rating).Error; err != nil {
			return fmt.Errorf("failed to create rating: %w", err)
		}

		return s.refreshAggregate(tx, productID)
	})

	if err != nil {
		return nil, err
	}
	return rating, nil
}

// UpdateRating changes the caller's existing rating of a product.
func (s *RatingService) UpdateRating(actor Actor, ratingID uint, req *RatingRequest) (*models.Rating, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid rating data", utils.GetValidationErrors(err))
	}

	var rating models.Rating

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := activeScope(tx).First(&rating, ratingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("rating", ratingID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := s.authorizationService.RequireAccess(rating.UserID, actor); err != nil {
			return err
		}

		if err := tx.Model(&rating).Updates(map[string]interface{}{
			"score":   req.Score,
			"comment": req.Comment,
		}).Error; err != nil {
			return fmt.Errorf("failed to update rating: %w", err)
		}
		rating.Score = req.Score
		rating.Comment = req.Comment

		return s.refreshAggregate(tx, rating.ProductID)
	})

	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListProductRatings returns the active ratings of a product, newest first.
func (s *RatingService) ListProductRatings(productID uint, params utils.PaginationParams) ([]models.Rating, int64, error) {
	var product models.Product
	if err := activeScope(s.db).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.NotFound("product", productID)
		}
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	query := activeScope(s.db.Model(&models.Rating{})).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	var ratings []models.Rating
	query = utils.ApplySort(query, params, []string{"created_at", "score"})
	if err := utils.ApplyPagination(query, params).
		Preload("User").Find(&ratings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}

	return ratings, total, nil
}

func (s *RatingService) DisableRating(actor Actor, ratingID uint) error {
	return s.setRatingState(actor, ratingID, false)
}

func (s *RatingService) EnableRating(actor Actor, ratingID uint) error {
	return s.setRatingState(actor, ratingID, true)
}

func (s *RatingService) setRatingState(actor Actor, ratingID uint, active bool) error {
	var rating models.Rating
	if err := s.db.First(&rating, ratingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("rating", ratingID)
		}
		return fmt.Errorf("database error: %w", err)
	}
	if err := s.authorizationService.RequireAccess(rating.UserID, actor); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := setActiveState(tx, &models.Rating{}, "rating", ratingID, active); err != nil {
			return err
		}
		return s.refreshAggregate(tx, rating.ProductID)
	})
}

// refreshAggregate recomputes the product's cached average and count from
// its active ratings.
func (s *RatingService) refreshAggregate(tx *gorm.DB, productID uint) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	if err := tx.Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ? AND is_active = ?", productID, true).
		Take(&agg).Error; err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	if err := tx.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       agg.Avg,
			"rating_count": agg.Count,
		}).Error; err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	return nil
}
