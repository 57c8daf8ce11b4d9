// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
	"github.com/lojinha/loja-backend/internal/utils"
)

type CartService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

type CartItemInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Amount    int  `json:"amount,omitempty" validate:"omitempty,min=1"`
}

type RemoveCartItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Amount    int  `json:"amount,omitempty" validate:"omitempty,min=1"`
}

func NewCartService(db *gorm.DB, authorizationService *AuthorizationService) *CartService {
	return &CartService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

// EnsureCart returns the user's active cart, creating one lazily when none
// exists. With reset=true any existing cart is discarded first and a fresh
// empty one takes its place. The user's cart-reference column always points
// at the returned cart.
func (s *CartService) EnsureCart(userID uint, reset bool) (*models.ShoppingCart, error) {
	var cart *models.ShoppingCart

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := activeScope(tx).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user", userID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		var existing models.ShoppingCart
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		switch {
		case err == nil && !reset:
			cart = &existing
			return s.updateCartReference(tx, &user, cart.ID)
		case err == nil && reset:
			if err := s.destroyCart(tx, &existing); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("database error: %w", err)
		}

		cart = &models.ShoppingCart{UserID: userID}
		if err := tx.Create(cart).Error; err != nil {
			return fmt.Errorf("failed to create shopping cart: %w", err)
		}

		return s.updateCartReference(tx, &user, cart.ID)
	})

	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItems merges the given items into the user's cart: an existing product
// group for the same product has its amount incremented, everything else
// gets a new group. Amount defaults to 1 when omitted.
func (s *CartService) AddItems(userID uint, items []CartItemInput, clean bool) ([]models.ProductGroup, error) {
	if len(items) == 0 {
		return nil, apperrors.Validation("at least one item is required")
	}
	for i := range items {
		if err := utils.ValidateStruct(&items[i]); err != nil {
			return nil, apperrors.ValidationWithFields("invalid cart item", utils.GetValidationErrors(err))
		}
	}

	var groups []models.ProductGroup

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.ensureCartTx(tx, userID, clean)
		if err != nil {
			return err
		}

		for _, item := range items {
			amount := item.Amount
			if amount == 0 {
				amount = 1
			}

			var product models.Product
			if err := activeScope(tx).First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("product", item.ProductID)
				}
				return fmt.Errorf("database error: %w", err)
			}

			var group models.ProductGroup
			err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, item.ProductID).First(&group).Error
			switch {
			case err == nil:
				group.Amount += amount
				if err := tx.Model(&group).Update("amount", group.Amount).Error; err != nil {
					return fmt.Errorf("failed to update product group: %w", err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				group = models.ProductGroup{
					CartID:    &cart.ID,
					ProductID: item.ProductID,
					Amount:    amount,
				}
				if err := tx.Create(&group).Error; err != nil {
					return fmt.Errorf("failed to create product group: %w", err)
				}
			default:
				return fmt.Errorf("database error: %w", err)
			}
		}

		return tx.Where("cart_id = ?", cart.ID).Preload("Product").Find(&groups).Error
	})

	if err != nil {
		return nil, err
	}
	return groups, nil
}

// RemoveItem decrements the product group for productID by amount, deleting
// the row entirely when the amount reaches zero or below. Removing more
// than present is not an error. Amount defaults to 1 when unset.
func (s *CartService) RemoveItem(userID uint, productID uint, amount int) (*models.ShoppingCart, error) {
	if amount <= 0 {
		amount = 1
	}

	var cart models.ShoppingCart

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("shopping cart", 0)
			}
			return fmt.Errorf("database error: %w", err)
		}

		var group models.ProductGroup
		if err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product group", productID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if group.Amount-amount <= 0 {
			if err := tx.Delete(&group).Error; err != nil {
				return fmt.Errorf("failed to delete product group: %w", err)
			}
		} else {
			if err := tx.Model(&group).Update("amount", group.Amount-amount).Error; err != nil {
				return fmt.Errorf("failed to update product group: %w", err)
			}
		}

		return tx.Where("id = ?", cart.ID).Preload("ProductGroups.Product").First(&cart).Error
	})

	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart loads a user's cart with its line items. Only the owner or an
// admin may read it.
func (s *CartService) GetCart(actor Actor, userID uint) (*models.ShoppingCart, error) {
	var cart models.ShoppingCart
	if err := activeScope(s.db).Where("user_id = ?", userID).
		Preload("ProductGroups.Product").First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("shopping cart", 0)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizationService.RequireAccess(cart.UserID, actor); err != nil {
		return nil, err
	}

	return &cart, nil
}

func (s *CartService) DisableCart(actor Actor, cartID uint) error {
	if err := s.requireCartAccess(actor, cartID); err != nil {
		return err
	}
	return setActiveState(s.db, &models.ShoppingCart{}, "shopping cart", cartID, false)
}

func (s *CartService) EnableCart(actor Actor, cartID uint) error {
	if err := s.requireCartAccess(actor, cartID); err != nil {
		return err
	}
	return setActiveState(s.db, &models.ShoppingCart{}, "shopping cart", cartID, true)
}

func (s *CartService) requireCartAccess(actor Actor, cartID uint) error {
	var cart models.ShoppingCart
	if err := s.db.First(&cart, cartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("shopping cart", cartID)
		}
		return fmt.Errorf("database error: %w", err)
	}
	return s.authorizationService.RequireAccess(cart.UserID, actor)
}

// ensureCartTx is EnsureCart running inside an existing transaction.
func (s *CartService) ensureCartTx(tx *gorm.DB, userID uint, reset bool) (*models.ShoppingCart, error) {
	var user models.User
	if err := activeScope(tx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.ShoppingCart
	err := tx.Where("user_id = ?", userID).First(&existing).Error
	switch {
	case err == nil && !reset:
		if err := s.updateCartReference(tx, &user, existing.ID); err != nil {
			return nil, err
		}
		return &existing, nil
	case err == nil && reset:
		if err := s.destroyCart(tx, &existing); err != nil {
			return nil, err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("database error: %w", err)
	}

	cart := &models.ShoppingCart{UserID: userID}
	if err := tx.Create(cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create shopping cart: %w", err)
	}

	if err := s.updateCartReference(tx, &user, cart.ID); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) updateCartReference(tx *gorm.DB, user *models.User, cartID uint) error {
	if user.ShoppingCartID != nil && *user.ShoppingCartID == cartID {
		return nil
	}
	if err := tx.Model(user).Update("shopping_cart_id", cartID).Error; err != nil {
		return fmt.Errorf("failed to update cart reference: %w", err)
	}
	return nil
}

// destroyCart removes a cart together with its product groups.
func (s *CartService) destroyCart(tx *gorm.DB, cart *models.ShoppingCart) error {
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.ProductGroup{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart product groups: %w", err)
	}
	if err := tx.Delete(cart).Error; err != nil {
		return fmt.Errorf("failed to delete shopping cart: %w", err)
	}
	return nil
}
