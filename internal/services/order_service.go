// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
	"github.com/lojinha/loja-backend/internal/utils"
)

type OrderService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

type CheckoutRequest struct {
	AddressID         uint            `json:"address_id" validate:"required"`
	InstallmentAmount int             `json:"installment_amount,omitempty" validate:"omitempty,min=1,max=12"`
	ShippingPrice     decimal.Decimal `json:"shipping_price,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending confirmed canceled"`
}

func NewOrderService(db *gorm.DB, authorizationService *AuthorizationService) *OrderService {
	return &OrderService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

// Checkout converts the user's cart into an order. The whole operation runs
// in a single transaction with the affected product rows locked, so stock is
// checked and decremented atomically: either every line item can be
// fulfilled, or nothing changes.
func (s *OrderService) Checkout(userID uint, req *CheckoutRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid checkout request", utils.GetValidationErrors(err))
	}
	if req.ShippingPrice.IsNegative() {
		return nil, apperrors.Validation("shipping price cannot be negative")
	}

	var order *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.ShoppingCart
		if err := activeScope(tx).Where("user_id = ?", userID).
			Preload("ProductGroups").First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("shopping cart", 0)
			}
			return fmt.Errorf("database error: %w", err)
		}
		if len(cart.ProductGroups) == 0 {
			return apperrors.Validation("shopping cart is empty")
		}

		var address models.Address
		if err := activeScope(tx).Where("id = ? AND user_id = ?", req.AddressID, userID).
			First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("address", req.AddressID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		// Lock all products up front, in ID order, before the capacity
		// check. Concurrent checkouts on overlapping carts serialize here.
		productIDs := make([]uint, 0, len(cart.ProductGroups))
		for _, group := range cart.ProductGroups {
			productIDs = append(productIDs, group.ProductID)
		}

		var products []models.Product
		if err := lockForUpdate(tx).Where("id IN ? AND is_active = ?", productIDs, true).
			Order("id").Find(&products).Error; err != nil {
			return fmt.Errorf("failed to lock products: %w", err)
		}

		productByID := make(map[uint]*models.Product, len(products))
		for i := range products {
			productByID[products[i].ID] = &products[i]
		}

		// All-or-nothing capacity check before any mutation.
		for _, group := range cart.ProductGroups {
			product, ok := productByID[group.ProductID]
			if !ok {
				return apperrors.NotFound("product", group.ProductID)
			}
			if product.StockAmount < group.Amount {
				return apperrors.Validation("insufficient stock for product %d: requested %d, available %d",
					product.ID, group.Amount, product.StockAmount)
			}
		}

		trackingCode, err := utils.GenerateTrackingCode()
		if err != nil {
			return fmt.Errorf("failed to generate tracking code: %w", err)
		}

		order = &models.Order{
			UserID:            userID,
			TrackingCode:      trackingCode,
			Status:            models.OrderStatusPending,
			Cep:               address.Cep,
			HouseNumber:       address.Number,
			ShippingPrice:     req.ShippingPrice,
			InstallmentAmount: req.InstallmentAmount,
		}
		if order.InstallmentAmount == 0 {
			order.InstallmentAmount = 1
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// Move product groups from the cart to the order and consume stock.
		// The orders counter tracks checkouts that touched the product, not
		// units sold, so it moves by one per product per order.
		for _, group := range cart.ProductGroups {
			if err := tx.Model(&models.ProductGroup{}).Where("id = ?", group.ID).
				Updates(map[string]interface{}{
					"cart_id":  nil,
					"order_id": order.ID,
				}).Error; err != nil {
				return fmt.Errorf("failed to attach product group to order: %w", err)
			}

			if err := tx.Model(&models.Product{}).Where("id = ?", group.ProductID).
				Updates(map[string]interface{}{
					"stock_amount":  gorm.Expr("stock_amount - ?", group.Amount),
					"orders_amount": gorm.Expr("orders_amount + 1"),
				}).Error; err != nil {
				return fmt.Errorf("failed to consume product stock: %w", err)
			}
		}

		if err := tx.Delete(&cart).Error; err != nil {
			return fmt.Errorf("failed to delete shopping cart: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("shopping_cart_id", nil).Error; err != nil {
			return fmt.Errorf("failed to clear cart reference: %w", err)
		}

		return tx.Preload("ProductGroups.Product").First(order, order.ID).Error
	})

	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder loads a single order. Only the owner or an admin may read it.
func (s *OrderService) GetOrder(actor Actor, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := activeScope(s.db).Preload("ProductGroups.Product").
		First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order", orderID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizationService.RequireAccess(order.UserID, actor); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListOrders returns a user's orders, newest first. An admin may list any
// user's orders, everyone else only their own.
func (s *OrderService) ListOrders(actor Actor, userID uint, params utils.PaginationParams) ([]models.Order, int64, error) {
	if err := s.authorizationService.RequireAccess(userID, actor); err != nil {
		return nil, 0, err
	}

	query := activeScope(s.db.Model(&models.Order{})).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	query = utils.ApplySort(query, params, []string{"created_at", "status"})
	if err := utils.ApplyPagination(query, params).
		Preload("ProductGroups.Product").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// GetOrderByTrackingCode resolves an order from its public tracking code.
func (s *OrderService) GetOrderByTrackingCode(actor Actor, code string) (*models.Order, error) {
	var order models.Order
	if err := activeScope(s.db).Where("tracking_code = ?", code).
		Preload("ProductGroups.Product").First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order", 0)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizationService.RequireAccess(order.UserID, actor); err != nil {
		return nil, err
	}

	return &order, nil
}

// UpdateStatus moves an order along its lifecycle. Cancellation of a pending
// order returns stock; a confirmed order cannot be canceled here.
func (s *OrderService) UpdateStatus(actor Actor, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	var order *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		if err := tx.Preload("ProductGroups").First(&existing, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order", orderID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if existing.Status == status {
			return apperrors.Conflict("order %d is already %s", orderID, status)
		}
		if existing.Status != models.OrderStatusPending {
			return apperrors.Conflict("order %d is %s and cannot change status", orderID, existing.Status)
		}

		if status == models.OrderStatusCanceled {
			for _, group := range existing.ProductGroups {
				if err := tx.Model(&models.Product{}).Where("id = ?", group.ProductID).
					Updates(map[string]interface{}{
						"stock_amount":  gorm.Expr("stock_amount + ?", group.Amount),
						"orders_amount": gorm.Expr("orders_amount - 1"),
					}).Error; err != nil {
					return fmt.Errorf("failed to restore product stock: %w", err)
				}
			}
		}

		if err := tx.Model(&existing).Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		existing.Status = status
		order = &existing
		return nil
	})

	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) DisableOrder(actor Actor, orderID uint) error {
	if err := s.requireOrderAccess(actor, orderID); err != nil {
		return err
	}
	return setActiveState(s.db, &models.Order{}, "order", orderID, false)
}

func (s *OrderService) EnableOrder(actor Actor, orderID uint) error {
	if err := s.requireOrderAccess(actor, orderID); err != nil {
		return err
	}
	return setActiveState(s.db, &models.Order{}, "order", orderID, true)
}

func (s *OrderService) requireOrderAccess(actor Actor, orderID uint) error {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("order", orderID)
		}
		return fmt.Errorf("database error: %w", err)
	}
	return s.authorizationService.RequireAccess(order.UserID, actor)
}

// lockForUpdate applies a row lock where the dialect supports it. The sqlite
// driver used in tests does not understand FOR UPDATE; there the enclosing
// transaction already serializes writers.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
