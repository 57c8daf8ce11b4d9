// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/config"
	"github.com/lojinha/loja-backend/internal/models"
)

type PaymentService struct {
	db                   *gorm.DB
	config               *config.Config
	authorizationService *AuthorizationService
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	OrderID         uint   `json:"order_id" validate:"required"`
}

func NewPaymentService(db *gorm.DB, config *config.Config, authorizationService *AuthorizationService) *PaymentService {
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		db:                   db,
		config:               config,
		authorizationService: authorizationService,
	}
}

// CreatePaymentIntent opens a payment for a pending order. The amount is
// the order total computed server-side, never taken from the client.
func (s *PaymentService) CreatePaymentIntent(actor Actor, orderID uint) (*PaymentIntentResponse, error) {
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
	if order.Status != models.OrderStatusPending {
		return nil, apperrors.Conflict("order %d is %s and cannot be paid", orderID, order.Status)
	}

	// Stripe wants the smallest currency unit (centavos for BRL).
	amountInCents := order.Total().Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(s.config.Payment.Currency),
	}
	params.AddMetadata("order_id", fmt.Sprintf("%d", order.ID))
	params.AddMetadata("user_id", fmt.Sprintf("%d", order.UserID))
	params.AddMetadata("tracking_code", order.TrackingCode)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.db.Model(&order).Update("payment_reference", pi.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to store payment reference: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmPayment checks the intent's status with Stripe and, on success,
// moves the order from pending to confirmed.
func (s *PaymentService) ConfirmPayment(actor Actor, req *ConfirmPaymentRequest) (*models.Order, error) {
	var order models.Order
	if err := activeScope(s.db).First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order", req.OrderID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizationService.RequireAccess(order.UserID, actor); err != nil {
		return nil, err
	}
	if order.PaymentReference != req.PaymentIntentID {
		return nil, apperrors.Validation("payment intent does not belong to this order")
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperrors.Conflict("order %d is already %s", order.ID, order.Status)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		if err := s.db.Model(&order).Update("status", models.OrderStatusConfirmed).Error; err != nil {
			return nil, fmt.Errorf("failed to confirm order: %w", err)
		}
		order.Status = models.OrderStatusConfirmed
	case stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusProcessing:
		// Still in flight; the order stays pending.
	default:
		return nil, apperrors.Conflict("payment for order %d failed with status %s", order.ID, pi.Status)
	}

	return &order, nil
}

// RefundOrder refunds a confirmed order through Stripe. Admin only; stock
// is not restored automatically.
func (s *PaymentService) RefundOrder(actor Actor, orderID uint, reason string) error {
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("order", orderID)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if order.Status != models.OrderStatusConfirmed {
		return apperrors.Conflict("only confirmed orders can be refunded")
	}
	if order.PaymentReference == "" {
		return apperrors.Validation("order has no payment to refund")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(order.PaymentReference),
		Reason:        stripe.String("requested_by_customer"),
	}
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("failed to process refund: %w", err)
	}

	if err := s.db.Model(&order).Update("status", models.OrderStatusCanceled).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}
