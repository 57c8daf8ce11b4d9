// internal/services/address_service.go
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

type AddressService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

type AddressRequest struct {
	Cep        string `json:"cep" validate:"required,cep"`
	Street     string `json:"street" validate:"required,min=2,max=200"`
	Number     int    `json:"number" validate:"required,min=1"`
	Complement string `json:"complement" validate:"max=100"`
	District   string `json:"district" validate:"required,min=2,max=100"`
	City       string `json:"city" validate:"required,min=2,max=100"`
	State      string `json:"state" validate:"required,len=2"`
}

func NewAddressService(db *gorm.DB, authorizationService *AuthorizationService) *AddressService {
	return &AddressService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

// CreateAddress registers a delivery address for the acting user.
func (s *AddressService) CreateAddress(userID uint, req *AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid address data", utils.GetValidationErrors(err))
	}

	address := &models.Address{
		UserID:     userID,
		Cep:        utils.NormalizeCEP(req.Cep),
		Street:     strings.TrimSpace(req.Street),
		Number:     req.Number,
		Complement: strings.TrimSpace(req.Complement),
		District:   strings.TrimSpace(req.District),
		City:       strings.TrimSpace(req.City),
		State:      strings.ToUpper(strings.TrimSpace(req.State)),
	}

	if err := s.db.Create(address).Error; err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return address, nil
}

func (s *AddressService) GetAddress(actor Actor, addressID uint) (*models.Address, error) {
	var address models.Address
	if err := activeScope(s.db).First(&address, addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("address", addressID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizationService.RequireAccess(address.UserID, actor); err != nil {
		return nil, err
	}

	return &address, nil
}

// ListAddresses returns a user's active addresses, owner or admin only.
func (s *AddressService) ListAddresses(actor Actor, userID uint) ([]models.Address, error) {
	if err := s.authorizationService.RequireAccess(userID, actor); err != nil {
		return nil, err
	}

	var addresses []models.Address
	if err := activeScope(s.db).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	return addresses, nil
}

func (s *AddressService) UpdateAddress(actor Actor, addressID uint, req *AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid address data", utils.GetValidationErrors(err))
	}

	var address models.Address
	if err := activeScope(s.db).First(&address, addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("address", addressID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizationService.RequireAccess(address.UserID, actor); err != nil {
		return nil, err
	}

	if err := s.db.Model(&address).Updates(map[string]interface{}{
		"cep":        utils.NormalizeCEP(req.Cep),
		"street":     strings.TrimSpace(req.Street),
		"number":     req.Number,
		"complement": strings.TrimSpace(req.Complement),
		"district":   strings.TrimSpace(req.District),
		"city":       strings.TrimSpace(req.City),
		"state":      strings.ToUpper(strings.TrimSpace(req.State)),
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return &address, nil
}

func (s *AddressService) DisableAddress(actor Actor, addressID uint) error {
	if err := s.requireAddressAccess(actor, addressID); err != nil {
		return err
	}
	return setActiveState(s.db, &models.Address{}, "address", addressID, false)
}

func (s *AddressService) EnableAddress(actor Actor, addressID uint) error {
	if err := s.requireAddressAccess(actor, addressID); err != nil {
		return err
	}
	return setActiveState(s.db, &models.Address{}, "address", addressID, true)
}

func (s *AddressService) requireAddressAccess(actor Actor, addressID uint) error {
	var address models.Address
	if err := s.db.First(&address, addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("address", addressID)
		}
		return fmt.Errorf("database error: %w", err)
	}
	return s.authorizationService.RequireAccess(address.UserID, actor)
}
