// internal/services/user_service.go
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

type UserService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

func NewUserService(db *gorm.DB, authorizationService *AuthorizationService) *UserService {
	return &UserService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

// GetUser loads a user profile. Owner or admin only.
func (s *UserService) GetUser(actor Actor, userID uint) (*models.User, error) {
	if err := s.authorizationService.RequireAccess(userID, actor); err != nil {
		return nil, err
	}

	var user models.User
	if err := activeScope(s.db).Preload("Addresses").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

// UpdateUser applies a partial profile update.
func (s *UserService) UpdateUser(actor Actor, userID uint, req *UpdateUserRequest) (*models.User, error) {
	if err := s.authorizationService.RequireAccess(userID, actor); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationWithFields("invalid user data", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := activeScope(s.db).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			var count int64
			if err := s.db.Model(&models.User{}).
				Where("email = ? AND id <> ?", email, userID).Count(&count).Error; err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			if count > 0 {
				return nil, apperrors.Conflict("email already registered")
			}
			updates["email"] = email
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return &user, nil
}

// ChangePassword verifies the current password before setting the new one.
func (s *UserService) ChangePassword(actor Actor, userID uint, req *ChangePasswordRequest) error {
	if err := s.authorizationService.RequireAccess(userID, actor); err != nil {
		return err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.ValidationWithFields("invalid password data", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := activeScope(s.db).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user", userID)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return apperrors.Unauthorized("current password is incorrect")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(&user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// PromoteToSeller grants the seller role. Idempotent promotion is a
// conflict, matching the enable/disable convention.
func (s *UserService) PromoteToSeller(actor Actor, userID uint) (*models.User, error) {
	if err := s.authorizationService.RequireAccess(userID, actor); err != nil {
		return nil, err
	}

	var user models.User
	if err := activeScope(s.db).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.HasRole(models.RoleSeller) {
		return nil, apperrors.Conflict("user %d is already a seller", userID)
	}

	user.Roles = user.Roles + models.RoleDelimiter + string(models.RoleSeller)
	if err := s.db.Model(&user).Update("roles", user.Roles).Error; err != nil {
		return nil, fmt.Errorf("failed to update roles: %w", err)
	}

	return &user, nil
}

func (s *UserService) DisableUser(actor Actor, userID uint) error {
	if err := s.authorizationService.RequireAccess(userID, actor); err != nil {
		return err
	}
	return setActiveState(s.db, &models.User{}, "user", userID, false)
}

func (s *UserService) EnableUser(actor Actor, userID uint) error {
	// Re-enabling a disabled account is admin-only: the owner cannot
	// authenticate while disabled.
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	return setActiveState(s.db, &models.User{}, "user", userID, true)
}

// UpdateAvatar stores the uploaded avatar URL on the profile.
func (s *UserService) UpdateAvatar(actor Actor, userID uint, url string) error {
	if err := s.authorizationService.RequireAccess(userID, actor); err != nil {
		return err
	}

	result := activeScope(s.db.Model(&models.User{})).Where("id = ?", userID).
		Update("avatar_url", url)
	if result.Error != nil {
		return fmt.Errorf("failed to update avatar: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("user", userID)
	}
	return nil
}
