// internal/services/lifecycle.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lojinha/loja-backend/internal/apperrors"
)

// setActiveState flips the is_active flag shared by every entity. Unlike
// regular lookups, it must see disabled rows so it can distinguish "does
// not exist" (NotFound) from "exists but already in the requested state"
// (Conflict).
func setActiveState(db *gorm.DB, model interface{}, resource string, id uint, active bool) error {
	var row struct {
		IsActive bool
	}

	if err := db.Model(model).Select("is_active").Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(resource, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if row.IsActive == active {
		if active {
			return apperrors.Conflict("%s %d is already enabled", resource, id)
		}
		return apperrors.Conflict("%s %d is already disabled", resource, id)
	}

	if err := db.Model(model).Where("id = ?", id).Update("is_active", active).Error; err != nil {
		return fmt.Errorf("failed to update %s state: %w", resource, err)
	}

	return nil
}

// activeScope filters out disabled rows; every lookup outside enable/disable
// treats a disabled entity exactly like an absent one.
func activeScope(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
