// internal/services/lifecycle_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
)

func TestSetActiveStateRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "u@example.com", "52998224725", "user")
	product := seedProduct(t, db, user.ID, "10.00", 1)

	require.NoError(t, setActiveState(db, &models.Product{}, "product", product.ID, false))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.False(t, reloaded.IsActive)

	require.NoError(t, setActiveState(db, &models.Product{}, "product", product.ID, true))
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.True(t, reloaded.IsActive)
}

func TestSetActiveStateConflictSymmetry(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "u@example.com", "52998224725", "user")
	product := seedProduct(t, db, user.ID, "10.00", 1)

	var conflict *apperrors.ConflictError

	// Enabling an already enabled row conflicts
	err := setActiveState(db, &models.Product{}, "product", product.ID, true)
	require.ErrorAs(t, err, &conflict)

	// Disabling twice conflicts the second time
	require.NoError(t, setActiveState(db, &models.Product{}, "product", product.ID, false))
	err = setActiveState(db, &models.Product{}, "product", product.ID, false)
	require.ErrorAs(t, err, &conflict)
}

func TestSetActiveStateNotFound(t *testing.T) {
	db := newTestDB(t)

	err := setActiveState(db, &models.Product{}, "product", 424242, false)

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestActiveScopeHidesDisabledRows(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "u@example.com", "52998224725", "user")
	product := seedProduct(t, db, user.ID, "10.00", 1)

	require.NoError(t, setActiveState(db, &models.Product{}, "product", product.ID, false))

	var count int64
	require.NoError(t, activeScope(db.Model(&models.Product{})).Count(&count).Error)
	assert.Zero(t, count)
}
