// internal/services/authorization_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
)

func TestCanAccessMatrix(t *testing.T) {
	svc := NewAuthorizationService()

	owner := Actor{ID: 1, Roles: "user"}
	stranger := Actor{ID: 2, Roles: "user|seller"}
	admin := Actor{ID: 3, Roles: "user|admin"}

	assert.True(t, svc.CanAccess(1, owner))
	assert.False(t, svc.CanAccess(1, stranger))
	assert.True(t, svc.CanAccess(1, admin))
}

func TestRequireAccessReturnsForbidden(t *testing.T) {
	svc := NewAuthorizationService()

	err := svc.RequireAccess(1, Actor{ID: 2, Roles: "user"})

	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	require.NoError(t, svc.RequireAccess(1, Actor{ID: 1, Roles: "user"}))
}

func TestRequireRole(t *testing.T) {
	svc := NewAuthorizationService()

	seller := Actor{ID: 1, Roles: "user|seller"}
	require.NoError(t, svc.RequireRole(seller, models.RoleSeller))
	require.NoError(t, svc.RequireRole(seller, models.RoleSeller, models.RoleAdmin))

	var forbidden *apperrors.ForbiddenError
	err := svc.RequireRole(seller, models.RoleAdmin)
	require.ErrorAs(t, err, &forbidden)
}
