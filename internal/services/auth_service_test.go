// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/config"
	"github.com/lojinha/loja-backend/internal/models"
)

func newAuthService(t *testing.T) *AuthService {
	db := newTestDB(t)
	return NewAuthService(db, &config.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenTTL:  1,
		RefreshTokenTTL: 24,
	})
}

func TestRegisterNormalizesAndDefaultsRole(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.Register(&RegisterRequest{
		Name:     "  Maria Silva  ",
		Email:    "Maria@Example.COM",
		CPF:      "529.982.247-25",
		Password: "Str0ng!Pass",
	})
	require.NoError(t, err)

	assert.Equal(t, "Maria Silva", user.Name)
	assert.Equal(t, "maria@example.com", user.Email)
	assert.Equal(t, "52998224725", user.CPF)
	assert.Equal(t, string(models.RoleUser), user.Roles)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "Str0ng!Pass", user.PasswordHash)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := newAuthService(t)

	req := &RegisterRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		CPF:      "52998224725",
		Password: "Str0ng!Pass",
	}
	_, err := svc.Register(req)
	require.NoError(t, err)

	var conflict *apperrors.ConflictError

	// Same email
	_, err = svc.Register(&RegisterRequest{
		Name: "Other", Email: "maria@example.com", CPF: "11144477735", Password: "Str0ng!Pass",
	})
	require.ErrorAs(t, err, &conflict)

	// Same CPF
	_, err = svc.Register(&RegisterRequest{
		Name: "Other", Email: "other@example.com", CPF: "52998224725", Password: "Str0ng!Pass",
	})
	require.ErrorAs(t, err, &conflict)
}

func TestRegisterValidatesCPFAndPassword(t *testing.T) {
	svc := newAuthService(t)

	var validation *apperrors.ValidationError

	_, err := svc.Register(&RegisterRequest{
		Name: "Maria", Email: "maria@example.com", CPF: "11111111111", Password: "Str0ng!Pass",
	})
	require.ErrorAs(t, err, &validation)

	_, err = svc.Register(&RegisterRequest{
		Name: "Maria", Email: "maria@example.com", CPF: "52998224725", Password: "weak",
	})
	require.ErrorAs(t, err, &validation)
}

func TestLoginIssuesTokens(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{
		Name: "Maria", Email: "maria@example.com", CPF: "52998224725", Password: "Str0ng!Pass",
	})
	require.NoError(t, err)

	resp, err := svc.Login(&LoginRequest{Email: "maria@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, 3600, resp.ExpiresIn)
	require.NotNil(t, resp.User.LastLoginAt)

	// Refresh returns a fresh pair for the same account
	refreshed, err := svc.RefreshToken(&RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)
}

func TestLoginFailures(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.Register(&RegisterRequest{
		Name: "Maria", Email: "maria@example.com", CPF: "52998224725", Password: "Str0ng!Pass",
	})
	require.NoError(t, err)

	var unauthorized *apperrors.UnauthorizedError

	_, err = svc.Login(&LoginRequest{Email: "maria@example.com", Password: "Wrong!Pass1"})
	require.ErrorAs(t, err, &unauthorized)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "Str0ng!Pass"})
	require.ErrorAs(t, err, &unauthorized)

	// A disabled account fails exactly like bad credentials
	require.NoError(t, setActiveState(svc.db, &models.User{}, "user", user.ID, false))
	_, err = svc.Login(&LoginRequest{Email: "maria@example.com", Password: "Str0ng!Pass"})
	require.ErrorAs(t, err, &unauthorized)
}
