// internal/models/user_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasRoleParsesDelimitedString(t *testing.T) {
	assert.True(t, HasRole("user", RoleUser))
	assert.True(t, HasRole("user|seller", RoleSeller))
	assert.True(t, HasRole("user|seller|admin", RoleAdmin))
	assert.True(t, HasRole("user | admin", RoleAdmin)) // tolerant of spaces

	assert.False(t, HasRole("user", RoleAdmin))
	assert.False(t, HasRole("", RoleUser))
	assert.False(t, HasRole("administrator", RoleAdmin)) // no substring matching
}

func TestHasRoleMatchesAnyOfRequired(t *testing.T) {
	assert.True(t, HasRole("user|seller", RoleSeller, RoleAdmin))
	assert.False(t, HasRole("user", RoleSeller, RoleAdmin))
}

func TestUserRoleHelpers(t *testing.T) {
	u := &User{Roles: "user|admin"}
	assert.True(t, u.IsAdmin())
	assert.True(t, u.HasRole(RoleUser))

	u = &User{Roles: "user"}
	assert.False(t, u.IsAdmin())
}

func TestPasswordHashing(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("Str0ng!Pass"))

	assert.NotEqual(t, "Str0ng!Pass", u.PasswordHash)
	assert.NoError(t, u.CheckPassword("Str0ng!Pass"))
	assert.Error(t, u.CheckPassword("wrong"))
}
