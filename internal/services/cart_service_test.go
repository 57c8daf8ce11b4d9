// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
)

func newCartFixture(t *testing.T) (*CartService, *models.User, *models.Product) {
	db := newTestDB(t)
	svc := NewCartService(db, NewAuthorizationService())
	user := seedUser(t, db, "buyer@example.com", "52998224725", "user")
	product := seedProduct(t, db, user.ID, "99.90", 10)
	return svc, user, product
}

func TestEnsureCartCreatesLazily(t *testing.T) {
	svc, user, _ := newCartFixture(t)

	cart, err := svc.EnsureCart(user.ID, false)
	require.NoError(t, err)
	require.NotZero(t, cart.ID)
	assert.Equal(t, user.ID, cart.UserID)

	// Second call returns the same cart
	again, err := svc.EnsureCart(user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	// The user row points at the cart
	var reloaded models.User
	require.NoError(t, svc.db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.ShoppingCartID)
	assert.Equal(t, cart.ID, *reloaded.ShoppingCartID)
}

func TestEnsureCartReset(t *testing.T) {
	svc, user, product := newCartFixture(t)

	_, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID, Amount: 2}}, false)
	require.NoError(t, err)

	original, err := svc.EnsureCart(user.ID, false)
	require.NoError(t, err)

	fresh, err := svc.EnsureCart(user.ID, true)
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, fresh.ID)

	// Old cart and its groups are gone
	var count int64
	svc.db.Model(&models.ProductGroup{}).Where("cart_id = ?", original.ID).Count(&count)
	assert.Zero(t, count)
}

func TestAddItemsMergesExistingGroup(t *testing.T) {
	svc, user, product := newCartFixture(t)

	_, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID, Amount: 2}}, false)
	require.NoError(t, err)

	groups, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID, Amount: 3}}, false)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, 5, groups[0].Amount)
}

func TestAddItemsDefaultsAmountToOne(t *testing.T) {
	svc, user, product := newCartFixture(t)

	groups, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID}}, false)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Amount)
}

func TestAddItemsUnknownProduct(t *testing.T) {
	svc, user, _ := newCartFixture(t)

	_, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: 9999, Amount: 1}}, false)

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestAddItemsCleanDiscardsPreviousCart(t *testing.T) {
	svc, user, product := newCartFixture(t)
	other := seedProduct(t, svc.db, user.ID, "10.00", 5)

	_, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID, Amount: 4}}, false)
	require.NoError(t, err)

	groups, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: other.ID, Amount: 1}}, true)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, other.ID, groups[0].ProductID)
}

func TestRemoveItemDecrements(t *testing.T) {
	svc, user, product := newCartFixture(t)

	_, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID, Amount: 3}}, false)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(user.ID, product.ID, 1)
	require.NoError(t, err)

	require.Len(t, cart.ProductGroups, 1)
	assert.Equal(t, 2, cart.ProductGroups[0].Amount)
}

func TestRemoveItemAmountDefaultsToOne(t *testing.T) {
	svc, user, product := newCartFixture(t)

	_, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID, Amount: 2}}, false)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(user.ID, product.ID, 0)
	require.NoError(t, err)

	require.Len(t, cart.ProductGroups, 1)
	assert.Equal(t, 1, cart.ProductGroups[0].Amount)
}

func TestRemoveItemFloorsToDeletion(t *testing.T) {
	svc, user, product := newCartFixture(t)

	_, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID, Amount: 2}}, false)
	require.NoError(t, err)

	// Removing more than present deletes the group, not an error
	cart, err := svc.RemoveItem(user.ID, product.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, cart.ProductGroups)
}

func TestRemoveItemMissingGroup(t *testing.T) {
	svc, user, product := newCartFixture(t)
	other := seedProduct(t, svc.db, user.ID, "10.00", 5)

	_, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID, Amount: 1}}, false)
	require.NoError(t, err)

	_, err = svc.RemoveItem(user.ID, other.ID, 1)

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGetCartOwnership(t *testing.T) {
	svc, user, product := newCartFixture(t)
	stranger := seedUser(t, svc.db, "other@example.com", "11144477735", "user")
	admin := seedUser(t, svc.db, "admin@example.com", "12345678909", "user|admin")

	_, err := svc.AddItems(user.ID, []CartItemInput{{ProductID: product.ID, Amount: 1}}, false)
	require.NoError(t, err)

	// Owner reads fine
	cart, err := svc.GetCart(asActor(user), user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.ProductGroups, 1)

	// A stranger is forbidden
	_, err = svc.GetCart(asActor(stranger), user.ID)
	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	// An admin may read any cart
	_, err = svc.GetCart(asActor(admin), user.ID)
	require.NoError(t, err)
}
