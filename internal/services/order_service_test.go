// internal/services/order_service_test.go
package services

import (
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
)

type checkoutFixture struct {
	carts   *CartService
	orders  *OrderService
	user    *models.User
	product *models.Product
	address *models.Address
}

func newCheckoutFixture(t *testing.T, stock int) *checkoutFixture {
	db := newTestDB(t)
	auth := NewAuthorizationService()

	f := &checkoutFixture{
		carts:  NewCartService(db, auth),
		orders: NewOrderService(db, auth),
	}
	f.user = seedUser(t, db, "buyer@example.com", "52998224725", "user")
	f.product = seedProduct(t, db, f.user.ID, "50.00", stock)
	f.address = seedAddress(t, db, f.user.ID)
	return f
}

func (f *checkoutFixture) fillCart(t *testing.T, amount int) {
	t.Helper()
	_, err := f.carts.AddItems(f.user.ID, []CartItemInput{{ProductID: f.product.ID, Amount: amount}}, false)
	require.NoError(t, err)
}

func TestCheckoutCreatesOrderAndConsumesStock(t *testing.T) {
	f := newCheckoutFixture(t, 10)
	f.fillCart(t, 3)

	order, err := f.orders.Checkout(f.user.ID, &CheckoutRequest{
		AddressID:     f.address.ID,
		ShippingPrice: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, f.address.Cep, order.Cep)
	assert.Equal(t, f.address.Number, order.HouseNumber)
	require.Len(t, order.ProductGroups, 1)
	assert.Equal(t, 3, order.ProductGroups[0].Amount)

	// Stock decremented, orders counter bumped
	var product models.Product
	require.NoError(t, f.orders.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 7, product.StockAmount)
	assert.Equal(t, int64(1), product.OrdersAmount)

	// Cart is gone and the user's reference cleared
	var cartCount int64
	f.orders.db.Model(&models.ShoppingCart{}).Where("user_id = ?", f.user.ID).Count(&cartCount)
	assert.Zero(t, cartCount)

	var user models.User
	require.NoError(t, f.orders.db.First(&user, f.user.ID).Error)
	assert.Nil(t, user.ShoppingCartID)

	// Line items now belong to the order only
	var group models.ProductGroup
	require.NoError(t, f.orders.db.First(&group, order.ProductGroups[0].ID).Error)
	assert.Nil(t, group.CartID)
	require.NotNil(t, group.OrderID)
	assert.Equal(t, order.ID, *group.OrderID)
}

func TestCheckoutBumpsOrdersCounterByOne(t *testing.T) {
	f := newCheckoutFixture(t, 10)

	// Two adds merge into a single group of 7.
	f.fillCart(t, 4)
	f.fillCart(t, 3)

	_, err := f.orders.Checkout(f.user.ID, &CheckoutRequest{AddressID: f.address.ID})
	require.NoError(t, err)

	// Stock drops by the reserved units, the orders counter by checkouts.
	var product models.Product
	require.NoError(t, f.orders.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 3, product.StockAmount)
	assert.Equal(t, int64(1), product.OrdersAmount)
}

func TestCheckoutTrackingCodeFormat(t *testing.T) {
	f := newCheckoutFixture(t, 10)
	f.fillCart(t, 1)

	order, err := f.orders.Checkout(f.user.ID, &CheckoutRequest{AddressID: f.address.ID})
	require.NoError(t, err)

	require.Len(t, order.TrackingCode, 13)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{8}4[0-9A-F]{3}[89AB]$`), order.TrackingCode)
}

func TestCheckoutInsufficientStockIsAllOrNothing(t *testing.T) {
	f := newCheckoutFixture(t, 2)
	cheap := seedProduct(t, f.orders.db, f.user.ID, "5.00", 100)

	_, err := f.carts.AddItems(f.user.ID, []CartItemInput{
		{ProductID: cheap.ID, Amount: 1},
		{ProductID: f.product.ID, Amount: 5}, // over stock
	}, false)
	require.NoError(t, err)

	_, err = f.orders.Checkout(f.user.ID, &CheckoutRequest{AddressID: f.address.ID})

	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)

	// Nothing moved: both stocks intact, cart intact
	var product models.Product
	require.NoError(t, f.orders.db.First(&product, cheap.ID).Error)
	assert.Equal(t, 100, product.StockAmount)
	require.NoError(t, f.orders.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 2, product.StockAmount)

	var cartCount int64
	f.orders.db.Model(&models.ShoppingCart{}).Where("user_id = ?", f.user.ID).Count(&cartCount)
	assert.Equal(t, int64(1), cartCount)

	var orderCount int64
	f.orders.db.Model(&models.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, 10)
	_, err := f.carts.EnsureCart(f.user.ID, false)
	require.NoError(t, err)

	_, err = f.orders.Checkout(f.user.ID, &CheckoutRequest{AddressID: f.address.ID})

	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestCheckoutWithoutCart(t *testing.T) {
	f := newCheckoutFixture(t, 10)

	_, err := f.orders.Checkout(f.user.ID, &CheckoutRequest{AddressID: f.address.ID})

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCheckoutRejectsForeignAddress(t *testing.T) {
	f := newCheckoutFixture(t, 10)
	f.fillCart(t, 1)

	other := seedUser(t, f.orders.db, "other@example.com", "11144477735", "user")
	foreign := seedAddress(t, f.orders.db, other.ID)

	_, err := f.orders.Checkout(f.user.ID, &CheckoutRequest{AddressID: foreign.ID})

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSequentialCheckoutsLeaveStockForOne(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthorizationService()
	carts := NewCartService(db, auth)
	orders := NewOrderService(db, auth)

	seller := seedUser(t, db, "seller@example.com", "12345678909", "user|seller")
	product := seedProduct(t, db, seller.ID, "50.00", 1)

	a := seedUser(t, db, "a@example.com", "52998224725", "user")
	b := seedUser(t, db, "b@example.com", "11144477735", "user")
	addrA := seedAddress(t, db, a.ID)
	addrB := seedAddress(t, db, b.ID)

	for _, u := range []*models.User{a, b} {
		_, err := carts.AddItems(u.ID, []CartItemInput{{ProductID: product.ID, Amount: 1}}, false)
		require.NoError(t, err)
	}

	_, errA := orders.Checkout(a.ID, &CheckoutRequest{AddressID: addrA.ID})
	_, errB := orders.Checkout(b.ID, &CheckoutRequest{AddressID: addrB.ID})

	require.NoError(t, errA)
	var validation *apperrors.ValidationError
	require.ErrorAs(t, errB, &validation)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 0, reloaded.StockAmount)
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthorizationService()
	carts := NewCartService(db, auth)
	orders := NewOrderService(db, auth)

	seller := seedUser(t, db, "seller@example.com", "12345678909", "user|seller")
	product := seedProduct(t, db, seller.ID, "50.00", 1)

	a := seedUser(t, db, "a@example.com", "52998224725", "user")
	b := seedUser(t, db, "b@example.com", "11144477735", "user")
	addrs := map[uint]uint{}
	for _, u := range []*models.User{a, b} {
		addrs[u.ID] = seedAddress(t, db, u.ID).ID
		_, err := carts.AddItems(u.ID, []CartItemInput{{ProductID: product.ID, Amount: 1}}, false)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, u := range []*models.User{a, b} {
		wg.Add(1)
		go func(userID, addressID uint) {
			defer wg.Done()
			_, err := orders.Checkout(userID, &CheckoutRequest{AddressID: addressID})
			results <- err
		}(u.ID, addrs[u.ID])
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		}
	}

	assert.LessOrEqual(t, successes, 1)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.GreaterOrEqual(t, reloaded.StockAmount, 0)
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newCheckoutFixture(t, 10)
	f.fillCart(t, 2)
	admin := seedUser(t, f.orders.db, "admin@example.com", "11144477735", "user|admin")

	order, err := f.orders.Checkout(f.user.ID, &CheckoutRequest{AddressID: f.address.ID})
	require.NoError(t, err)

	// Only admins drive status
	_, err = f.orders.UpdateStatus(asActor(f.user), order.ID, models.OrderStatusConfirmed)
	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	confirmed, err := f.orders.UpdateStatus(asActor(admin), order.ID, models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, confirmed.Status)

	// A confirmed order cannot be canceled
	_, err = f.orders.UpdateStatus(asActor(admin), order.ID, models.OrderStatusCanceled)
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestCancelPendingOrderRestoresStock(t *testing.T) {
	f := newCheckoutFixture(t, 10)
	f.fillCart(t, 4)
	admin := seedUser(t, f.orders.db, "admin@example.com", "11144477735", "user|admin")

	order, err := f.orders.Checkout(f.user.ID, &CheckoutRequest{AddressID: f.address.ID})
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(asActor(admin), order.ID, models.OrderStatusCanceled)
	require.NoError(t, err)

	var product models.Product
	require.NoError(t, f.orders.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 10, product.StockAmount)
	assert.Equal(t, int64(0), product.OrdersAmount)
}

func TestGetOrderOwnership(t *testing.T) {
	f := newCheckoutFixture(t, 10)
	f.fillCart(t, 1)
	stranger := seedUser(t, f.orders.db, "other@example.com", "11144477735", "user")

	order, err := f.orders.Checkout(f.user.ID, &CheckoutRequest{AddressID: f.address.ID})
	require.NoError(t, err)

	_, err = f.orders.GetOrder(asActor(f.user), order.ID)
	require.NoError(t, err)

	_, err = f.orders.GetOrder(asActor(stranger), order.ID)
	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	byCode, err := f.orders.GetOrderByTrackingCode(asActor(f.user), order.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byCode.ID)
}
