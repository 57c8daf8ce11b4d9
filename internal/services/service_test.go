// internal/services/service_test.go
package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lojinha/loja-backend/internal/models"
)

var testDBCounter int64

// newTestDB opens an isolated in-memory database per test. cache=shared
// keeps the database alive across the pool's connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared&_busy_timeout=5000", n)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Address{},
		&models.ShoppingCart{},
		&models.ProductGroup{},
		&models.Order{},
		&models.Rating{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, cpf, roles string) *models.User {
	t.Helper()

	user := &models.User{
		Name:  "Test User",
		Email: email,
		CPF:   cpf,
		Roles: roles,
	}
	require.NoError(t, user.SetPassword("Str0ng!Pass"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID uint, price string, stock int) *models.Product {
	t.Helper()

	p, err := decimal.NewFromString(price)
	require.NoError(t, err)

	product := &models.Product{
		SellerID:    sellerID,
		Name:        "Test Product",
		Description: "A product for tests",
		Price:       p,
		StockAmount: stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedAddress(t *testing.T, db *gorm.DB, userID uint) *models.Address {
	t.Helper()

	address := &models.Address{
		UserID:   userID,
		Cep:      "01310100",
		Street:   "Avenida Paulista",
		Number:   1000,
		District: "Bela Vista",
		City:     "São Paulo",
		State:    "SP",
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

func asActor(user *models.User) Actor {
	return Actor{ID: user.ID, Roles: user.Roles}
}
