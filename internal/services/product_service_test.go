// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
	"github.com/lojinha/loja-backend/internal/utils"
)

func newProductFixture(t *testing.T) (*ProductService, *models.User) {
	db := newTestDB(t)
	svc := NewProductService(db, NewAuthorizationService())
	seller := seedUser(t, db, "seller@example.com", "52998224725", "user|seller")
	return svc, seller
}

func TestCreateProductRequiresSellerRole(t *testing.T) {
	svc, seller := newProductFixture(t)
	buyer := seedUser(t, svc.db, "buyer@example.com", "11144477735", "user")

	req := &CreateProductRequest{
		Name:        "Caneca",
		Price:       decimal.NewFromInt(25),
		StockAmount: 3,
	}

	_, err := svc.CreateProduct(asActor(buyer), req)
	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	product, err := svc.CreateProduct(asActor(seller), req)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, product.SellerID)
	assert.Equal(t, 3, product.StockAmount)
}

func TestCreateProductRejectsNonPositivePrice(t *testing.T) {
	svc, seller := newProductFixture(t)

	_, err := svc.CreateProduct(asActor(seller), &CreateProductRequest{
		Name:  "Grátis",
		Price: decimal.Zero,
	})

	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateProductOwnership(t *testing.T) {
	svc, seller := newProductFixture(t)
	stranger := seedUser(t, svc.db, "other@example.com", "11144477735", "user|seller")
	product := seedProduct(t, svc.db, seller.ID, "25.00", 3)

	name := "Caneca Nova"
	_, err := svc.UpdateProduct(asActor(stranger), product.ID, &UpdateProductRequest{Name: &name})
	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	updated, err := svc.UpdateProduct(asActor(seller), product.ID, &UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Caneca Nova", updated.Name)
}

func TestListProductsSearchAndFilters(t *testing.T) {
	svc, seller := newProductFixture(t)

	mug := seedProduct(t, svc.db, seller.ID, "25.00", 3)
	require.NoError(t, svc.db.Model(mug).Update("name", "Caneca de Porcelana").Error)
	shirt := seedProduct(t, svc.db, seller.ID, "80.00", 0)
	require.NoError(t, svc.db.Model(shirt).Update("name", "Camiseta").Error)

	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}

	// Text search matches case-insensitively
	params.Search = "caneca"
	products, total, err := svc.ListProducts(params, ProductSearchParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, mug.ID, products[0].ID)

	// In-stock filter hides the sold-out shirt
	params.Search = ""
	products, _, err = svc.ListProducts(params, ProductSearchParams{InStock: true})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, mug.ID, products[0].ID)

	// Disabled products disappear from listings
	require.NoError(t, svc.DisableProduct(asActor(seller), mug.ID))
	_, total, err = svc.ListProducts(params, ProductSearchParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestProductCategoryAssignment(t *testing.T) {
	svc, seller := newProductFixture(t)

	category := &models.Category{Name: "Cozinha"}
	require.NoError(t, svc.db.Create(category).Error)

	product, err := svc.CreateProduct(asActor(seller), &CreateProductRequest{
		Name:        "Caneca",
		Price:       decimal.NewFromInt(25),
		StockAmount: 3,
		CategoryIDs: []uint{category.ID},
	})
	require.NoError(t, err)
	require.Len(t, product.Categories, 1)
	assert.Equal(t, "Cozinha", product.Categories[0].Name)

	// Unknown category fails the whole create
	_, err = svc.CreateProduct(asActor(seller), &CreateProductRequest{
		Name:        "Prato",
		Price:       decimal.NewFromInt(40),
		CategoryIDs: []uint{9999},
	})
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
