// internal/services/rating_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
)

func newRatingFixture(t *testing.T) (*RatingService, *models.User, *models.Product) {
	db := newTestDB(t)
	svc := NewRatingService(db, NewAuthorizationService())
	user := seedUser(t, db, "rater@example.com", "52998224725", "user")
	product := seedProduct(t, db, user.ID, "30.00", 5)
	return svc, user, product
}

func TestRateProductUpdatesAggregate(t *testing.T) {
	svc, user, product := newRatingFixture(t)
	other := seedUser(t, svc.db, "other@example.com", "11144477735", "user")

	_, err := svc.RateProduct(user.ID, product.ID, &RatingRequest{Score: 5, Comment: "ótimo"})
	require.NoError(t, err)
	_, err = svc.RateProduct(other.ID, product.ID, &RatingRequest{Score: 2})
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, svc.db.First(&reloaded, product.ID).Error)
	assert.InDelta(t, 3.5, reloaded.Rating, 0.001)
	assert.Equal(t, int64(2), reloaded.RatingCount)
}

func TestRateProductOncePerUser(t *testing.T) {
	svc, user, product := newRatingFixture(t)

	_, err := svc.RateProduct(user.ID, product.ID, &RatingRequest{Score: 4})
	require.NoError(t, err)

	_, err = svc.RateProduct(user.ID, product.ID, &RatingRequest{Score: 1})

	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestRateProductScoreBounds(t *testing.T) {
	svc, user, product := newRatingFixture(t)

	var validation *apperrors.ValidationError

	_, err := svc.RateProduct(user.ID, product.ID, &RatingRequest{Score: 0})
	require.ErrorAs(t, err, &validation)

	_, err = svc.RateProduct(user.ID, product.ID, &RatingRequest{Score: 6})
	require.ErrorAs(t, err, &validation)
}

func TestUpdateRatingRecomputesAggregate(t *testing.T) {
	svc, user, product := newRatingFixture(t)

	rating, err := svc.RateProduct(user.ID, product.ID, &RatingRequest{Score: 5})
	require.NoError(t, err)

	_, err = svc.UpdateRating(asActor(user), rating.ID, &RatingRequest{Score: 1, Comment: "mudou"})
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, svc.db.First(&reloaded, product.ID).Error)
	assert.InDelta(t, 1.0, reloaded.Rating, 0.001)
}

func TestUpdateRatingForbiddenForStrangers(t *testing.T) {
	svc, user, product := newRatingFixture(t)
	stranger := seedUser(t, svc.db, "other@example.com", "11144477735", "user")

	rating, err := svc.RateProduct(user.ID, product.ID, &RatingRequest{Score: 5})
	require.NoError(t, err)

	_, err = svc.UpdateRating(asActor(stranger), rating.ID, &RatingRequest{Score: 1})

	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}

func TestDisableRatingRemovesItFromAggregate(t *testing.T) {
	svc, user, product := newRatingFixture(t)
	other := seedUser(t, svc.db, "other@example.com", "11144477735", "user")

	rating, err := svc.RateProduct(user.ID, product.ID, &RatingRequest{Score: 5})
	require.NoError(t, err)
	_, err = svc.RateProduct(other.ID, product.ID, &RatingRequest{Score: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DisableRating(asActor(user), rating.ID))

	var reloaded models.Product
	require.NoError(t, svc.db.First(&reloaded, product.ID).Error)
	assert.InDelta(t, 1.0, reloaded.Rating, 0.001)
	assert.Equal(t, int64(1), reloaded.RatingCount)
}
