package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRepositoryListByUserDefaultFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	cols := []string{"id", "user_id", "label", "address_line1", "address_line2", "city", "state", "zip_code",
		"country", "latitude", "longitude", "is_default", "delivery_instructions", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY is_default DESC, created_at DESC")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 1, "Home", "1 Main St", "", "Springfield", "IL", "62701", "US", 39.78, -89.65, true, "", now, now).
			AddRow(3, 1, "Work", "9 Elm St", "Floor 2", "Springfield", "IL", "62702", "US", nil, nil, false, "", now, now))

	addresses, err := NewAddressRepository(db).ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.True(t, addresses[0].IsDefault)
	require.NotNil(t, addresses[0].Latitude)
	assert.InDelta(t, 39.78, *addresses[0].Latitude, 0.0001)
	assert.Nil(t, addresses[1].Longitude)
}

func TestAddressRepositoryClearDefault(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE addresses SET is_default = false WHERE user_id = ?")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewAddressRepository(db).ClearDefault(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryRatingsByProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT rating FROM reviews WHERE product_id = ?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(3).AddRow(4).AddRow(5))

	ratings, err := NewReviewRepository(db).RatingsByProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5}, ratings)
}
