package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"backoffice/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestNextNumberStartsAtOne(t *testing.T) {
	db, mock, conn := newMockDB(t)
	defer conn.Close()

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(number\), 0\) FROM "entities"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	allocator := NewNumberAllocator(db)
	number, err := allocator.NextNumber(context.Background(), &model.Entity{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextNumberIncrementsMax(t *testing.T) {
	db, mock, conn := newMockDB(t)
	defer conn.Close()

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(number\), 0\) FROM "proposals"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))

	allocator := NewNumberAllocator(db)
	number, err := allocator.NextNumber(context.Background(), &model.Proposal{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextNumberPropagatesQueryError(t *testing.T) {
	db, mock, conn := newMockDB(t)
	defer conn.Close()

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(number\), 0\) FROM "entities"`).
		WillReturnError(errors.New("connection reset"))

	allocator := NewNumberAllocator(db)
	_, err := allocator.NextNumber(context.Background(), &model.Entity{})
	require.Error(t, err)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_entities_number"`)))
	assert.False(t, IsDuplicateKey(errors.New("connection reset")))
	assert.False(t, IsDuplicateKey(nil))
}
