package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/rubisplatform/rubis-api/internal/models"
)

// TestLotRepository_GetLockedBalance_Success, bakiye ve lot'ların kilitli
// okunmasını test eder. Lot listesi SQL tarafında sıralı döner.
func TestLotRepository_GetLockedBalance_Success(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewLotRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT amount FROM balances").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"amount"}).AddRow(15))
	mock.ExpectQuery("SELECT id, owner_id, origin, weight_bp, amount_total, amount_remaining").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "origin", "weight_bp", "amount_total", "amount_remaining", "meta", "created_at",
		}).
			AddRow(10, 1, models.OriginPurchase, 10000, 5, 5, "", now).
			AddRow(11, 1, models.OriginDailyBonus, 3000, 10, 10, "", now))

	tx, err := db.Begin()
	assert.NoError(t, err)

	// Act
	balance, err := repo.GetLockedBalance(tx, 1, LotOrderWeightDesc)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(15), balance.CachedTotal)
	assert.Len(t, balance.Lots, 2)
	assert.Equal(t, 10, balance.Lots[0].ID)
	assert.Equal(t, 10000, balance.Lots[0].WeightBp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLotRepository_GetLockedBalance_UserNotFound, bakiye satırı olmayan
// kullanıcı için ErrUserNotFound döndüğünü test eder.
func TestLotRepository_GetLockedBalance_UserNotFound(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewLotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT amount FROM balances").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"amount"}))

	tx, err := db.Begin()
	assert.NoError(t, err)

	// Act
	balance, err := repo.GetLockedBalance(tx, 99, LotOrderWeightDesc)

	// Assert
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.Nil(t, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLotRepository_DecrementLot_RaceDetected, kalan miktar plan ile
// uyuşmadığında (0 satır etkilendi) hata döndüğünü test eder.
func TestLotRepository_DecrementLot_RaceDetected(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewLotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE lots").
		WithArgs(10, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	assert.NoError(t, err)

	// Act
	err = repo.DecrementLot(tx, 10, 5)

	// Assert
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLotRepository_DecrementLot_Success, normal azaltmayı test eder.
func TestLotRepository_DecrementLot_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewLotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE lots").
		WithArgs(10, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	assert.NoError(t, err)

	err = repo.DecrementLot(tx, 10, 5)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLotRepository_AdjustCachedBalance_UserNotFound, olmayan kullanıcının
// bakiyesinin güncellenemediğini test eder.
func TestLotRepository_AdjustCachedBalance_UserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewLotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balances").
		WithArgs(99, int64(-3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	assert.NoError(t, err)

	err = repo.AdjustCachedBalance(tx, 99, -3)

	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
