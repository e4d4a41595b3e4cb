package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// TestChestRepository_InsertParticipant_OpenOpening, açık açılışa katılımın
// satır ekleyip true döndüğünü test eder. Insert, açılış satırını kilitleyen
// status='open' guard'ından beslenir.
func TestChestRepository_InsertParticipant_OpenOpening(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewChestRepository(db)

	mock.ExpectExec("INSERT INTO chest_participants").
		WithArgs(9, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Act
	inserted, err := repo.InsertParticipant(9, 7)

	// Assert
	assert.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestChestRepository_InsertParticipant_ClosedOpening, kapalı açılışta
// guard'lı insert'in hiç satır eklemeden false döndüğünü test eder:
// kapalı açılışa payout'suz katılımcı satırı bırakılamaz.
func TestChestRepository_InsertParticipant_ClosedOpening(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewChestRepository(db)

	mock.ExpectExec("INSERT INTO chest_participants").
		WithArgs(9, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Act
	inserted, err := repo.InsertParticipant(9, 7)

	// Assert
	assert.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
