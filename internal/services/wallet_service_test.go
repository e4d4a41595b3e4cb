package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// MockWalletRepository, WalletRepositoryInterface için sahte (mock) bir yapıdır.
type MockWalletRepository struct {
	mock.Mock
}

var _ interfaces.WalletRepositoryInterface = (*MockWalletRepository)(nil)

func (m *MockWalletRepository) EnsureAndLock(tx *sql.Tx, streamerID int) (*models.StreamerWallet, error) {
	args := m.Called(tx, streamerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StreamerWallet), args.Error(1)
}
func (m *MockWalletRepository) Credit(tx *sql.Tx, streamerID int, amount int64) error {
	args := m.Called(tx, streamerID, amount)
	return args.Error(0)
}
func (m *MockWalletRepository) Debit(tx *sql.Tx, streamerID int, amount int64) error {
	args := m.Called(tx, streamerID, amount)
	return args.Error(0)
}
func (m *MockWalletRepository) InsertEarning(tx *sql.Tx, streamerID, transactionID int, amount int64) error {
	args := m.Called(tx, streamerID, transactionID, amount)
	return args.Error(0)
}
func (m *MockWalletRepository) GetSummary(streamerID int) (*models.WalletSummary, error) {
	args := m.Called(streamerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletSummary), args.Error(1)
}

// MockStreamerRepository, StreamerRepositoryInterface için sahte (mock) bir yapıdır.
type MockStreamerRepository struct {
	mock.Mock
}

var _ interfaces.StreamerRepositoryInterface = (*MockStreamerRepository)(nil)

func (m *MockStreamerRepository) GetByID(id int) (*models.Streamer, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Streamer), args.Error(1)
}
func (m *MockStreamerRepository) ListLiveIDs() ([]int, error) {
	args := m.Called()
	return args.Get(0).([]int), args.Error(1)
}

// MockTransactionRepository, TransactionRepositoryInterface için sahte (mock) bir yapıdır.
type MockTransactionRepository struct {
	mock.Mock
}

var _ interfaces.TransactionRepositoryInterface = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) Insert(tx *sql.Tx, t *models.Transaction) (int, error) {
	args := m.Called(tx, t)
	return args.Int(0), args.Error(1)
}
func (m *MockTransactionRepository) InsertEntries(tx *sql.Tx, transactionID int, entries []*models.TransactionEntry) error {
	args := m.Called(tx, transactionID, entries)
	return args.Error(0)
}
func (m *MockTransactionRepository) GetByID(id int) (*models.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}
func (m *MockTransactionRepository) ListByUser(userID int, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}
func (m *MockTransactionRepository) ListEntries(transactionID int) ([]*models.TransactionEntry, error) {
	args := m.Called(transactionID)
	return args.Get(0).([]*models.TransactionEntry), args.Error(1)
}

// TestWalletService_RequestCashout_Insufficient, yetersiz değerli cashout
// talebinin hiçbir mutasyon olmadan reddedildiğini test eder.
func TestWalletService_RequestCashout_Insufficient(t *testing.T) {
	// Arrange
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockWalletRepo := new(MockWalletRepository)
	mockStreamerRepo := new(MockStreamerRepository)
	mockTxRepo := new(MockTransactionRepository)
	service := NewWalletService(mockWalletRepo, mockStreamerRepo, mockTxRepo, db)

	mockStreamerRepo.On("GetByID", 5).Return(&models.Streamer{ID: 5, UserID: 42}, nil)

	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	mockWalletRepo.On("EnsureAndLock", mock.Anything, 5).
		Return(&models.StreamerWallet{StreamerID: 5, AvailableValue: 10}, nil)

	// Act
	result, err := service.RequestCashout(&models.CashoutRequest{StreamerID: 5, Amount: 50})

	// Assert
	assert.ErrorIs(t, err, models.ErrInsufficientValue)
	assert.Nil(t, result)
	mockWalletRepo.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestWalletService_RequestCashout_Success, başarılı cashout talebinin
// değeri düşüp pending transaction yazdığını test eder.
func TestWalletService_RequestCashout_Success(t *testing.T) {
	// Arrange
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockWalletRepo := new(MockWalletRepository)
	mockStreamerRepo := new(MockStreamerRepository)
	mockTxRepo := new(MockTransactionRepository)
	service := NewWalletService(mockWalletRepo, mockStreamerRepo, mockTxRepo, db)

	mockStreamerRepo.On("GetByID", 5).Return(&models.Streamer{ID: 5, UserID: 42}, nil)

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	mockWalletRepo.On("EnsureAndLock", mock.Anything, 5).
		Return(&models.StreamerWallet{StreamerID: 5, AvailableValue: 100}, nil)
	mockWalletRepo.On("Debit", mock.Anything, 5, int64(40)).Return(nil)

	mockTxRepo.On("Insert", mock.Anything, mock.MatchedBy(func(tr *models.Transaction) bool {
		return tr.Kind == models.TxKindAdjust &&
			tr.Purpose == "cashout_request" &&
			tr.Status == models.StatusPending &&
			tr.Amount == 40
	})).Return(7, nil)
	mockTxRepo.On("InsertEntries", mock.Anything, 7, mock.Anything).Return(nil)

	// Act
	result, err := service.RequestCashout(&models.CashoutRequest{StreamerID: 5, Amount: 40})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 7, result.TransactionID)
	assert.Equal(t, int64(40), result.Amount)
	assert.Equal(t, int64(60), result.AvailableValue)
	mockWalletRepo.AssertExpectations(t)
	mockTxRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestWalletService_RequestCashout_InvalidAmount, sıfır/negatif miktarın
// reddedildiğini test eder.
func TestWalletService_RequestCashout_InvalidAmount(t *testing.T) {
	service := NewWalletService(nil, nil, nil, nil)

	result, err := service.RequestCashout(&models.CashoutRequest{StreamerID: 5, Amount: 0})

	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	assert.Nil(t, result)
}
