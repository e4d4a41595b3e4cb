package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/models"
	"github.com/rubisplatform/rubis-api/internal/repository"
)

// MockLotRepository, LotRepositoryInterface için sahte (mock) bir yapıdır.
type MockLotRepository struct {
	mock.Mock
}

var _ interfaces.LotRepositoryInterface = (*MockLotRepository)(nil)

func (m *MockLotRepository) GetLockedBalance(tx *sql.Tx, userID int, order repository.LotOrder) (*models.LockedBalance, error) {
	args := m.Called(tx, userID, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LockedBalance), args.Error(1)
}
func (m *MockLotRepository) InsertLot(tx *sql.Tx, lot *models.Lot) (int, error) {
	args := m.Called(tx, lot)
	return args.Int(0), args.Error(1)
}
func (m *MockLotRepository) DecrementLot(tx *sql.Tx, lotID int, amount int64) error {
	args := m.Called(tx, lotID, amount)
	return args.Error(0)
}
func (m *MockLotRepository) AdjustCachedBalance(tx *sql.Tx, userID int, delta int64) error {
	args := m.Called(tx, userID, delta)
	return args.Error(0)
}
func (m *MockLotRepository) GetBalance(userID int) (*models.Balance, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}
func (m *MockLotRepository) ListLots(userID int, limit, offset int) ([]*models.Lot, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]*models.Lot), args.Error(1)
}

// TestPlanConsumption_WeightedOrder, lot sırasına sadık greedy tüketimi test eder.
// Destek harcamasında liste yüksek ağırlıktan düşüğe sıralı gelir: önce
// tam ağırlıklı 5, sonra düşük ağırlıklı lottan 3 alınmalıdır.
func TestPlanConsumption_WeightedOrder(t *testing.T) {
	// Arrange
	lots := []*models.Lot{
		{ID: 1, WeightBp: models.FullWeightBp, AmountRemaining: 5},
		{ID: 2, WeightBp: 3000, AmountRemaining: 10},
	}

	// Act
	plan, err := planConsumption(lots, 8)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, plan, 2)
	assert.Equal(t, 1, plan[0].LotID)
	assert.Equal(t, int64(5), plan[0].Amount)
	assert.Equal(t, 2, plan[1].LotID)
	assert.Equal(t, int64(3), plan[1].Amount)
}

// TestPlanConsumption_Insufficient, toplam kalan yetmediğinde kısmi plan
// üretilmediğini test eder.
func TestPlanConsumption_Insufficient(t *testing.T) {
	// Arrange
	lots := []*models.Lot{
		{ID: 1, WeightBp: models.FullWeightBp, AmountRemaining: 5},
	}

	// Act
	plan, err := planConsumption(lots, 8)

	// Assert
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	assert.Nil(t, plan)
}

// TestPlanConsumption_ExactAmount, miktarın tek lotu tam bitirdiği durumu test eder.
func TestPlanConsumption_ExactAmount(t *testing.T) {
	lots := []*models.Lot{
		{ID: 7, WeightBp: 5000, AmountRemaining: 8},
		{ID: 8, WeightBp: 2000, AmountRemaining: 4},
	}

	plan, err := planConsumption(lots, 8)

	assert.NoError(t, err)
	assert.Len(t, plan, 1)
	assert.Equal(t, int64(8), plan[0].Amount)
}

// TestWeightedValue_FloorsResult, support value'nun karışım ağırlığına göre
// hesaplanıp aşağı yuvarlandığını test eder: 5*10000 + 3*3000 = 59000 → 5.
func TestWeightedValue_FloorsResult(t *testing.T) {
	plan := []*models.ConsumedLot{
		{WeightBp: models.FullWeightBp, Amount: 5},
		{WeightBp: 3000, Amount: 3},
	}

	assert.Equal(t, int64(5), weightedValue(plan))
}

// TestWeightedValue_ZeroWeight, sıfır ağırlıklı lotların değer üretmediğini test eder.
func TestWeightedValue_ZeroWeight(t *testing.T) {
	plan := []*models.ConsumedLot{
		{WeightBp: 0, Amount: 100},
	}

	assert.Equal(t, int64(0), weightedValue(plan))
}

// TestSplitSupport, 90/10 bölüşümünü ve küsuratın platforma kaldığını test eder.
func TestSplitSupport(t *testing.T) {
	beneficiary, platform := splitSupport(100, 90)
	assert.Equal(t, int64(90), beneficiary)
	assert.Equal(t, int64(10), platform)

	// Küsurat: 7'nin %90'ı 6.3 → beneficiary 6, platform 1
	beneficiary, platform = splitSupport(7, 90)
	assert.Equal(t, int64(6), beneficiary)
	assert.Equal(t, int64(1), platform)
}

// TestValidateMint, mint girdi doğrulamasını test eder.
func TestValidateMint(t *testing.T) {
	assert.ErrorIs(t, validateMint(&models.MintRequest{UserID: 1, Origin: models.OriginPurchase, Amount: 0}), models.ErrInvalidAmount)
	assert.ErrorIs(t, validateMint(&models.MintRequest{UserID: 1, Origin: models.OriginPurchase, Amount: 10, WeightBp: 10001}), models.ErrInvalidWeight)
	assert.Error(t, validateMint(&models.MintRequest{UserID: 1, Amount: 10}))
	assert.NoError(t, validateMint(&models.MintRequest{UserID: 1, Origin: models.OriginPurchase, Amount: 10, WeightBp: 5000}))
}

// TestValidateSpend_SupportRequiresBeneficiary, destek harcamasının yayıncı
// olmadan reddedildiğini test eder.
func TestValidateSpend_SupportRequiresBeneficiary(t *testing.T) {
	err := validateSpend(&models.SpendRequest{
		UserID:    1,
		Amount:    10,
		SpendKind: models.SpendKindSupport,
	})

	assert.ErrorIs(t, err, models.ErrBeneficiaryRequired)
}

// TestValidateSpend_SinkWithoutBeneficiary, sink harcamasının yayıncısız
// geçerli olduğunu test eder.
func TestValidateSpend_SinkWithoutBeneficiary(t *testing.T) {
	err := validateSpend(&models.SpendRequest{
		UserID:    1,
		Amount:    10,
		SpendKind: models.SpendKindSink,
	})

	assert.NoError(t, err)
}

// TestValidateSpend_UnknownKind, bilinmeyen harcama türünün reddedildiğini test eder.
func TestValidateSpend_UnknownKind(t *testing.T) {
	err := validateSpend(&models.SpendRequest{
		UserID:    1,
		Amount:    10,
		SpendKind: "transfer",
	})

	assert.Error(t, err)
}

// TestLedgerService_GetBalance_Success, kilitsiz bakiye okumasını test eder.
func TestLedgerService_GetBalance_Success(t *testing.T) {
	// Arrange
	mockLotRepo := new(MockLotRepository)
	service := NewLedgerService(mockLotRepo, nil, nil, nil, nil, map[string]int{}, 90)

	expectedBalance := &models.Balance{UserID: 1, Amount: 42}
	mockLotRepo.On("GetBalance", 1).Return(expectedBalance, nil)

	// Act
	result, err := service.GetBalance(1)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, expectedBalance, result)
	mockLotRepo.AssertExpectations(t)
}

// TestLedgerService_GetBalance_Error, repository hatasının yukarı taşındığını test eder.
func TestLedgerService_GetBalance_Error(t *testing.T) {
	// Arrange
	mockLotRepo := new(MockLotRepository)
	service := NewLedgerService(mockLotRepo, nil, nil, nil, nil, map[string]int{}, 90)

	mockLotRepo.On("GetBalance", 1).Return(nil, errors.New("veritabanı hatası"))

	// Act
	result, err := service.GetBalance(1)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	mockLotRepo.AssertExpectations(t)
}

// TestLedgerService_Mint_ResolvesWeightFromOrigin, ağırlığı tabloya
// bırakan mint'in origin_weights'ten çözüldüğünü test eder.
func TestLedgerService_Mint_ResolvesWeightFromOrigin(t *testing.T) {
	// Arrange
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockLotRepo := new(MockLotRepository)
	mockTxRepo := new(MockTransactionRepository)
	service := NewLedgerService(mockLotRepo, mockTxRepo, nil, nil, db,
		map[string]int{models.OriginPurchase: models.FullWeightBp}, 90)

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	mockLotRepo.On("GetLockedBalance", mock.Anything, 1, repository.LotOrderWeightDesc).
		Return(&models.LockedBalance{}, nil)
	mockLotRepo.On("InsertLot", mock.Anything, mock.MatchedBy(func(lot *models.Lot) bool {
		return lot.WeightBp == models.FullWeightBp
	})).Return(3, nil)
	mockLotRepo.On("AdjustCachedBalance", mock.Anything, 1, int64(50)).Return(nil)
	mockTxRepo.On("Insert", mock.Anything, mock.Anything).Return(9, nil)
	mockTxRepo.On("InsertEntries", mock.Anything, 9, mock.Anything).Return(nil)

	// Act
	result, err := service.Mint(&models.MintRequest{
		UserID:   1,
		Origin:   models.OriginPurchase,
		Amount:   50,
		WeightBp: models.WeightBpFromOrigin,
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 9, result.TransactionID)
	assert.Equal(t, 3, result.LotID)
	mockLotRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestLedgerService_Mint_ExplicitZeroWeightPreserved, açıkça sıfır verilen
// ağırlığın tablo değeriyle ezilmediğini test eder.
func TestLedgerService_Mint_ExplicitZeroWeightPreserved(t *testing.T) {
	// Arrange
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockLotRepo := new(MockLotRepository)
	mockTxRepo := new(MockTransactionRepository)
	service := NewLedgerService(mockLotRepo, mockTxRepo, nil, nil, db,
		map[string]int{models.OriginAdjust: models.FullWeightBp}, 90)

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	mockLotRepo.On("GetLockedBalance", mock.Anything, 1, repository.LotOrderWeightDesc).
		Return(&models.LockedBalance{}, nil)
	mockLotRepo.On("InsertLot", mock.Anything, mock.MatchedBy(func(lot *models.Lot) bool {
		return lot.WeightBp == 0
	})).Return(4, nil)
	mockLotRepo.On("AdjustCachedBalance", mock.Anything, 1, int64(10)).Return(nil)
	mockTxRepo.On("Insert", mock.Anything, mock.Anything).Return(12, nil)
	mockTxRepo.On("InsertEntries", mock.Anything, 12, mock.Anything).Return(nil)

	// Act
	_, err = service.Mint(&models.MintRequest{
		UserID:   1,
		Origin:   models.OriginAdjust,
		Amount:   10,
		WeightBp: 0,
	})

	// Assert
	assert.NoError(t, err)
	mockLotRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestLedgerService_Spend_SupportEntriesBalance, karışık ağırlıklı destek
// harcamasında entry delta'larının sıfıra toplandığını ve cüzdanın
// beneficiary payı kadar alacaklandığını test eder.
// 50 @10000bp + 50 @5000bp -> supportValue 75 -> 67 beneficiary / 8
// platform / 25 burn.
func TestLedgerService_Spend_SupportEntriesBalance(t *testing.T) {
	// Arrange
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockLotRepo := new(MockLotRepository)
	mockTxRepo := new(MockTransactionRepository)
	mockWalletRepo := new(MockWalletRepository)
	mockStreamerRepo := new(MockStreamerRepository)
	service := NewLedgerService(mockLotRepo, mockTxRepo, mockWalletRepo, mockStreamerRepo, db, map[string]int{}, 90)

	streamerID := 5
	mockStreamerRepo.On("GetByID", 5).Return(&models.Streamer{ID: 5, UserID: 42}, nil)

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	mockLotRepo.On("GetLockedBalance", mock.Anything, 1, repository.LotOrderWeightDesc).
		Return(&models.LockedBalance{CachedTotal: 100, Lots: []*models.Lot{
			{ID: 1, WeightBp: models.FullWeightBp, AmountRemaining: 50},
			{ID: 2, WeightBp: 5000, AmountRemaining: 50},
		}}, nil)
	mockLotRepo.On("DecrementLot", mock.Anything, 1, int64(50)).Return(nil)
	mockLotRepo.On("DecrementLot", mock.Anything, 2, int64(50)).Return(nil)
	mockLotRepo.On("AdjustCachedBalance", mock.Anything, 1, int64(-100)).Return(nil)

	mockTxRepo.On("Insert", mock.Anything, mock.MatchedBy(func(tr *models.Transaction) bool {
		return tr.Kind == models.TxKindSpend &&
			tr.SupportValue == 75 &&
			tr.BeneficiaryShare == 67 &&
			tr.PlatformShare == 8 &&
			tr.BurnShare == 25
	})).Return(11, nil)
	mockTxRepo.On("InsertEntries", mock.Anything, 11, mock.MatchedBy(func(entries []*models.TransactionEntry) bool {
		var sum int64
		for _, e := range entries {
			sum += e.Delta
		}
		return len(entries) == 4 && sum == 0 &&
			entries[0].Delta == -100 &&
			entries[1].Delta == 67 && *entries[1].UserID == 42
	})).Return(nil)

	mockWalletRepo.On("EnsureAndLock", mock.Anything, 5).
		Return(&models.StreamerWallet{StreamerID: 5}, nil)
	mockWalletRepo.On("Credit", mock.Anything, 5, int64(67)).Return(nil)
	mockWalletRepo.On("InsertEarning", mock.Anything, 5, 11, int64(67)).Return(nil)

	// Act
	result, err := service.Spend(&models.SpendRequest{
		UserID:        1,
		Amount:        100,
		SpendKind:     models.SpendKindSupport,
		Purpose:       "gift",
		BeneficiaryID: &streamerID,
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(75), result.SupportValue)
	assert.Equal(t, int64(67), result.BeneficiaryShare)
	assert.Equal(t, int64(8), result.PlatformShare)
	mockTxRepo.AssertExpectations(t)
	mockWalletRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestLedgerService_Spend_SinkMergesBreakdownIntoMeta, çağıranın verdiği
// meta'nın korunup tüketim breakdown'ının yanına eklendiğini test eder.
func TestLedgerService_Spend_SinkMergesBreakdownIntoMeta(t *testing.T) {
	// Arrange
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockLotRepo := new(MockLotRepository)
	mockTxRepo := new(MockTransactionRepository)
	service := NewLedgerService(mockLotRepo, mockTxRepo, nil, nil, db, map[string]int{}, 90)

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	mockLotRepo.On("GetLockedBalance", mock.Anything, 1, repository.LotOrderWeightAsc).
		Return(&models.LockedBalance{CachedTotal: 40, Lots: []*models.Lot{
			{ID: 3, WeightBp: 2000, AmountRemaining: 40},
		}}, nil)
	mockLotRepo.On("DecrementLot", mock.Anything, 3, int64(40)).Return(nil)
	mockLotRepo.On("AdjustCachedBalance", mock.Anything, 1, int64(-40)).Return(nil)

	mockTxRepo.On("Insert", mock.Anything, mock.MatchedBy(func(tr *models.Transaction) bool {
		var meta map[string]json.RawMessage
		if err := json.Unmarshal([]byte(tr.Meta), &meta); err != nil {
			return false
		}
		_, hasStreamer := meta["streamer_id"]
		_, hasBreakdown := meta["breakdown"]
		return tr.BurnShare == 40 && hasStreamer && hasBreakdown
	})).Return(13, nil)
	mockTxRepo.On("InsertEntries", mock.Anything, 13, mock.MatchedBy(func(entries []*models.TransactionEntry) bool {
		return len(entries) == 2 && entries[0].Delta+entries[1].Delta == 0
	})).Return(nil)

	// Act
	_, err = service.Spend(&models.SpendRequest{
		UserID:    1,
		Amount:    40,
		SpendKind: models.SpendKindSink,
		Purpose:   models.OriginChestDeposit,
		Meta:      `{"streamer_id":5}`,
	})

	// Assert
	assert.NoError(t, err)
	mockTxRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
