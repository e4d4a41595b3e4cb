package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rubisplatform/rubis-api/internal/config"
	"github.com/rubisplatform/rubis-api/internal/events"
	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/models"
	"github.com/rubisplatform/rubis-api/internal/repository"
)

// TestChestPool_WeightedSum, havuz değerinin ağırlıklı hesaplandığını test eder:
// 100 nominal @%90 + 15 nominal @%20 = 90 + 3 = 93.
func TestChestPool_WeightedSum(t *testing.T) {
	lots := []*models.ChestLot{
		{WeightBp: 9000, AmountRemaining: 100},
		{WeightBp: 2000, AmountRemaining: 15},
	}

	assert.Equal(t, int64(93), chestPool(lots))
}

// TestChestPool_Empty, boş havuzun sıfır değer ürettiğini test eder.
func TestChestPool_Empty(t *testing.T) {
	assert.Equal(t, int64(0), chestPool(nil))
}

// TestConsumeChestValue_TakesMinimumNominal, hedef değeri karşılayan minimum
// nominal'in tüketildiğini ve artanın lot'ta kaldığını test eder.
func TestConsumeChestValue_TakesMinimumNominal(t *testing.T) {
	// Arrange: 100 nominal @%90 → 90 değer mevcut, hedef 45
	lots := []*models.ChestLot{
		{ID: 1, Origin: models.OriginChestDeposit, WeightBp: 9000, AmountRemaining: 100},
	}

	// Act
	plan := consumeChestValue(lots, 45)

	// Assert: 45 değer için ceil(45*10000/9000) = 50 nominal gerekir
	assert.Len(t, plan, 1)
	assert.Equal(t, int64(50), plan[0].Amount)
}

// TestConsumeChestValue_SpansLots, hedefin birden fazla lota yayıldığını test eder.
func TestConsumeChestValue_SpansLots(t *testing.T) {
	lots := []*models.ChestLot{
		{ID: 1, WeightBp: 9000, AmountRemaining: 10}, // 9 değer taşır
		{ID: 2, WeightBp: 2000, AmountRemaining: 50}, // 10 değer taşır
	}

	plan := consumeChestValue(lots, 12)

	// İlk lot tamamen (10 nominal, 9 değer), ikinciden ceil(3*10000/2000) = 15 nominal
	assert.Len(t, plan, 2)
	assert.Equal(t, int64(10), plan[0].Amount)
	assert.Equal(t, int64(15), plan[1].Amount)
}

// TestConsumeChestValue_SkipsZeroWeight, sıfır ağırlıklı lotların atlandığını test eder.
func TestConsumeChestValue_SkipsZeroWeight(t *testing.T) {
	lots := []*models.ChestLot{
		{ID: 1, WeightBp: 0, AmountRemaining: 1000},
		{ID: 2, WeightBp: models.FullWeightBp, AmountRemaining: 10},
	}

	plan := consumeChestValue(lots, 5)

	assert.Len(t, plan, 1)
	assert.Equal(t, 2, plan[0].LotID)
	assert.Equal(t, int64(5), plan[0].Amount)
}

// TestAccrueMinutes_CarryOver, artan dakikaların tick'ler arasında
// taşındığını ve kaybolmadığını test eder.
func TestAccrueMinutes_CarryOver(t *testing.T) {
	// 3 carry + 4 yeni = 7 dakika → 1 blok (3 rubis), 2 dakika artar
	minted, carry := accrueMinutes(3, 4)
	assert.Equal(t, int64(3), minted)
	assert.Equal(t, 2, carry)

	// Bir sonraki tick: 2 carry + 3 yeni = 5 → tam blok, carry sıfırlanır
	minted, carry = accrueMinutes(carry, 3)
	assert.Equal(t, int64(3), minted)
	assert.Equal(t, 0, carry)
}

// TestAccrueMinutes_BelowBlock, blok dolmadan basım olmadığını test eder.
func TestAccrueMinutes_BelowBlock(t *testing.T) {
	minted, carry := accrueMinutes(0, 4)
	assert.Equal(t, int64(0), minted)
	assert.Equal(t, 4, carry)
}

// TestAccrueMinutes_MultipleBlocks, birden fazla bloğun tek tick'te
// basılabildiğini test eder.
func TestAccrueMinutes_MultipleBlocks(t *testing.T) {
	minted, carry := accrueMinutes(1, 12)
	assert.Equal(t, int64(6), minted) // 13 dakika → 2 blok
	assert.Equal(t, 3, carry)
}

// TestAutoMintCeiling, chest_auto nominal'inin toplam havuzun %20'sini
// aşamadığını test eder.
func TestAutoMintCeiling(t *testing.T) {
	// 100 deposit, 0 auto → tavan 25 (25/(100+25) = %20)
	assert.Equal(t, int64(25), autoMintCeiling(100, 0))

	// Tavan dolmuş: 100 deposit, 25 auto → 0
	assert.Equal(t, int64(0), autoMintCeiling(100, 25))

	// Tavan aşılmışsa negatif dönmez
	assert.Equal(t, int64(0), autoMintCeiling(100, 40))

	// Deposit yoksa auto basılamaz
	assert.Equal(t, int64(0), autoMintCeiling(0, 0))
}

// MockChestRepository, ChestRepositoryInterface için sahte (mock) bir yapıdır.
type MockChestRepository struct {
	mock.Mock
}

var _ interfaces.ChestRepositoryInterface = (*MockChestRepository)(nil)

func (m *MockChestRepository) InsertOpening(o *models.ChestOpening) (*models.ChestOpening, error) {
	args := m.Called(o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChestOpening), args.Error(1)
}
func (m *MockChestRepository) GetOpening(id int) (*models.ChestOpening, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChestOpening), args.Error(1)
}
func (m *MockChestRepository) LockOpening(tx *sql.Tx, id int) (*models.ChestOpening, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChestOpening), args.Error(1)
}
func (m *MockChestRepository) CloseOpening(tx *sql.Tx, id int) (bool, error) {
	args := m.Called(tx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockChestRepository) CancelOpening(tx *sql.Tx, id int) (bool, error) {
	args := m.Called(tx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockChestRepository) ListExpiredOpenIDs(now time.Time, limit int) ([]int, error) {
	args := m.Called(now, limit)
	return args.Get(0).([]int), args.Error(1)
}
func (m *MockChestRepository) InsertParticipant(openingID, userID int) (bool, error) {
	args := m.Called(openingID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockChestRepository) ListParticipantIDs(tx *sql.Tx, openingID int) ([]int, error) {
	args := m.Called(tx, openingID)
	return args.Get(0).([]int), args.Error(1)
}
func (m *MockChestRepository) GetLockedChestLots(tx *sql.Tx, streamerID int, order repository.LotOrder) ([]*models.ChestLot, error) {
	args := m.Called(tx, streamerID, order)
	return args.Get(0).([]*models.ChestLot), args.Error(1)
}
func (m *MockChestRepository) InsertChestLot(tx *sql.Tx, lot *models.ChestLot) (int, error) {
	args := m.Called(tx, lot)
	return args.Int(0), args.Error(1)
}
func (m *MockChestRepository) DecrementChestLot(tx *sql.Tx, lotID int, amount int64) error {
	args := m.Called(tx, lotID, amount)
	return args.Error(0)
}
func (m *MockChestRepository) ChestNominalTotals(tx *sql.Tx, streamerID int) (int64, int64, error) {
	args := m.Called(tx, streamerID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}
func (m *MockChestRepository) InsertPayout(tx *sql.Tx, p *models.ChestPayout) error {
	args := m.Called(tx, p)
	return args.Error(0)
}
func (m *MockChestRepository) LockAutoMintState(tx *sql.Tx, streamerID int) (*models.AutoMintState, error) {
	args := m.Called(tx, streamerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AutoMintState), args.Error(1)
}
func (m *MockChestRepository) InsertAutoMintState(tx *sql.Tx, streamerID int, lastBucketTs time.Time) error {
	args := m.Called(tx, streamerID, lastBucketTs)
	return args.Error(0)
}
func (m *MockChestRepository) UpdateAutoMintState(tx *sql.Tx, streamerID int, lastBucketTs time.Time, carryMinutes int) error {
	args := m.Called(tx, streamerID, lastBucketTs, carryMinutes)
	return args.Error(0)
}
func (m *MockChestRepository) CountViewerMinutes(tx *sql.Tx, streamerID int, from, to time.Time) (int, error) {
	args := m.Called(tx, streamerID, from, to)
	return args.Int(0), args.Error(1)
}

// noopPublisher test içinde event teslimini yutar
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// TestChestService_Settle_SecondCallAlreadyDone, aynı açılış için ikinci
// settlement çağrısının payout üretmeden AlreadyDone döndüğünü test eder:
// open -> closed geçişini yalnızca ilk çağrı kazanır.
func TestChestService_Settle_SecondCallAlreadyDone(t *testing.T) {
	// Arrange
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockChestRepo := new(MockChestRepository)
	mockLedger := new(MockLedgerService)
	service := NewChestService(mockChestRepo, nil, mockLedger, db, &config.Config{}, noopPublisher{})

	// İlk çağrı: geçişi kazanır, iki katılımcıya dağıtır
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()
	mockChestRepo.On("LockOpening", mock.Anything, 9).
		Return(&models.ChestOpening{ID: 9, StreamerID: 5, Status: models.OpeningStatusOpen}, nil).Once()
	mockChestRepo.On("CloseOpening", mock.Anything, 9).Return(true, nil).Once()
	mockChestRepo.On("ListParticipantIDs", mock.Anything, 9).Return([]int{7, 8}, nil).Once()
	mockChestRepo.On("GetLockedChestLots", mock.Anything, 5, repository.LotOrderWeightDesc).
		Return([]*models.ChestLot{
			{ID: 1, Origin: models.OriginChestDeposit, WeightBp: models.FullWeightBp, AmountRemaining: 100},
		}, nil).Once()
	mockChestRepo.On("DecrementChestLot", mock.Anything, 1, int64(100)).Return(nil).Once()
	mockLedger.On("MintTx", mock.Anything, mock.MatchedBy(func(req *models.MintRequest) bool {
		return req.Origin == models.OriginChestPayout && req.Amount == 50 && req.WeightBp == models.FullWeightBp
	})).Return(&models.MintResult{TransactionID: 21}, nil).Twice()
	mockChestRepo.On("InsertPayout", mock.Anything, mock.Anything).Return(nil).Twice()

	// İkinci çağrı: geçişi kaybeder
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()
	mockChestRepo.On("LockOpening", mock.Anything, 9).
		Return(&models.ChestOpening{ID: 9, StreamerID: 5, Status: models.OpeningStatusClosed}, nil).Once()
	mockChestRepo.On("CloseOpening", mock.Anything, 9).Return(false, nil).Once()

	// Act
	first, err := service.Settle(9)
	assert.NoError(t, err)
	second, err := service.Settle(9)

	// Assert
	assert.NoError(t, err)
	assert.False(t, first.AlreadyDone)
	assert.Equal(t, int64(50), first.PerHead)
	assert.Len(t, first.Payouts, 2)
	assert.True(t, second.AlreadyDone)
	assert.Empty(t, second.Payouts)
	mockLedger.AssertNumberOfCalls(t, "MintTx", 2)
	mockChestRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// TestChestService_Join_ClosedDuringInsert, statü kontrolü ile insert
// arasında settlement araya girdiğinde katılımın ErrOpeningClosed ile
// reddedildiğini test eder; insert kapalı açılışa satır bırakmaz.
func TestChestService_Join_ClosedDuringInsert(t *testing.T) {
	// Arrange
	mockChestRepo := new(MockChestRepository)
	service := NewChestService(mockChestRepo, nil, nil, nil, &config.Config{}, noopPublisher{})

	open := &models.ChestOpening{ID: 9, Status: models.OpeningStatusOpen, ClosesAt: time.Now().Add(time.Minute)}
	closed := &models.ChestOpening{ID: 9, Status: models.OpeningStatusClosed, ClosesAt: open.ClosesAt}

	mockChestRepo.On("GetOpening", 9).Return(open, nil).Once()
	mockChestRepo.On("InsertParticipant", 9, 7).Return(false, nil).Once()
	mockChestRepo.On("GetOpening", 9).Return(closed, nil).Once()

	// Act
	err := service.Join(9, 7)

	// Assert
	assert.ErrorIs(t, err, models.ErrOpeningClosed)
	mockChestRepo.AssertExpectations(t)
}

// TestChestService_Join_DuplicateIsNoop, tekrar katılımın hata olmadığını test eder.
func TestChestService_Join_DuplicateIsNoop(t *testing.T) {
	// Arrange
	mockChestRepo := new(MockChestRepository)
	service := NewChestService(mockChestRepo, nil, nil, nil, &config.Config{}, noopPublisher{})

	open := &models.ChestOpening{ID: 9, Status: models.OpeningStatusOpen, ClosesAt: time.Now().Add(time.Minute)}

	mockChestRepo.On("GetOpening", 9).Return(open, nil).Twice()
	mockChestRepo.On("InsertParticipant", 9, 7).Return(false, nil).Once()

	// Act
	err := service.Join(9, 7)

	// Assert
	assert.NoError(t, err)
	mockChestRepo.AssertExpectations(t)
}
