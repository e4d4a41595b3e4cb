// internal/interfaces/repository.go
package interfaces

import (
	"database/sql"
	"time"

	"github.com/rubisplatform/rubis-api/internal/models"
	"github.com/rubisplatform/rubis-api/internal/repository"
)

// LotRepositoryInterface Ledger Store erişimi için interface.
// Kilit isteyen metodlar açık bir *sql.Tx ile çağrılmalıdır.
type LotRepositoryInterface interface {
	// GetLockedBalance bakiye satırını ve kalan lot'ları FOR UPDATE ile kilitler
	GetLockedBalance(tx *sql.Tx, userID int, order repository.LotOrder) (*models.LockedBalance, error)

	// InsertLot yeni lot oluşturur
	InsertLot(tx *sql.Tx, lot *models.Lot) (int, error)

	// DecrementLot lot kalanını azaltır
	DecrementLot(tx *sql.Tx, lotID int, amount int64) error

	// AdjustCachedBalance cache'lenmiş toplamı delta kadar değiştirir
	AdjustCachedBalance(tx *sql.Tx, userID int, delta int64) error

	// GetBalance kilitsiz bakiye okuması
	GetBalance(userID int) (*models.Balance, error)

	// ListLots kullanıcının lot'larını kilitsiz listeler
	ListLots(userID int, limit, offset int) ([]*models.Lot, error)
}

// TransactionRepositoryInterface ledger transaction kayıtları için interface
type TransactionRepositoryInterface interface {
	// Insert yeni transaction yazar
	Insert(tx *sql.Tx, t *models.Transaction) (int, error)

	// InsertEntries aktör bazlı delta kayıtlarını yazar
	InsertEntries(tx *sql.Tx, transactionID int, entries []*models.TransactionEntry) error

	// GetByID ID ile transaction getirir
	GetByID(id int) (*models.Transaction, error)

	// ListByUser kullanıcının transaction geçmişini getirir
	ListByUser(userID int, limit, offset int) ([]*models.Transaction, error)

	// ListEntries transaction'ın entry'lerini getirir
	ListEntries(transactionID int) ([]*models.TransactionEntry, error)
}

// WalletRepositoryInterface yayıncı cüzdanı için interface
type WalletRepositoryInterface interface {
	// EnsureAndLock cüzdan satırını oluşturup FOR UPDATE ile kilitler
	EnsureAndLock(tx *sql.Tx, streamerID int) (*models.StreamerWallet, error)

	// Credit beneficiary payını aggregate'e ekler
	Credit(tx *sql.Tx, streamerID int, amount int64) error

	// Debit kullanılabilir değeri azaltır
	Debit(tx *sql.Tx, streamerID int, amount int64) error

	// InsertEarning kazanç satırını yazar
	InsertEarning(tx *sql.Tx, streamerID, transactionID int, amount int64) error

	// GetSummary kilitsiz cüzdan özeti
	GetSummary(streamerID int) (*models.WalletSummary, error)
}

// ChestRepositoryInterface sandık alt sistemi erişimi için interface
type ChestRepositoryInterface interface {
	InsertOpening(o *models.ChestOpening) (*models.ChestOpening, error)
	GetOpening(id int) (*models.ChestOpening, error)
	LockOpening(tx *sql.Tx, id int) (*models.ChestOpening, error)
	CloseOpening(tx *sql.Tx, id int) (bool, error)
	CancelOpening(tx *sql.Tx, id int) (bool, error)
	ListExpiredOpenIDs(now time.Time, limit int) ([]int, error)

	InsertParticipant(openingID, userID int) (bool, error)
	ListParticipantIDs(tx *sql.Tx, openingID int) ([]int, error)

	GetLockedChestLots(tx *sql.Tx, streamerID int, order repository.LotOrder) ([]*models.ChestLot, error)
	InsertChestLot(tx *sql.Tx, lot *models.ChestLot) (int, error)
	DecrementChestLot(tx *sql.Tx, lotID int, amount int64) error
	ChestNominalTotals(tx *sql.Tx, streamerID int) (depositTotal, autoTotal int64, err error)

	InsertPayout(tx *sql.Tx, p *models.ChestPayout) error

	LockAutoMintState(tx *sql.Tx, streamerID int) (*models.AutoMintState, error)
	InsertAutoMintState(tx *sql.Tx, streamerID int, lastBucketTs time.Time) error
	UpdateAutoMintState(tx *sql.Tx, streamerID int, lastBucketTs time.Time, carryMinutes int) error
	CountViewerMinutes(tx *sql.Tx, streamerID int, from, to time.Time) (int, error)
}

// BonusRepositoryInterface bonus motoru erişimi için interface
type BonusRepositoryInterface interface {
	InsertDailyClaim(tx *sql.Tx, userID int, day time.Time) (bool, error)
	CountMonthClaims(tx *sql.Tx, userID int, monthStart, nextMonth time.Time) (int, error)
	InsertMilestoneGrant(tx *sql.Tx, userID int, month string, milestone int, fallback bool) (bool, error)
	HasEntitlement(tx *sql.Tx, userID int, entitlement string) (bool, error)
	InsertEntitlement(tx *sql.Tx, userID int, entitlement string) error
	AddToken(tx *sql.Tx, userID int, token string, amount int64) error
	GetTokenBalance(userID int, token string) (int64, error)
}

// StreamerRepositoryInterface yayıncı kimlik sorguları için interface
type StreamerRepositoryInterface interface {
	GetByID(id int) (*models.Streamer, error)
	ListLiveIDs() ([]int, error)
}

// UserRepositoryInterface kullanıcı database işlemleri için interface
type UserRepositoryInterface interface {
	Create(req *models.CreateUserRequest, hashedPassword string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id int) (*models.User, error)
}
