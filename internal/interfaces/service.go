// internal/interfaces/service.go
package interfaces

import (
	"database/sql"

	"github.com/rubisplatform/rubis-api/internal/models"
)

// LedgerServiceInterface mint/spend operasyonları için interface.
// MintTx/SpendTx varyantları, sandık settlement'ı gibi dış bir database
// transaction'ının parçası olarak çağrılır (dependency inversion:
// sandık alt sistemi bu interface'e bağlıdır, implementasyona değil).
type LedgerServiceInterface interface {
	// Mint kullanıcıya yeni rubis basar (kendi transaction'ı içinde)
	Mint(req *models.MintRequest) (*models.MintResult, error)

	// MintTx açık bir transaction içinde basım yapar
	MintTx(tx *sql.Tx, req *models.MintRequest) (*models.MintResult, error)

	// Spend ağırlıklı tüketimle harcama yapar (kendi transaction'ı içinde)
	Spend(req *models.SpendRequest) (*models.SpendResult, error)

	// SpendTx açık bir transaction içinde harcama yapar
	SpendTx(tx *sql.Tx, req *models.SpendRequest) (*models.SpendResult, error)

	// GetBalance kilitsiz bakiye okuması
	GetBalance(userID int) (*models.Balance, error)
}

// ChestServiceInterface sandık yaşam döngüsü için interface
type ChestServiceInterface interface {
	Open(req *models.OpenChestRequest, createdBy int) (*models.ChestOpening, error)
	Join(openingID, userID int) error
	Deposit(req *models.ChestDepositRequest, userID int) error
	Settle(openingID int) (*models.SettleResult, error)
	Cancel(openingID int) error

	// RunAutoMintTick izlenme dakikalarını chest_auto lot'larına çevirir
	RunAutoMintTick() error

	// RunAutoCloseTick süresi dolan açılışları kapatır
	RunAutoCloseTick() error
}

// BonusServiceInterface günlük/aylık bonus motoru için interface
type BonusServiceInterface interface {
	ClaimDaily(userID int) (*models.DailyClaimResult, error)
	ClaimMilestone(userID, milestone int) (*models.MilestoneClaimResult, error)
}

// WalletServiceInterface yayıncı cüzdanı için interface
type WalletServiceInterface interface {
	GetSummary(streamerID int) (*models.WalletSummary, error)
	RequestCashout(req *models.CashoutRequest) (*models.CashoutResult, error)
}

// UserServiceInterface kullanıcı business logic için interface
type UserServiceInterface interface {
	Register(req *models.CreateUserRequest) (*models.User, error)
	Login(req *models.LoginRequest) (*models.LoginResponse, error)
	GetUserByID(userID int) (*models.User, error)
}
