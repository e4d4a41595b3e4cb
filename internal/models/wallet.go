package models

import "time"

// StreamerWallet yayıncının kazanç aggregate'i.
// Sadece support harcamalarının beneficiary payı ile artar.
type StreamerWallet struct {
	StreamerID     int       `json:"streamer_id" db:"streamer_id"`
	AvailableValue int64     `json:"available_value" db:"available_value"`
	LifetimeValue  int64     `json:"lifetime_value" db:"lifetime_value"`
	LastUpdatedAt  time.Time `json:"last_updated_at" db:"last_updated_at"`
}

// WalletEarning support harcamasından cüzdana düşen tek kazanç satırı
type WalletEarning struct {
	ID            int       `json:"id" db:"id"`
	StreamerID    int       `json:"streamer_id" db:"streamer_id"`
	TransactionID int       `json:"transaction_id" db:"transaction_id"`
	Amount        int64     `json:"amount" db:"amount"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// WalletSummary kilitsiz okunan cüzdan özeti; tasarım gereği stale olabilir
type WalletSummary struct {
	StreamerID     int   `json:"streamer_id"`
	AvailableValue int64 `json:"available_value"`
	LifetimeValue  int64 `json:"lifetime_value"`
	PendingCashout int64 `json:"pending_cashout"`
}

// CashoutRequest yayıncının kazancını çekme talebi
type CashoutRequest struct {
	StreamerID int   `json:"streamer_id"`
	Amount     int64 `json:"amount"`
}

// CashoutResult cashout talebi sonucu; gerçek para transferi kapsam dışıdır,
// talep pending bir adjust transaction'ı olarak kaydedilir
type CashoutResult struct {
	TransactionID  int   `json:"transaction_id"`
	Amount         int64 `json:"amount"`
	AvailableValue int64 `json:"available_value"`
}
