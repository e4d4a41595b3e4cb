package models

import "time"

// Transaction kind sabitleri
const (
	TxKindMint   = "mint"
	TxKindSpend  = "spend"
	TxKindAdjust = "adjust"
)

// Spend kind sabitleri
const (
	SpendKindSupport = "support" // beneficiary'ye değer aktaran harcama
	SpendKindSink    = "sink"    // dolaşımdan çıkarma, beneficiary yok
)

// Transaction status sabitleri
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// Entry entity sabitleri (çift kayıt disiplini)
const (
	EntryEntityUser         = "user"
	EntryEntityPlatformFee  = "platform_fee"
	EntryEntityPlatformBurn = "platform_burn"
)

// Transaction tek bir ledger olayının değişmez kaydıdır.
// Temsil ettiği lot mutasyonlarıyla aynı database transaction'ında yazılır.
type Transaction struct {
	ID               int       `json:"id" db:"id"`
	Kind             string    `json:"kind" db:"kind"`
	Purpose          string    `json:"purpose" db:"purpose"`
	FromUserID       *int      `json:"from_user_id" db:"from_user_id"`
	ToUserID         *int      `json:"to_user_id" db:"to_user_id"`
	Amount           int64     `json:"amount" db:"amount"`
	SupportValue     int64     `json:"support_value" db:"support_value"`
	BeneficiaryShare int64     `json:"beneficiary_share" db:"beneficiary_share"`
	PlatformShare    int64     `json:"platform_share" db:"platform_share"`
	BurnShare        int64     `json:"burn_share" db:"burn_share"`
	Status           string    `json:"status" db:"status"`
	Meta             string    `json:"meta,omitempty" db:"meta"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// TransactionEntry bir transaction'ın aktör bazlı delta kaydı.
// Invariant: bir transaction'ın tüm entry delta'larının toplamı sıfırdır.
type TransactionEntry struct {
	TransactionID int    `json:"transaction_id" db:"transaction_id"`
	Entity        string `json:"entity" db:"entity"`
	UserID        *int   `json:"user_id" db:"user_id"`
	Delta         int64  `json:"delta" db:"delta"`
}

// ConsumedLot harcama sırasında tek bir lot'tan alınan dilim (audit breakdown)
type ConsumedLot struct {
	LotID    int    `json:"lot_id"`
	Origin   string `json:"origin"`
	WeightBp int    `json:"weight_bp"`
	Amount   int64  `json:"amount"`
}

// SpendRequest harcama isteği; handler katmanı JSON'dan doğrulayarak doldurur
type SpendRequest struct {
	UserID        int    `json:"user_id"`
	Amount        int64  `json:"amount"`
	SpendKind     string `json:"spend_kind"`
	Purpose       string `json:"purpose"`
	BeneficiaryID *int   `json:"beneficiary_id,omitempty"` // streamer id (support için)
	Meta          string `json:"meta,omitempty"`
}

// SpendResult harcama sonucu
type SpendResult struct {
	TransactionID    int            `json:"transaction_id"`
	Spent            int64          `json:"spent"`
	Breakdown        []*ConsumedLot `json:"breakdown"`
	SupportValue     int64          `json:"support_value"`
	BeneficiaryShare int64          `json:"beneficiary_share"`
	PlatformShare    int64          `json:"platform_share"`
}
