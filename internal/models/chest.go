package models

import "time"

// Sandık açılışı status sabitleri.
// Geçişler: open -> closed (normal settlement) veya open -> canceled (admin).
// closed/canceled'dan çıkış yoktur.
const (
	OpeningStatusOpen     = "open"
	OpeningStatusClosed   = "closed"
	OpeningStatusCanceled = "canceled"
)

// ChestLot sandığa bağlı lot; Lot ile aynı şekil ama sahibi bir yayıncıdır.
// origin=chest_deposit (yüksek weight) veya origin=chest_auto (düşük weight).
type ChestLot struct {
	ID              int       `json:"id" db:"id"`
	StreamerID      int       `json:"streamer_id" db:"streamer_id"`
	Origin          string    `json:"origin" db:"origin"`
	WeightBp        int       `json:"weight_bp" db:"weight_bp"`
	AmountTotal     int64     `json:"amount_total" db:"amount_total"`
	AmountRemaining int64     `json:"amount_remaining" db:"amount_remaining"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ChestOpening zaman kutulu sandık etkinliği.
// Invariant: bir yayıncının aynı anda en fazla bir open açılışı olabilir
// (partial unique index ile garanti edilir).
type ChestOpening struct {
	ID              int       `json:"id" db:"id"`
	StreamerID      int       `json:"streamer_id" db:"streamer_id"`
	CreatedBy       int       `json:"created_by" db:"created_by"`
	Status          string    `json:"status" db:"status"`
	OpensAt         time.Time `json:"opens_at" db:"opens_at"`
	ClosesAt        time.Time `json:"closes_at" db:"closes_at"`
	MinWatchMinutes int       `json:"min_watch_minutes" db:"min_watch_minutes"`
}

// ChestParticipant açılışa kayıtlı kullanıcı; append-only
type ChestParticipant struct {
	OpeningID int       `json:"opening_id" db:"opening_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`
}

// ChestPayout settlement'ta kullanıcı başına tam olarak bir kez yazılır
type ChestPayout struct {
	OpeningID     int    `json:"opening_id" db:"opening_id"`
	UserID        int    `json:"user_id" db:"user_id"`
	Amount        int64  `json:"amount" db:"amount"`
	Breakdown     string `json:"breakdown" db:"breakdown"`
	TransactionID int    `json:"transaction_id" db:"transaction_id"`
}

// AutoMintState yayıncı başına izlenme birikimi watermark'ı.
// lastBucketTs'e kadar olan dakikalar işlenmiştir; carry, 5'e
// bölümden artan dakikaları tick'ler arasında taşır.
type AutoMintState struct {
	StreamerID   int       `json:"streamer_id" db:"streamer_id"`
	LastBucketTs time.Time `json:"last_bucket_ts" db:"last_bucket_ts"`
	CarryMinutes int       `json:"carry_minutes" db:"carry_minutes"`
}

// OpenChestRequest sandık açma isteği
type OpenChestRequest struct {
	StreamerID      int `json:"streamer_id"`
	DurationMinutes int `json:"duration_minutes"`
	MinWatchMinutes int `json:"min_watch_minutes"`
}

// ChestDepositRequest yayıncının kendi rubis'ini sandığa yatırma isteği
type ChestDepositRequest struct {
	StreamerID int   `json:"streamer_id"`
	Amount     int64 `json:"amount"`
}

// SettleResult settlement sonucu
type SettleResult struct {
	OpeningID    int            `json:"opening_id"`
	AlreadyDone  bool           `json:"already_done"`
	PoolValue    int64          `json:"pool_value"`
	PerHead      int64          `json:"per_head"`
	Participants int            `json:"participants"`
	Payouts      []*ChestPayout `json:"payouts"`
}
