package models

import "time"

// Origin sabitleri: her lot hangi kaynaktan basıldığını taşır.
// Origin -> weight eşlemesi origin_weights tablosunda tutulur ve
// açılışta bir kez yüklenir (bkz. repository.WeightRepository).
const (
	OriginPurchase     = "purchase"      // satın alınmış rubis, tam değer
	OriginDailyBonus   = "daily_bonus"   // günlük bonus
	OriginMilestone    = "milestone"     // aylık milestone ödülü
	OriginWatchReward  = "watch_reward"  // izleme süresi karşılığı
	OriginChestPayout  = "chest_payout"  // sandık dağıtımından gelen pay
	OriginChestDeposit = "chest_deposit" // yayıncının sandığa yatırdığı (chest lot)
	OriginChestAuto    = "chest_auto"    // otomatik izlenme birikimi (chest lot)
	OriginAdjust       = "adjust"        // manuel düzeltme
)

// FullWeightBp tam 1:1 değerin basis point karşılığı
const FullWeightBp = 10000

// WeightBpFromOrigin, MintRequest.WeightBp için sentinel değerdir:
// ağırlık origin_weights tablosundan çözülür. Sıfır geçerli bir
// ağırlıktır ve olduğu gibi kullanılır.
const WeightBpFromOrigin = -1

// Lot bir kullanıcının bakiyesinin ağırlıklı bir dilimidir.
// Mint ile oluşturulur, yalnızca Spend amount_remaining'i azaltır,
// hiçbir zaman silinmez. Invariant: 0 <= AmountRemaining <= AmountTotal.
type Lot struct {
	ID              int       `json:"id" db:"id"`
	OwnerID         int       `json:"owner_id" db:"owner_id"`
	Origin          string    `json:"origin" db:"origin"`
	WeightBp        int       `json:"weight_bp" db:"weight_bp"`
	AmountTotal     int64     `json:"amount_total" db:"amount_total"`
	AmountRemaining int64     `json:"amount_remaining" db:"amount_remaining"`
	Meta            string    `json:"meta,omitempty" db:"meta"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Balance kullanıcının cache'lenmiş toplam bakiyesi.
// Tek başına otoriter değildir; lot kalanlarının toplamı ile senkron tutulur.
type Balance struct {
	UserID        int       `json:"user_id" db:"user_id"`
	Amount        int64     `json:"amount" db:"amount"`
	LastUpdatedAt time.Time `json:"last_updated_at" db:"last_updated_at"`
}

// LockedBalance kilitli okuma sonucu: cache'lenmiş toplam + sıralı lot'lar.
// Sadece açık bir database transaction içinde, FOR UPDATE ile üretilir.
type LockedBalance struct {
	CachedTotal int64
	Lots        []*Lot
}

// MintRequest yeni rubis basma isteği
type MintRequest struct {
	UserID   int    `json:"user_id"`
	Origin   string `json:"origin"`
	Amount   int64  `json:"amount"`
	WeightBp int    `json:"weight_bp"`
	Meta     string `json:"meta,omitempty"`
}

// MintResult basım sonucu
type MintResult struct {
	TransactionID int `json:"transaction_id"`
	LotID         int `json:"lot_id"`
}
