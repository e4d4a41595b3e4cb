package models

import "time"

// Token ve entitlement sabitleri
const (
	TokenChestKey = "chest_key"

	EntitlementAvatarFrameGold = "avatar_frame_gold"
	EntitlementLoyalViewer     = "title_sadik_izleyici"
)

// Grant tipi sabitleri
const (
	GrantKindCurrency    = "currency"
	GrantKindToken       = "token"
	GrantKindEntitlement = "entitlement"
)

// Milestone eşikleri: ay içinde talep edilen farklı gün sayısı
var MilestoneThresholds = []int{5, 10, 20, 30}

// DailyClaim gün başına tek talep satırı; (user_id, claim_day) unique
type DailyClaim struct {
	UserID    int       `json:"user_id" db:"user_id"`
	ClaimDay  time.Time `json:"claim_day" db:"claim_day"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MilestoneGrant ay ve milestone başına tek ödül satırı.
// Fallback true ise entitlement zaten sahipliydi ve yerine
// rubis+token ödülü verildi.
type MilestoneGrant struct {
	UserID    int       `json:"user_id" db:"user_id"`
	Month     string    `json:"month" db:"month"` // "2026-09" biçiminde
	Milestone int       `json:"milestone" db:"milestone"`
	Fallback  bool      `json:"fallback" db:"fallback"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Grant tek bir verilen ödülü temsil eder (rubis, token veya entitlement)
type Grant struct {
	Kind        string `json:"kind"`
	Amount      int64  `json:"amount,omitempty"`
	WeightBp    int    `json:"weight_bp,omitempty"`
	Token       string `json:"token,omitempty"`
	Entitlement string `json:"entitlement,omitempty"`
}

// DailyClaimResult günlük talep sonucu
type DailyClaimResult struct {
	AlreadyClaimed bool     `json:"already_claimed"`
	Granted        []*Grant `json:"granted"`
	MonthClaimDays int      `json:"month_claim_days"`
}

// MilestoneClaimResult milestone talep sonucu
type MilestoneClaimResult struct {
	Milestone int      `json:"milestone"`
	Fallback  bool     `json:"fallback"`
	Granted   []*Grant `json:"granted"`
}
