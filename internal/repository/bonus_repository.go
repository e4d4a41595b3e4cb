package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// BonusRepository günlük talepler, milestone ödülleri, token ve
// entitlement kayıtları. Eşzamanlılık guard'ı uniqueness
// constraint'lerin kendisidir; ayrıca satır kilidi gerekmez.
type BonusRepository struct {
	db *sql.DB
}

// NewBonusRepository yeni repository oluşturur
func NewBonusRepository(db *sql.DB) *BonusRepository {
	return &BonusRepository{db: db}
}

// InsertDailyClaim (user, day) satırını eklemeyi dener.
// Duplicate ise false döner: ödül zaten talep edilmiş demektir.
func (r *BonusRepository) InsertDailyClaim(tx *sql.Tx, userID int, day time.Time) (bool, error) {
	result, err := tx.Exec(`
		INSERT INTO daily_claims (user_id, claim_day)
		VALUES ($1, $2)
		ON CONFLICT (user_id, claim_day) DO NOTHING
	`, userID, day)
	if err != nil {
		return false, fmt.Errorf("günlük talep yazılamadı: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("talep sonucu kontrol edilemedi: %w", err)
	}
	return affected == 1, nil
}

// CountMonthClaims ay içindeki farklı talep günlerini sayar
func (r *BonusRepository) CountMonthClaims(tx *sql.Tx, userID int, monthStart, nextMonth time.Time) (int, error) {
	var count int
	err := tx.QueryRow(`
		SELECT COUNT(DISTINCT claim_day)
		FROM daily_claims
		WHERE user_id = $1 AND claim_day >= $2 AND claim_day < $3
	`, userID, monthStart, nextMonth).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("aylık talep günleri sayılamadı: %w", err)
	}
	return count, nil
}

// InsertMilestoneGrant (user, month, milestone) satırını eklemeyi dener.
// Duplicate ise false döner: milestone zaten ödüllendirilmiş.
func (r *BonusRepository) InsertMilestoneGrant(tx *sql.Tx, userID int, month string, milestone int, fallback bool) (bool, error) {
	result, err := tx.Exec(`
		INSERT INTO milestone_grants (user_id, month, milestone, fallback)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, month, milestone) DO NOTHING
	`, userID, month, milestone, fallback)
	if err != nil {
		return false, fmt.Errorf("milestone ödülü yazılamadı: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("milestone sonucu kontrol edilemedi: %w", err)
	}
	return affected == 1, nil
}

// HasEntitlement kullanıcının entitlement'a zaten sahip olup olmadığını döner
func (r *BonusRepository) HasEntitlement(tx *sql.Tx, userID int, entitlement string) (bool, error) {
	var exists bool
	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM user_entitlements WHERE user_id = $1 AND entitlement = $2)
	`, userID, entitlement).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("entitlement kontrol edilemedi: %w", err)
	}
	return exists, nil
}

// InsertEntitlement entitlement verir; duplicate burada beklenmez çünkü
// çağıran önce HasEntitlement ile fallback kararını vermiştir
func (r *BonusRepository) InsertEntitlement(tx *sql.Tx, userID int, entitlement string) error {
	_, err := tx.Exec(`
		INSERT INTO user_entitlements (user_id, entitlement)
		VALUES ($1, $2)
	`, userID, entitlement)
	if err != nil {
		return fmt.Errorf("entitlement yazılamadı: %w", err)
	}
	return nil
}

// AddToken kullanıcının token bakiyesini artırır (upsert)
func (r *BonusRepository) AddToken(tx *sql.Tx, userID int, token string, amount int64) error {
	_, err := tx.Exec(`
		INSERT INTO user_tokens (user_id, token, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, token) DO UPDATE SET amount = user_tokens.amount + EXCLUDED.amount
	`, userID, token, amount)
	if err != nil {
		return fmt.Errorf("token bakiyesi artırılamadı: %w", err)
	}
	return nil
}

// GetTokenBalance kilitsiz token bakiyesi okuması
func (r *BonusRepository) GetTokenBalance(userID int, token string) (int64, error) {
	var amount int64
	err := r.db.QueryRow(`
		SELECT amount FROM user_tokens WHERE user_id = $1 AND token = $2
	`, userID, token).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("token bakiyesi okunamadı: %w", err)
	}
	return amount, nil
}
