package repository

import (
	"database/sql"
	"fmt"

	"github.com/rubisplatform/rubis-api/internal/models"
)

// LotOrder kilitli lot okumasının sıralamasını belirler.
// Sıralama tamamen deterministiktir: weight, sonra oluşturulma zamanı,
// sonra id — audit için yeniden üretilebilir.
type LotOrder string

const (
	// LotOrderWeightDesc support harcamaları: en değerli rubis önce
	LotOrderWeightDesc LotOrder = "weight_bp DESC, created_at ASC, id ASC"
	// LotOrderWeightAsc sink harcamaları: en ucuz rubis önce yanar
	LotOrderWeightAsc LotOrder = "weight_bp ASC, created_at ASC, id ASC"
)

// LotRepository lot ve cache'lenmiş bakiye erişimi (Ledger Store).
// Mutasyon metodları açık bir *sql.Tx ister; kilitsiz lot okuması
// bir correctness bug'ıdır.
type LotRepository struct {
	db *sql.DB
}

// NewLotRepository yeni repository oluşturur
func NewLotRepository(db *sql.DB) *LotRepository {
	return &LotRepository{db: db}
}

// GetLockedBalance kullanıcının bakiye satırını ve kalan lot'larını
// FOR UPDATE ile kilitleyip döner. Bakiye satırı yoksa ErrUserNotFound.
func (r *LotRepository) GetLockedBalance(tx *sql.Tx, userID int, order LotOrder) (*models.LockedBalance, error) {
	var cached int64
	err := tx.QueryRow(`
		SELECT amount FROM balances WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&cached)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bakiye satırı kilitlenemedi: %w", err)
	}

	rows, err := tx.Query(`
		SELECT id, owner_id, origin, weight_bp, amount_total, amount_remaining, COALESCE(meta::text, ''), created_at
		FROM lots
		WHERE owner_id = $1 AND amount_remaining > 0
		ORDER BY `+string(order)+`
		FOR UPDATE
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("lot'lar kilitlenemedi: %w", err)
	}
	defer rows.Close()

	balance := &models.LockedBalance{CachedTotal: cached}
	for rows.Next() {
		var lot models.Lot
		err := rows.Scan(
			&lot.ID,
			&lot.OwnerID,
			&lot.Origin,
			&lot.WeightBp,
			&lot.AmountTotal,
			&lot.AmountRemaining,
			&lot.Meta,
			&lot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("lot scan hatası: %w", err)
		}
		balance.Lots = append(balance.Lots, &lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lot satırları okunamadı: %w", err)
	}

	return balance, nil
}

// InsertLot yeni lot oluşturur; amount_remaining = amount_total
func (r *LotRepository) InsertLot(tx *sql.Tx, lot *models.Lot) (int, error) {
	var id int
	err := tx.QueryRow(`
		INSERT INTO lots (owner_id, origin, weight_bp, amount_total, amount_remaining, meta)
		VALUES ($1, $2, $3, $4, $4, NULLIF($5, '')::jsonb)
		RETURNING id
	`, lot.OwnerID, lot.Origin, lot.WeightBp, lot.AmountTotal, lot.Meta).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lot oluşturulamadı: %w", err)
	}
	return id, nil
}

// DecrementLot lot kalanını azaltır. CHECK constraint negatif kalanı
// zaten engeller; WHERE koşulu da plan dışı bir yarışı yakalar.
func (r *LotRepository) DecrementLot(tx *sql.Tx, lotID int, amount int64) error {
	result, err := tx.Exec(`
		UPDATE lots
		SET amount_remaining = amount_remaining - $2
		WHERE id = $1 AND amount_remaining >= $2
	`, lotID, amount)
	if err != nil {
		return fmt.Errorf("lot azaltılamadı: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("lot güncelleme sonucu kontrol edilemedi: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lot %d için kalan miktar tüketim planıyla uyuşmuyor", lotID)
	}
	return nil
}

// AdjustCachedBalance cache'lenmiş toplamı delta kadar değiştirir
func (r *LotRepository) AdjustCachedBalance(tx *sql.Tx, userID int, delta int64) error {
	result, err := tx.Exec(`
		UPDATE balances
		SET amount = amount + $2, last_updated_at = NOW()
		WHERE user_id = $1
	`, userID, delta)
	if err != nil {
		return fmt.Errorf("bakiye güncellenemedi: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("bakiye güncelleme sonucu kontrol edilemedi: %w", err)
	}
	if affected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// GetBalance kilitsiz bakiye okuması; mutasyon dışı özetler için
func (r *LotRepository) GetBalance(userID int) (*models.Balance, error) {
	var balance models.Balance
	err := r.db.QueryRow(`
		SELECT user_id, amount, last_updated_at FROM balances WHERE user_id = $1
	`, userID).Scan(&balance.UserID, &balance.Amount, &balance.LastUpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bakiye okunamadı: %w", err)
	}
	return &balance, nil
}

// ListLots kullanıcının lot'larını kilitsiz listeler (raporlama)
func (r *LotRepository) ListLots(userID int, limit, offset int) ([]*models.Lot, error) {
	rows, err := r.db.Query(`
		SELECT id, owner_id, origin, weight_bp, amount_total, amount_remaining, COALESCE(meta::text, ''), created_at
		FROM lots
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("lot listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var lots []*models.Lot
	for rows.Next() {
		var lot models.Lot
		err := rows.Scan(
			&lot.ID,
			&lot.OwnerID,
			&lot.Origin,
			&lot.WeightBp,
			&lot.AmountTotal,
			&lot.AmountRemaining,
			&lot.Meta,
			&lot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("lot scan hatası: %w", err)
		}
		lots = append(lots, &lot)
	}
	return lots, rows.Err()
}
