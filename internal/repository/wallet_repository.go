package repository

import (
	"database/sql"
	"fmt"

	"github.com/rubisplatform/rubis-api/internal/models"
)

// WalletRepository yayıncı cüzdan aggregate'i ve kazanç satırları
type WalletRepository struct {
	db *sql.DB
}

// NewWalletRepository yeni repository oluşturur
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// EnsureAndLock cüzdan satırını yoksa oluşturur, sonra FOR UPDATE ile
// kilitleyip döner. İlk support harcamasında satır burada doğar.
func (r *WalletRepository) EnsureAndLock(tx *sql.Tx, streamerID int) (*models.StreamerWallet, error) {
	_, err := tx.Exec(`
		INSERT INTO streamer_wallets (streamer_id, available_value, lifetime_value)
		VALUES ($1, 0, 0)
		ON CONFLICT (streamer_id) DO NOTHING
	`, streamerID)
	if err != nil {
		return nil, fmt.Errorf("cüzdan satırı oluşturulamadı: %w", err)
	}

	var w models.StreamerWallet
	err = tx.QueryRow(`
		SELECT streamer_id, available_value, lifetime_value, last_updated_at
		FROM streamer_wallets
		WHERE streamer_id = $1
		FOR UPDATE
	`, streamerID).Scan(&w.StreamerID, &w.AvailableValue, &w.LifetimeValue, &w.LastUpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("cüzdan satırı kilitlenemedi: %w", err)
	}
	return &w, nil
}

// Credit beneficiary payını aggregate'e ekler (available + lifetime)
func (r *WalletRepository) Credit(tx *sql.Tx, streamerID int, amount int64) error {
	_, err := tx.Exec(`
		UPDATE streamer_wallets
		SET available_value = available_value + $2,
		    lifetime_value = lifetime_value + $2,
		    last_updated_at = NOW()
		WHERE streamer_id = $1
	`, streamerID, amount)
	if err != nil {
		return fmt.Errorf("cüzdan artırılamadı: %w", err)
	}
	return nil
}

// Debit kullanılabilir değeri azaltır (cashout); lifetime değişmez
func (r *WalletRepository) Debit(tx *sql.Tx, streamerID int, amount int64) error {
	result, err := tx.Exec(`
		UPDATE streamer_wallets
		SET available_value = available_value - $2, last_updated_at = NOW()
		WHERE streamer_id = $1 AND available_value >= $2
	`, streamerID, amount)
	if err != nil {
		return fmt.Errorf("cüzdan azaltılamadı: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("cüzdan güncelleme sonucu kontrol edilemedi: %w", err)
	}
	if affected == 0 {
		return models.ErrInsufficientValue
	}
	return nil
}

// InsertEarning support harcamasından düşen tek kazanç satırını yazar
func (r *WalletRepository) InsertEarning(tx *sql.Tx, streamerID, transactionID int, amount int64) error {
	_, err := tx.Exec(`
		INSERT INTO wallet_earnings (streamer_id, transaction_id, amount)
		VALUES ($1, $2, $3)
	`, streamerID, transactionID, amount)
	if err != nil {
		return fmt.Errorf("kazanç satırı yazılamadı: %w", err)
	}
	return nil
}

// GetSummary kilitsiz cüzdan özeti; tasarım gereği stale olabilir
func (r *WalletRepository) GetSummary(streamerID int) (*models.WalletSummary, error) {
	summary := &models.WalletSummary{StreamerID: streamerID}

	err := r.db.QueryRow(`
		SELECT available_value, lifetime_value
		FROM streamer_wallets
		WHERE streamer_id = $1
	`, streamerID).Scan(&summary.AvailableValue, &summary.LifetimeValue)
	if err == sql.ErrNoRows {
		// Henüz kazanç yok; sıfır özet döner
		return summary, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cüzdan özeti okunamadı: %w", err)
	}

	err = r.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE kind = 'adjust' AND purpose = 'cashout_request'
		  AND status = 'pending' AND from_user_id = (SELECT user_id FROM streamers WHERE id = $1)
	`, streamerID).Scan(&summary.PendingCashout)
	if err != nil {
		return nil, fmt.Errorf("bekleyen cashout toplamı okunamadı: %w", err)
	}

	return summary, nil
}
