package repository

import (
	"database/sql"
	"fmt"

	"github.com/rubisplatform/rubis-api/internal/models"
)

// TransactionRepository ledger transaction ve entry kayıtları.
// Transaction'lar immutable'dır; yalnızca insert ve okuma vardır.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository yeni repository oluşturur
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Insert yeni ledger transaction'ı yazar; temsil ettiği lot
// mutasyonlarıyla aynı database transaction'ında çağrılmalıdır
func (r *TransactionRepository) Insert(tx *sql.Tx, t *models.Transaction) (int, error) {
	var id int
	err := tx.QueryRow(`
		INSERT INTO transactions
			(kind, purpose, from_user_id, to_user_id, amount, support_value,
			 beneficiary_share, platform_share, burn_share, status, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, '')::jsonb)
		RETURNING id
	`, t.Kind, t.Purpose, t.FromUserID, t.ToUserID, t.Amount, t.SupportValue,
		t.BeneficiaryShare, t.PlatformShare, t.BurnShare, t.Status, t.Meta).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("transaction kaydı oluşturulamadı: %w", err)
	}
	return id, nil
}

// InsertEntries transaction'ın aktör bazlı delta kayıtlarını yazar.
// Çift kayıt disiplini: delta'ların toplamı sıfır olmalıdır, yazmadan
// önce kontrol edilir.
func (r *TransactionRepository) InsertEntries(tx *sql.Tx, transactionID int, entries []*models.TransactionEntry) error {
	var sum int64
	for _, e := range entries {
		sum += e.Delta
	}
	if sum != 0 {
		return fmt.Errorf("entry delta'larının toplamı sıfır değil: %d", sum)
	}

	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO transaction_entries (transaction_id, entity, user_id, delta)
			VALUES ($1, $2, $3, $4)
		`, transactionID, e.Entity, e.UserID, e.Delta)
		if err != nil {
			return fmt.Errorf("transaction entry yazılamadı: %w", err)
		}
	}
	return nil
}

// GetByID ID ile transaction getirir (kilitsiz okuma)
func (r *TransactionRepository) GetByID(id int) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.QueryRow(`
		SELECT id, kind, purpose, from_user_id, to_user_id, amount, support_value,
		       beneficiary_share, platform_share, burn_share, status, COALESCE(meta::text, ''), created_at
		FROM transactions
		WHERE id = $1
	`, id).Scan(
		&t.ID, &t.Kind, &t.Purpose, &t.FromUserID, &t.ToUserID, &t.Amount,
		&t.SupportValue, &t.BeneficiaryShare, &t.PlatformShare, &t.BurnShare,
		&t.Status, &t.Meta, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction bulunamadı")
	}
	if err != nil {
		return nil, fmt.Errorf("transaction arama hatası: %w", err)
	}
	return &t, nil
}

// ListByUser kullanıcının transaction geçmişini getirir
func (r *TransactionRepository) ListByUser(userID int, limit, offset int) ([]*models.Transaction, error) {
	rows, err := r.db.Query(`
		SELECT id, kind, purpose, from_user_id, to_user_id, amount, support_value,
		       beneficiary_share, platform_share, burn_share, status, COALESCE(meta::text, ''), created_at
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("transaction listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID, &t.Kind, &t.Purpose, &t.FromUserID, &t.ToUserID, &t.Amount,
			&t.SupportValue, &t.BeneficiaryShare, &t.PlatformShare, &t.BurnShare,
			&t.Status, &t.Meta, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("transaction scan hatası: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}

// ListEntries transaction'ın entry'lerini getirir (audit)
func (r *TransactionRepository) ListEntries(transactionID int) ([]*models.TransactionEntry, error) {
	rows, err := r.db.Query(`
		SELECT transaction_id, entity, user_id, delta
		FROM transaction_entries
		WHERE transaction_id = $1
		ORDER BY entity, user_id
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("entry listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var entries []*models.TransactionEntry
	for rows.Next() {
		var e models.TransactionEntry
		if err := rows.Scan(&e.TransactionID, &e.Entity, &e.UserID, &e.Delta); err != nil {
			return nil, fmt.Errorf("entry scan hatası: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
