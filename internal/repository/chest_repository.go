package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rubisplatform/rubis-api/internal/models"
)

// ChestRepository sandık açılışları, katılımcılar, chest lot'ları,
// payout'lar ve auto-mint watermark erişimi
type ChestRepository struct {
	db *sql.DB
}

// NewChestRepository yeni repository oluşturur
func NewChestRepository(db *sql.DB) *ChestRepository {
	return &ChestRepository{db: db}
}

// --- Açılış yaşam döngüsü ---

// InsertOpening yeni açılış oluşturur. Partial unique index
// (streamer_id WHERE status='open') ikinci açık sandığı engeller;
// ihlal ErrOpeningAlreadyExists olarak döner.
func (r *ChestRepository) InsertOpening(o *models.ChestOpening) (*models.ChestOpening, error) {
	err := r.db.QueryRow(`
		INSERT INTO chest_openings (streamer_id, created_by, status, opens_at, closes_at, min_watch_minutes)
		VALUES ($1, $2, 'open', $3, $4, $5)
		RETURNING id, status
	`, o.StreamerID, o.CreatedBy, o.OpensAt, o.ClosesAt, o.MinWatchMinutes).Scan(&o.ID, &o.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrOpeningAlreadyExists
		}
		return nil, fmt.Errorf("sandık açılışı oluşturulamadı: %w", err)
	}
	return o, nil
}

// GetOpening kilitsiz açılış okuması
func (r *ChestRepository) GetOpening(id int) (*models.ChestOpening, error) {
	return r.scanOpening(r.db.QueryRow(`
		SELECT id, streamer_id, created_by, status, opens_at, closes_at, min_watch_minutes
		FROM chest_openings WHERE id = $1
	`, id))
}

// LockOpening açılış satırını FOR UPDATE ile kilitleyip döner
func (r *ChestRepository) LockOpening(tx *sql.Tx, id int) (*models.ChestOpening, error) {
	return r.scanOpening(tx.QueryRow(`
		SELECT id, streamer_id, created_by, status, opens_at, closes_at, min_watch_minutes
		FROM chest_openings WHERE id = $1
		FOR UPDATE
	`, id))
}

func (r *ChestRepository) scanOpening(row *sql.Row) (*models.ChestOpening, error) {
	var o models.ChestOpening
	err := row.Scan(&o.ID, &o.StreamerID, &o.CreatedBy, &o.Status, &o.OpensAt, &o.ClosesAt, &o.MinWatchMinutes)
	if err == sql.ErrNoRows {
		return nil, models.ErrOpeningNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("açılış okunamadı: %w", err)
	}
	return &o, nil
}

// CloseOpening open -> closed geçişini dener; geçişi kazanıp
// kazanmadığını döner. Bu update, settlement'ın idempotency kapısıdır:
// aynı açılış için yalnızca bir settlement kazanabilir.
func (r *ChestRepository) CloseOpening(tx *sql.Tx, id int) (bool, error) {
	result, err := tx.Exec(`
		UPDATE chest_openings SET status = 'closed' WHERE id = $1 AND status = 'open'
	`, id)
	if err != nil {
		return false, fmt.Errorf("açılış kapatılamadı: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("kapatma sonucu kontrol edilemedi: %w", err)
	}
	return affected == 1, nil
}

// CancelOpening open -> canceled geçişini dener (admin işlemi)
func (r *ChestRepository) CancelOpening(tx *sql.Tx, id int) (bool, error) {
	result, err := tx.Exec(`
		UPDATE chest_openings SET status = 'canceled' WHERE id = $1 AND status = 'open'
	`, id)
	if err != nil {
		return false, fmt.Errorf("açılış iptal edilemedi: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("iptal sonucu kontrol edilemedi: %w", err)
	}
	return affected == 1, nil
}

// ListExpiredOpenIDs süresi dolmuş açık açılışları closes_at sırasıyla
// küçük bir batch halinde döner (auto-close job)
func (r *ChestRepository) ListExpiredOpenIDs(now time.Time, limit int) ([]int, error) {
	rows, err := r.db.Query(`
		SELECT id FROM chest_openings
		WHERE status = 'open' AND closes_at <= $1
		ORDER BY closes_at ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("süresi dolan açılışlar listelenemedi: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("açılış id scan hatası: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Katılımcılar ---

// InsertParticipant katılımcı ekler; tekrar katılım zararsız no-op'tur
// (unique pair + ON CONFLICT). Eklenip eklenmediğini döner.
// İç SELECT açılış satırını kilitler: eşzamanlı bir settlement status'u
// closed'a çevirirse insert hiç gerçekleşmez, kapalı açılışta payout'suz
// katılımcı satırı kalamaz.
func (r *ChestRepository) InsertParticipant(openingID, userID int) (bool, error) {
	result, err := r.db.Exec(`
		INSERT INTO chest_participants (opening_id, user_id)
		SELECT o.id, $2 FROM (
			SELECT id FROM chest_openings
			WHERE id = $1 AND status = 'open'
			FOR UPDATE
		) o
		ON CONFLICT (opening_id, user_id) DO NOTHING
	`, openingID, userID)
	if err != nil {
		return false, fmt.Errorf("katılımcı eklenemedi: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("katılım sonucu kontrol edilemedi: %w", err)
	}
	return affected == 1, nil
}

// ListParticipantIDs açılışın katılımcılarını katılım sırasıyla döner
func (r *ChestRepository) ListParticipantIDs(tx *sql.Tx, openingID int) ([]int, error) {
	rows, err := tx.Query(`
		SELECT user_id FROM chest_participants
		WHERE opening_id = $1
		ORDER BY joined_at ASC, user_id ASC
	`, openingID)
	if err != nil {
		return nil, fmt.Errorf("katılımcı listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("katılımcı scan hatası: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Chest lot'ları ---

// GetLockedChestLots yayıncının kalan chest lot'larını verilen sırayla
// FOR UPDATE ile kilitleyip döner
func (r *ChestRepository) GetLockedChestLots(tx *sql.Tx, streamerID int, order LotOrder) ([]*models.ChestLot, error) {
	rows, err := tx.Query(`
		SELECT id, streamer_id, origin, weight_bp, amount_total, amount_remaining, created_at
		FROM chest_lots
		WHERE streamer_id = $1 AND amount_remaining > 0
		ORDER BY `+string(order)+`
		FOR UPDATE
	`, streamerID)
	if err != nil {
		return nil, fmt.Errorf("chest lot'ları kilitlenemedi: %w", err)
	}
	defer rows.Close()

	var lots []*models.ChestLot
	for rows.Next() {
		var lot models.ChestLot
		err := rows.Scan(&lot.ID, &lot.StreamerID, &lot.Origin, &lot.WeightBp,
			&lot.AmountTotal, &lot.AmountRemaining, &lot.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("chest lot scan hatası: %w", err)
		}
		lots = append(lots, &lot)
	}
	return lots, rows.Err()
}

// InsertChestLot yeni chest lot oluşturur
func (r *ChestRepository) InsertChestLot(tx *sql.Tx, lot *models.ChestLot) (int, error) {
	var id int
	err := tx.QueryRow(`
		INSERT INTO chest_lots (streamer_id, origin, weight_bp, amount_total, amount_remaining)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, lot.StreamerID, lot.Origin, lot.WeightBp, lot.AmountTotal).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("chest lot oluşturulamadı: %w", err)
	}
	return id, nil
}

// DecrementChestLot chest lot kalanını azaltır
func (r *ChestRepository) DecrementChestLot(tx *sql.Tx, lotID int, amount int64) error {
	result, err := tx.Exec(`
		UPDATE chest_lots
		SET amount_remaining = amount_remaining - $2
		WHERE id = $1 AND amount_remaining >= $2
	`, lotID, amount)
	if err != nil {
		return fmt.Errorf("chest lot azaltılamadı: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("chest lot güncelleme sonucu kontrol edilemedi: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("chest lot %d için kalan miktar tüketim planıyla uyuşmuyor", lotID)
	}
	return nil
}

// ChestNominalTotals deposit ve auto kaynaklı nominal toplamları döner;
// chest_auto payının %20 nominal tavanını uygulamak için kullanılır
func (r *ChestRepository) ChestNominalTotals(tx *sql.Tx, streamerID int) (depositTotal, autoTotal int64, err error) {
	err = tx.QueryRow(`
		SELECT
			COALESCE(SUM(amount_total) FILTER (WHERE origin <> $2), 0),
			COALESCE(SUM(amount_total) FILTER (WHERE origin = $2), 0)
		FROM chest_lots
		WHERE streamer_id = $1
	`, streamerID, models.OriginChestAuto).Scan(&depositTotal, &autoTotal)
	if err != nil {
		return 0, 0, fmt.Errorf("chest nominal toplamları okunamadı: %w", err)
	}
	return depositTotal, autoTotal, nil
}

// --- Payout'lar ---

// InsertPayout settlement payını yazar; (opening, user) unique'tir
func (r *ChestRepository) InsertPayout(tx *sql.Tx, p *models.ChestPayout) error {
	_, err := tx.Exec(`
		INSERT INTO chest_payouts (opening_id, user_id, amount, breakdown, transaction_id)
		VALUES ($1, $2, $3, NULLIF($4, '')::jsonb, $5)
	`, p.OpeningID, p.UserID, p.Amount, p.Breakdown, p.TransactionID)
	if err != nil {
		return fmt.Errorf("payout satırı yazılamadı: %w", err)
	}
	return nil
}

// --- Auto-mint watermark ---

// LockAutoMintState watermark satırını FOR UPDATE ile kilitler.
// Satır yoksa (nil, nil) döner; ilk tick baseline yazar.
func (r *ChestRepository) LockAutoMintState(tx *sql.Tx, streamerID int) (*models.AutoMintState, error) {
	var s models.AutoMintState
	err := tx.QueryRow(`
		SELECT streamer_id, last_bucket_ts, carry_minutes
		FROM auto_mint_state
		WHERE streamer_id = $1
		FOR UPDATE
	`, streamerID).Scan(&s.StreamerID, &s.LastBucketTs, &s.CarryMinutes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("watermark kilitlenemedi: %w", err)
	}
	return &s, nil
}

// InsertAutoMintState ilk watermark satırını yazar (baseline, carry=0)
func (r *ChestRepository) InsertAutoMintState(tx *sql.Tx, streamerID int, lastBucketTs time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO auto_mint_state (streamer_id, last_bucket_ts, carry_minutes)
		VALUES ($1, $2, 0)
	`, streamerID, lastBucketTs)
	if err != nil {
		return fmt.Errorf("watermark oluşturulamadı: %w", err)
	}
	return nil
}

// UpdateAutoMintState watermark'ı ilerletir; basım olmasa da çağrılır
// ki artan dakikalar tick'ler arasında kaybolmasın
func (r *ChestRepository) UpdateAutoMintState(tx *sql.Tx, streamerID int, lastBucketTs time.Time, carryMinutes int) error {
	_, err := tx.Exec(`
		UPDATE auto_mint_state
		SET last_bucket_ts = $2, carry_minutes = $3
		WHERE streamer_id = $1
	`, streamerID, lastBucketTs, carryMinutes)
	if err != nil {
		return fmt.Errorf("watermark güncellenemedi: %w", err)
	}
	return nil
}

// CountViewerMinutes (from, to] aralığındaki farklı izleyici-dakika
// kayıtlarını sayar. Strictly-after alt sınır çifte saymayı engeller.
func (r *ChestRepository) CountViewerMinutes(tx *sql.Tx, streamerID int, from, to time.Time) (int, error) {
	var count int
	err := tx.QueryRow(`
		SELECT COUNT(DISTINCT (user_id, bucket_ts))
		FROM viewer_minutes
		WHERE streamer_id = $1 AND bucket_ts > $2 AND bucket_ts <= $3
	`, streamerID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("izleyici dakikaları sayılamadı: %w", err)
	}
	return count, nil
}
