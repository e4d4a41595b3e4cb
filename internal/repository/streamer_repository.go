package repository

import (
	"database/sql"
	"fmt"

	"github.com/rubisplatform/rubis-api/internal/models"
)

// StreamerRepository yayıncı kimlik sorguları.
// Canlılık bilgisi dış collaborator (live-status poller) tarafından
// yazılır; burada sadece okunur.
type StreamerRepository struct {
	db *sql.DB
}

// NewStreamerRepository yeni repository oluşturur
func NewStreamerRepository(db *sql.DB) *StreamerRepository {
	return &StreamerRepository{db: db}
}

// GetByID ID ile yayıncı getirir
func (r *StreamerRepository) GetByID(id int) (*models.Streamer, error) {
	var s models.Streamer
	err := r.db.QueryRow(`
		SELECT id, user_id, name, is_live, created_at FROM streamers WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.Name, &s.IsLive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrStreamerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("yayıncı arama hatası: %w", err)
	}
	return &s, nil
}

// ListLiveIDs şu anda canlı olan yayıncı id'lerini döner (auto-mint sweep)
func (r *StreamerRepository) ListLiveIDs() ([]int, error) {
	rows, err := r.db.Query(`SELECT id FROM streamers WHERE is_live ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("canlı yayıncı listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("yayıncı id scan hatası: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
