package repository

import (
	"database/sql"
	"fmt"

	"github.com/rubisplatform/rubis-api/internal/models"
)

// WeightRepository origin -> weight yapılandırma tablosu.
// Tablo açılışta bir kez yüklenir ve process ömrü boyunca immutable
// state olarak taşınır; Mint ve raporlama aynı haritayı kullanır.
type WeightRepository struct {
	db *sql.DB
}

// NewWeightRepository yeni repository oluşturur
func NewWeightRepository(db *sql.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// LoadAll tüm origin ağırlıklarını yükler
func (r *WeightRepository) LoadAll() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT origin, weight_bp FROM origin_weights`)
	if err != nil {
		return nil, fmt.Errorf("origin ağırlıkları yüklenemedi: %w", err)
	}
	defer rows.Close()

	weights := make(map[string]int)
	for rows.Next() {
		var origin string
		var weightBp int
		if err := rows.Scan(&origin, &weightBp); err != nil {
			return nil, fmt.Errorf("ağırlık scan hatası: %w", err)
		}
		if weightBp < 0 || weightBp > models.FullWeightBp {
			return nil, fmt.Errorf("origin %s için tablo dışı weight: %d", origin, weightBp)
		}
		weights[origin] = weightBp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ağırlık satırları okunamadı: %w", err)
	}

	if len(weights) == 0 {
		return nil, fmt.Errorf("origin_weights tablosu boş; migration'lar uygulanmamış olabilir")
	}
	return weights, nil
}
