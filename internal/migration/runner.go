// Package migration dosya bazlı SQL migration'ları sırayla uygular.
// Her migration kendi transaction'ında koşar; başarısız migration
// rollback olur ve sonrakiler uygulanmaz.
package migration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner migration'ları yükler ve uygular
type Runner struct {
	db  *sql.DB
	dir string
}

// NewRunner yeni runner oluşturur
func NewRunner(db *sql.DB, dir string) *Runner {
	return &Runner{db: db, dir: dir}
}

// ensureTable schema_migrations tablosunu oluşturur
func (r *Runner) ensureTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("schema_migrations tablosu oluşturulamadı: %w", err)
	}
	return nil
}

// Load migration dosyalarını okur ve uygulanma durumlarıyla birleştirir
func (r *Runner) Load() ([]*Migration, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("migration dizini okunamadı: %w", err)
	}

	byVersion := make(map[int64]*Migration)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, direction, err := parseFileName(entry.Name())
		if err != nil {
			log.Warn().Str("file", entry.Name()).Msg("Migration dosyası atlandı")
			continue
		}

		content, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("migration dosyası okunamadı: %w", err)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if direction == "up" {
			m.UpSQL = string(content)
		} else {
			m.DownSQL = string(content)
		}
	}

	migrations := make([]*Migration, 0, len(byVersion))
	for _, m := range byVersion {
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	// Uygulanma durumlarını DB'den çek
	if err := r.markApplied(migrations); err != nil {
		return nil, err
	}

	return migrations, nil
}

// markApplied schema_migrations kayıtlarını migration listesiyle eşler
func (r *Runner) markApplied(migrations []*Migration) error {
	rows, err := r.db.Query(`SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("migration durumu okunamadı: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]time.Time)
	for rows.Next() {
		var version int64
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return err
		}
		applied[version] = appliedAt
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if at, ok := applied[m.Version]; ok {
			m.Applied = true
			m.AppliedAt = &at
		}
	}
	return nil
}

// Up uygulanmamış tüm migration'ları sırayla uygular
func (r *Runner) Up() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	migrations, err := r.Load()
	if err != nil {
		return err
	}

	appliedCount := 0
	for _, m := range migrations {
		if m.Applied {
			continue
		}
		if m.UpSQL == "" {
			return fmt.Errorf("migration %d (%s) için up dosyası yok", m.Version, m.Name)
		}

		if err := r.applyOne(m); err != nil {
			return fmt.Errorf("migration %d (%s) uygulanamadı: %w", m.Version, m.Name, err)
		}
		appliedCount++
	}

	if appliedCount == 0 {
		log.Info().Msg("Uygulanacak migration yok, veritabanı güncel")
	} else {
		log.Info().Int("count", appliedCount).Msg("✅ Migration'lar uygulandı")
	}
	return nil
}

// applyOne tek migration'ı kendi transaction'ında uygular
func (r *Runner) applyOne(m *Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.UpSQL); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
		m.Version, m.Name,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info().Int64("version", m.Version).Str("name", m.Name).Msg("Migration uygulandı")
	return nil
}

// Down son uygulanan migration'ı geri alır
func (r *Runner) Down() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	migrations, err := r.Load()
	if err != nil {
		return err
	}

	// Son uygulanan migration'ı bul
	var last *Migration
	for _, m := range migrations {
		if m.Applied {
			last = m
		}
	}
	if last == nil {
		log.Info().Msg("Geri alınacak migration yok")
		return nil
	}
	if last.DownSQL == "" {
		return fmt.Errorf("migration %d (%s) için down dosyası yok", last.Version, last.Name)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(last.DownSQL); err != nil {
		return fmt.Errorf("migration %d geri alınamadı: %w", last.Version, err)
	}
	if _, err := tx.Exec(`DELETE FROM schema_migrations WHERE version = $1`, last.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info().Int64("version", last.Version).Str("name", last.Name).Msg("⏪ Migration geri alındı")
	return nil
}

// Status migration durumlarını loglar
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	migrations, err := r.Load()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		status := "pending"
		if m.Applied {
			status = "applied"
		}
		log.Info().
			Int64("version", m.Version).
			Str("name", m.Name).
			Str("status", status).
			Msg("Migration")
	}
	return nil
}
