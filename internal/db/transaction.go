package db

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// TransactionFunc database transaction içinde çalışacak fonksiyon tipi.
// Tüm ledger mutasyonları bu closure içinde, FOR UPDATE kilitleri
// alındıktan sonra yapılır; hata her şeyi geri alır.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction database transaction'ı yönetir.
// Hata durumunda otomatik rollback, başarı durumunda commit yapar.
// Kısmi uygulama asla dışarıdan gözlemlenemez.
func WithTransaction(database *sql.DB, fn TransactionFunc) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("transaction başlatılamadı: %w", err)
	}

	// Panic durumunda rollback ve yeniden fırlatma
	defer func() {
		if r := recover(); r != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("Rollback hatası (panic)")
			}
			log.Error().Interface("panic", r).Msg("Transaction panic ile rollback yapıldı")
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("Rollback hatası")
			return fmt.Errorf("transaction hatası ve rollback hatası: %w, rollback: %v", err, rollbackErr)
		}
		log.Debug().Err(err).Msg("Transaction rollback yapıldı")
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("Commit hatası")
		return fmt.Errorf("transaction commit hatası: %w", err)
	}

	return nil
}
