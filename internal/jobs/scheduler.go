// Package jobs arka plan görevlerini (cron) yönetir: sandık auto-mint
// tick'i ve süresi dolan açılışların otomatik settlement'ı.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/interfaces"
)

// Scheduler periyodik görevleri yönetir.
// Auto-mint tick'i overlap edemez: önceki tick hâlâ çalışıyorsa yenisi
// atlanır, kaçan dakikalar watermark sayesinde bir sonraki tick'te
// telafi edilir.
type Scheduler struct {
	cron         *cron.Cron
	chestService interfaces.ChestServiceInterface
	autoMintMu   sync.Mutex
	autoCloseMu  sync.Mutex
}

// NewScheduler yeni scheduler oluşturur
func NewScheduler(chestService interfaces.ChestServiceInterface, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		chestService: chestService,
	}
}

// Start görevleri kaydeder ve cron'u başlatır
func (s *Scheduler) Start(autoMintInterval, autoCloseInterval time.Duration) error {
	// Auto-mint: izlenen dakikaları sandık rubisine çevirir
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", autoMintInterval), func() {
		if !s.autoMintMu.TryLock() {
			log.Debug().Msg("[CRON] Auto-mint tick atlandı, önceki hâlâ çalışıyor")
			return
		}
		defer s.autoMintMu.Unlock()

		if err := s.chestService.RunAutoMintTick(); err != nil {
			log.Error().Err(err).Msg("[CRON] Auto-mint tick hatası")
		}
	})
	if err != nil {
		return fmt.Errorf("auto-mint görevi eklenemedi: %w", err)
	}

	// Auto-close: süresi dolan açık sandıkları settle eder
	_, err = s.cron.AddFunc(fmt.Sprintf("@every %s", autoCloseInterval), func() {
		if !s.autoCloseMu.TryLock() {
			return
		}
		defer s.autoCloseMu.Unlock()

		if err := s.chestService.RunAutoCloseTick(); err != nil {
			log.Error().Err(err).Msg("[CRON] Auto-close tick hatası")
		}
	})
	if err != nil {
		return fmt.Errorf("auto-close görevi eklenemedi: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("auto_mint_interval", autoMintInterval.String()).
		Str("auto_close_interval", autoCloseInterval.String()).
		Msg("⏰ Scheduler başlatıldı")

	return nil
}

// Stop cron'u durdurur ve çalışan görevlerin bitmesini bekler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("⏹️ Scheduler durduruldu")
}
