package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/config"
	"github.com/rubisplatform/rubis-api/internal/db"
	"github.com/rubisplatform/rubis-api/internal/events"
	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/models"
	"github.com/rubisplatform/rubis-api/internal/repository"
)

// İzlenme birikimi oranı: 5 izlenen dakika -> 3 rubis
const (
	accrualMinutesPerBlock = 5
	accrualRubisPerBlock   = 3
)

// autoCloseBatchSize bir auto-close tick'inde denenecek açılış sayısı
const autoCloseBatchSize = 20

// ChestService sandık yaşam döngüsü: açma, katılım, deposit, settlement
// ve periyodik job giriş noktaları
type ChestService struct {
	chestRepo    interfaces.ChestRepositoryInterface
	streamerRepo interfaces.StreamerRepositoryInterface
	ledger       interfaces.LedgerServiceInterface
	database     *sql.DB
	cfg          *config.Config
	notifier     events.Publisher
}

// NewChestService yeni service oluşturur
func NewChestService(
	chestRepo interfaces.ChestRepositoryInterface,
	streamerRepo interfaces.StreamerRepositoryInterface,
	ledger interfaces.LedgerServiceInterface,
	database *sql.DB,
	cfg *config.Config,
	notifier events.Publisher,
) *ChestService {
	return &ChestService{
		chestRepo:    chestRepo,
		streamerRepo: streamerRepo,
		ledger:       ledger,
		database:     database,
		cfg:          cfg,
		notifier:     notifier,
	}
}

// --- Saf yardımcılar ---

// chestPool kalan chest lot'larının ağırlıklı toplam değerini hesaplar
func chestPool(lots []*models.ChestLot) int64 {
	var weightedSum int64
	for _, lot := range lots {
		weightedSum += lot.AmountRemaining * int64(lot.WeightBp)
	}
	return weightedSum / models.FullWeightBp
}

// consumeChestValue hedef değeri karşılayacak kadar nominal'i greedy
// tüketir (liste weight desc sıralı gelir). Hedefe ulaşmaya yetecek
// minimum nominal alınır; artan değer lot'larda kalır ve bir sonraki
// açılışı fonlar.
func consumeChestValue(lots []*models.ChestLot, targetValue int64) []*models.ConsumedLot {
	var plan []*models.ConsumedLot
	var weightedSum int64
	targetWeighted := targetValue * models.FullWeightBp

	for _, lot := range lots {
		if weightedSum >= targetWeighted {
			break
		}
		if lot.WeightBp == 0 {
			continue // değersiz lot hedefe katkı veremez
		}
		need := targetWeighted - weightedSum
		units := (need + int64(lot.WeightBp) - 1) / int64(lot.WeightBp)
		if units > lot.AmountRemaining {
			units = lot.AmountRemaining
		}
		plan = append(plan, &models.ConsumedLot{
			LotID:    lot.ID,
			Origin:   lot.Origin,
			WeightBp: lot.WeightBp,
			Amount:   units,
		})
		weightedSum += units * int64(lot.WeightBp)
	}
	return plan
}

// accrueMinutes izlenme dakikalarını rubis'e çevirir; artan dakikalar
// carry olarak bir sonraki tick'e taşınır, asla kaybolmaz
func accrueMinutes(carryMinutes, newMinutes int) (minted int64, newCarry int) {
	total := carryMinutes + newMinutes
	minted = int64(total/accrualMinutesPerBlock) * accrualRubisPerBlock
	newCarry = total % accrualMinutesPerBlock
	return minted, newCarry
}

// autoMintCeiling chest_auto nominal'inin alabileceği kalan payı döner.
// chest_auto, sandığın toplam nominal değerinin %20'sini aşamaz;
// deposit/4 - auto bu tavanın cebirsel karşılığıdır.
func autoMintCeiling(depositTotal, autoTotal int64) int64 {
	ceiling := depositTotal/4 - autoTotal
	if ceiling < 0 {
		return 0
	}
	return ceiling
}

// --- Yaşam döngüsü ---

// Open yayıncı için yeni sandık açılışı oluşturur.
// Aynı anda ikinci açık sandık uniqueness constraint ile engellenir.
func (s *ChestService) Open(req *models.OpenChestRequest, createdBy int) (*models.ChestOpening, error) {
	streamer, err := s.streamerRepo.GetByID(req.StreamerID)
	if err != nil {
		return nil, err
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = s.cfg.ChestDurationMin
	}

	now := time.Now()
	opening := &models.ChestOpening{
		StreamerID:      streamer.ID,
		CreatedBy:       createdBy,
		OpensAt:         now,
		ClosesAt:        now.Add(time.Duration(duration) * time.Minute),
		MinWatchMinutes: req.MinWatchMinutes,
	}
	opening, err = s.chestRepo.InsertOpening(opening)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("opening_id", opening.ID).
		Int("streamer_id", streamer.ID).
		Time("closes_at", opening.ClosesAt).
		Msg("🎁 Sandık açıldı")

	// Commit sonrası bildirim; başarısızlığı ledger'ı etkilemez
	s.notifier.Publish(events.Event{
		Kind: "chest_opened",
		Payload: map[string]interface{}{
			"opening_id":  opening.ID,
			"streamer_id": streamer.ID,
			"closes_at":   opening.ClosesAt,
		},
	})

	return opening, nil
}

// Join kullanıcıyı açılışa kaydeder; tekrar katılım zararsız no-op'tur
func (s *ChestService) Join(openingID, userID int) error {
	opening, err := s.chestRepo.GetOpening(openingID)
	if err != nil {
		return err
	}
	if opening.Status != models.OpeningStatusOpen || time.Now().After(opening.ClosesAt) {
		return models.ErrOpeningClosed
	}

	inserted, err := s.chestRepo.InsertParticipant(openingID, userID)
	if err != nil {
		return err
	}
	if !inserted {
		// Ya tekrar katılım ya da kontrol ile insert arasında settlement
		// araya girdi; statüyü tekrar okuyarak ayırt et
		opening, err = s.chestRepo.GetOpening(openingID)
		if err != nil {
			return err
		}
		if opening.Status != models.OpeningStatusOpen {
			return models.ErrOpeningClosed
		}
		return nil
	}

	log.Debug().Int("opening_id", openingID).Int("user_id", userID).Msg("Sandığa katılım")
	return nil
}

// Deposit yayıncının kendi rubis'ini sandığa yatırır: sahibin lot'ları
// sink harcamasıyla tüketilir, aynı transaction'da yüksek weight'li
// chest_deposit lot'u doğar
func (s *ChestService) Deposit(req *models.ChestDepositRequest, userID int) error {
	streamer, err := s.streamerRepo.GetByID(req.StreamerID)
	if err != nil {
		return err
	}

	return db.WithTransaction(s.database, func(tx *sql.Tx) error {
		// 1. Yatıran kullanıcının rubis'i dolaşımdan çıkar
		if _, err := s.ledger.SpendTx(tx, &models.SpendRequest{
			UserID:    userID,
			Amount:    req.Amount,
			SpendKind: models.SpendKindSink,
			Purpose:   models.OriginChestDeposit,
			Meta:      fmt.Sprintf(`{"streamer_id":%d}`, streamer.ID),
		}); err != nil {
			return err
		}

		// 2. Sandıkta karşılığı doğar
		_, err := s.chestRepo.InsertChestLot(tx, &models.ChestLot{
			StreamerID:  streamer.ID,
			Origin:      models.OriginChestDeposit,
			WeightBp:    s.cfg.DepositWeightBp,
			AmountTotal: req.Amount,
		})
		return err
	})
}

// Settle açılışı kapatır ve havuzu katılımcılara dağıtır.
// open -> closed status geçişi idempotency kapısıdır: geçişi kaybeden
// çağrı hiçbir payout üretmeden AlreadyDone döner. Bir katılımcının
// basımı başarısız olursa tüm settlement geri alınır ve açılış open
// kalır (retry).
func (s *ChestService) Settle(openingID int) (*models.SettleResult, error) {
	var result *models.SettleResult

	err := db.WithTransaction(s.database, func(tx *sql.Tx) error {
		// 1. Açılışı kilitle ve kapatma geçişini dene
		opening, err := s.chestRepo.LockOpening(tx, openingID)
		if err != nil {
			return err
		}
		won, err := s.chestRepo.CloseOpening(tx, openingID)
		if err != nil {
			return err
		}
		if !won {
			// Zaten closed/canceled: no-op
			result = &models.SettleResult{OpeningID: openingID, AlreadyDone: true}
			return nil
		}

		result = &models.SettleResult{OpeningID: openingID}

		// 2. Katılımcılar (eligibility filtrelemesi settlement'ın
		// upstream'inde yapılır; burada kayıtlı herkes pay alır)
		participants, err := s.chestRepo.ListParticipantIDs(tx, openingID)
		if err != nil {
			return err
		}
		result.Participants = len(participants)
		if len(participants) == 0 {
			return nil // katılımcı yok; değer sandıkta kalır
		}

		// 3. Chest lot'larını en yüksek weight önce kilitle, havuzu değerle
		lots, err := s.chestRepo.GetLockedChestLots(tx, opening.StreamerID, repository.LotOrderWeightDesc)
		if err != nil {
			return err
		}
		pool := chestPool(lots)
		perHead := pool / int64(len(participants))
		result.PoolValue = pool
		result.PerHead = perHead
		if perHead == 0 {
			return nil // dağıtılacak değer yok; lot'lar olduğu gibi kalır
		}

		// 4. Dağıtılan değeri fonlayan nominal'i tüket; artan değer
		// sandıkta kalır
		distributed := perHead * int64(len(participants))
		consumption := consumeChestValue(lots, distributed)
		for _, c := range consumption {
			if err := s.chestRepo.DecrementChestLot(tx, c.LotID, c.Amount); err != nil {
				return err
			}
		}
		breakdownJSON, err := json.Marshal(map[string]interface{}{
			"pool":     pool,
			"per_head": perHead,
			"consumed": consumption,
		})
		if err != nil {
			return fmt.Errorf("settlement breakdown serileştirilemedi: %w", err)
		}

		// 5. Her katılımcıya payı Mint ile basılır ve payout satırı yazılır;
		// herhangi bir adım başarısız olursa tüm açılış rollback olur
		for _, userID := range participants {
			mintResult, err := s.ledger.MintTx(tx, &models.MintRequest{
				UserID:   userID,
				Origin:   models.OriginChestPayout,
				Amount:   perHead,
				WeightBp: models.FullWeightBp,
				Meta:     fmt.Sprintf(`{"opening_id":%d}`, openingID),
			})
			if err != nil {
				return fmt.Errorf("katılımcı %d için payout basılamadı: %w", userID, err)
			}

			payout := &models.ChestPayout{
				OpeningID:     openingID,
				UserID:        userID,
				Amount:        perHead,
				Breakdown:     string(breakdownJSON),
				TransactionID: mintResult.TransactionID,
			}
			if err := s.chestRepo.InsertPayout(tx, payout); err != nil {
				return err
			}
			result.Payouts = append(result.Payouts, payout)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyDone {
		log.Info().
			Int("opening_id", openingID).
			Int("participants", result.Participants).
			Int64("pool", result.PoolValue).
			Int64("per_head", result.PerHead).
			Msg("💰 Sandık settlement tamamlandı")

		s.notifier.Publish(events.Event{
			Kind: "chest_settled",
			Payload: map[string]interface{}{
				"opening_id":   openingID,
				"participants": result.Participants,
				"per_head":     result.PerHead,
			},
		})
	}

	return result, nil
}

// Cancel açılışı idari olarak iptal eder; payout üretilmez
func (s *ChestService) Cancel(openingID int) error {
	return db.WithTransaction(s.database, func(tx *sql.Tx) error {
		if _, err := s.chestRepo.LockOpening(tx, openingID); err != nil {
			return err
		}
		won, err := s.chestRepo.CancelOpening(tx, openingID)
		if err != nil {
			return err
		}
		if !won {
			return models.ErrOpeningClosed
		}
		return nil
	})
}

// --- Periyodik job giriş noktaları ---

// RunAutoMintTick canlı yayıncıların izlenme dakikalarını chest_auto
// lot'larına çevirir. Her yayıncı kendi transaction'ında işlenir;
// birinin hatası diğerlerini engellemez.
func (s *ChestService) RunAutoMintTick() error {
	// Sadece tamamen geçmiş dakikalar: devam eden dakika asla sayılmaz
	toTs := time.Now().Truncate(time.Minute).Add(-time.Minute)

	liveIDs, err := s.streamerRepo.ListLiveIDs()
	if err != nil {
		return fmt.Errorf("canlı yayıncılar listelenemedi: %w", err)
	}

	for _, streamerID := range liveIDs {
		if err := s.autoMintStreamer(streamerID, toTs); err != nil {
			log.Error().Err(err).Int("streamer_id", streamerID).Msg("Auto-mint hatası, yayıncı atlandı")
		}
	}
	return nil
}

// autoMintStreamer tek yayıncının birikimini kendi transaction'ında işler
func (s *ChestService) autoMintStreamer(streamerID int, toTs time.Time) error {
	return db.WithTransaction(s.database, func(tx *sql.Tx) error {
		// 1. Watermark satırını kilitle
		state, err := s.chestRepo.LockAutoMintState(tx, streamerID)
		if err != nil {
			return err
		}
		if state == nil {
			// İlk tick baseline yazar, basım yapmaz
			return s.chestRepo.InsertAutoMintState(tx, streamerID, toTs)
		}
		if !toTs.After(state.LastBucketTs) {
			return nil // yeni tamamlanmış dakika yok
		}

		// 2. Yeni izleyici-dakikaları say (strictly after watermark)
		newMinutes, err := s.chestRepo.CountViewerMinutes(tx, streamerID, state.LastBucketTs, toTs)
		if err != nil {
			return err
		}

		// 3. Birikimi hesapla; carry her durumda korunur
		minted, newCarry := accrueMinutes(state.CarryMinutes, newMinutes)

		// 4. chest_auto nominal tavanını uygula (%20 toplam nominal)
		if minted > 0 {
			depositTotal, autoTotal, err := s.chestRepo.ChestNominalTotals(tx, streamerID)
			if err != nil {
				return err
			}
			if ceiling := autoMintCeiling(depositTotal, autoTotal); minted > ceiling {
				minted = ceiling
			}
		}

		// 5. Watermark basım olmasa da ilerler; artan dakikalar kaybolmaz
		if err := s.chestRepo.UpdateAutoMintState(tx, streamerID, toTs, newCarry); err != nil {
			return err
		}

		if minted > 0 {
			if _, err := s.chestRepo.InsertChestLot(tx, &models.ChestLot{
				StreamerID:  streamerID,
				Origin:      models.OriginChestAuto,
				WeightBp:    s.cfg.AutoMintWeightBp,
				AmountTotal: minted,
			}); err != nil {
				return err
			}
			log.Debug().
				Int("streamer_id", streamerID).
				Int64("minted", minted).
				Int("carry", newCarry).
				Msg("⛏️ İzlenme birikimi basıldı")
		}
		return nil
	})
}

// RunAutoCloseTick süresi dolan açık açılışları settle eder.
// Her deneme bağımsızdır; hata loglanır ve bir sonraki tick'te
// tekrar denenir.
func (s *ChestService) RunAutoCloseTick() error {
	ids, err := s.chestRepo.ListExpiredOpenIDs(time.Now(), autoCloseBatchSize)
	if err != nil {
		return fmt.Errorf("süresi dolan açılışlar alınamadı: %w", err)
	}

	for _, id := range ids {
		if _, err := s.Settle(id); err != nil {
			log.Error().Err(err).Int("opening_id", id).Msg("Auto-close settlement hatası, atlandı")
		}
	}
	return nil
}
