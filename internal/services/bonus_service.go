package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/db"
	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// BonusService günlük talepler ve aylık milestone ödülleri.
// Eşzamanlılık guard'ı (user, periyot) uniqueness constraint'idir;
// duplicate insert "zaten talep edilmiş" demektir, asla çifte basım olmaz.
type BonusService struct {
	bonusRepo interfaces.BonusRepositoryInterface
	ledger    interfaces.LedgerServiceInterface
	database  *sql.DB
	loc       *time.Location // işletme saat dilimi; gün sınırları buna göre
}

// NewBonusService yeni service oluşturur
func NewBonusService(
	bonusRepo interfaces.BonusRepositoryInterface,
	ledger interfaces.LedgerServiceInterface,
	database *sql.DB,
	loc *time.Location,
) *BonusService {
	return &BonusService{
		bonusRepo: bonusRepo,
		ledger:    ledger,
		database:  database,
		loc:       loc,
	}
}

// --- Takvim yardımcıları: "bugün" tüm kullanıcılar için işletme saat
// diliminin geceyarısında başlar, UTC'de değil ---

// businessDay anı işletme saat dilimindeki takvim gününe indirger
func businessDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// monthBounds işletme saat dilimine göre ay başını ve bir sonraki ay
// başını döner
func monthBounds(now time.Time, loc *time.Location) (monthStart, nextMonth time.Time) {
	local := now.In(loc)
	monthStart = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth = monthStart.AddDate(0, 1, 0)
	return monthStart, nextMonth
}

// monthKey "2026-09" biçiminde ay anahtarı üretir
func monthKey(now time.Time, loc *time.Location) string {
	return now.In(loc).Format("2006-01")
}

// rewardForWeekday günün ödülünü ISO haftagününe göre deterministik seçer:
// Pzt/Çar/Cum rubis, Sal/Per sandık anahtarı, haftasonu büyük rubis
func rewardForWeekday(weekday time.Weekday) []*models.Grant {
	switch weekday {
	case time.Monday, time.Wednesday, time.Friday:
		return []*models.Grant{{Kind: models.GrantKindCurrency, Amount: 10, WeightBp: 5000}}
	case time.Tuesday, time.Thursday:
		return []*models.Grant{{Kind: models.GrantKindToken, Token: models.TokenChestKey, Amount: 1}}
	default: // Saturday, Sunday
		return []*models.Grant{{Kind: models.GrantKindCurrency, Amount: 20, WeightBp: 5000}}
	}
}

// milestoneReward milestone ödül tablosu.
// 5 ve 10 rubis(+token), 20 ve 30 entitlement verir; entitlement
// milestone'larında fallback kararı çağıranda alınır.
func milestoneReward(milestone int) (grants []*models.Grant, err error) {
	switch milestone {
	case 5:
		return []*models.Grant{
			{Kind: models.GrantKindCurrency, Amount: 50, WeightBp: 7500},
		}, nil
	case 10:
		return []*models.Grant{
			{Kind: models.GrantKindCurrency, Amount: 100, WeightBp: 7500},
			{Kind: models.GrantKindToken, Token: models.TokenChestKey, Amount: 3},
		}, nil
	case 20:
		return []*models.Grant{
			{Kind: models.GrantKindEntitlement, Entitlement: models.EntitlementAvatarFrameGold},
		}, nil
	case 30:
		return []*models.Grant{
			{Kind: models.GrantKindEntitlement, Entitlement: models.EntitlementLoyalViewer},
		}, nil
	default:
		return nil, models.ErrInvalidMilestone
	}
}

// milestoneFallbackReward entitlement zaten sahipliyse verilen eşdeğer ödül
func milestoneFallbackReward() []*models.Grant {
	return []*models.Grant{
		{Kind: models.GrantKindCurrency, Amount: 150, WeightBp: 7500},
		{Kind: models.GrantKindToken, Token: models.TokenChestKey, Amount: 5},
	}
}

// --- Operasyonlar ---

// ClaimDaily günlük ödülü talep eder. (user, day) insert'i guard'dır:
// duplicate ise alreadyClaimed=true döner ve hiçbir şey basılmaz.
func (s *BonusService) ClaimDaily(userID int) (*models.DailyClaimResult, error) {
	now := time.Now()
	day := businessDay(now, s.loc)
	monthStart, nextMonth := monthBounds(now, s.loc)

	var result *models.DailyClaimResult

	err := db.WithTransaction(s.database, func(tx *sql.Tx) error {
		// 1. Talep satırını eklemeyi dene; duplicate = zaten talep edilmiş
		inserted, err := s.bonusRepo.InsertDailyClaim(tx, userID, day)
		if err != nil {
			return err
		}

		// 2. Ay içi talep günü sayısı (milestone ilerlemesi için)
		count, err := s.bonusRepo.CountMonthClaims(tx, userID, monthStart, nextMonth)
		if err != nil {
			return err
		}

		if !inserted {
			result = &models.DailyClaimResult{AlreadyClaimed: true, MonthClaimDays: count}
			return nil
		}

		// 3. Haftagününe göre ödülü ver
		grants := rewardForWeekday(now.In(s.loc).Weekday())
		if err := s.applyGrants(tx, userID, grants, models.OriginDailyBonus, false); err != nil {
			return err
		}

		result = &models.DailyClaimResult{Granted: grants, MonthClaimDays: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyClaimed {
		log.Info().Int("user_id", userID).Int("month_days", result.MonthClaimDays).Msg("📅 Günlük bonus verildi")
	}
	return result, nil
}

// ClaimMilestone aylık milestone ödülünü talep eder.
// (user, month, milestone) uniqueness tek guard'dır; entitlement
// duplicate olacaksa eşdeğer fallback ödülü verilir ve kaydedilir —
// talep her zaman tam olarak bir kez BİR ödül üretir.
func (s *BonusService) ClaimMilestone(userID, milestone int) (*models.MilestoneClaimResult, error) {
	grants, err := milestoneReward(milestone)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	month := monthKey(now, s.loc)
	monthStart, nextMonth := monthBounds(now, s.loc)

	var result *models.MilestoneClaimResult

	err = db.WithTransaction(s.database, func(tx *sql.Tx) error {
		// 1. Eşik kontrolü: ay içi farklı talep günleri
		count, err := s.bonusRepo.CountMonthClaims(tx, userID, monthStart, nextMonth)
		if err != nil {
			return err
		}
		if count < milestone {
			return models.ErrMilestoneNotReached
		}

		// 2. Entitlement milestone'ında fallback kararı
		fallback := false
		if len(grants) == 1 && grants[0].Kind == models.GrantKindEntitlement {
			has, err := s.bonusRepo.HasEntitlement(tx, userID, grants[0].Entitlement)
			if err != nil {
				return err
			}
			fallback = has
		}

		// 3. Ödül kaydını eklemeyi dene; duplicate = zaten alınmış
		inserted, err := s.bonusRepo.InsertMilestoneGrant(tx, userID, month, milestone, fallback)
		if err != nil {
			return err
		}
		if !inserted {
			return models.ErrAlreadyClaimed
		}

		// 4. Ödülü uygula
		applied := grants
		if fallback {
			applied = milestoneFallbackReward()
		}
		if err := s.applyGrants(tx, userID, applied, models.OriginMilestone, fallback); err != nil {
			return err
		}

		result = &models.MilestoneClaimResult{Milestone: milestone, Fallback: fallback, Granted: applied}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("user_id", userID).
		Int("milestone", milestone).
		Bool("fallback", result.Fallback).
		Msg("🏆 Milestone ödülü verildi")

	return result, nil
}

// applyGrants ödül listesini açık transaction içinde uygular
func (s *BonusService) applyGrants(tx *sql.Tx, userID int, grants []*models.Grant, origin string, fallback bool) error {
	for _, grant := range grants {
		switch grant.Kind {
		case models.GrantKindCurrency:
			meta := ""
			if fallback {
				meta = `{"fallback":true}`
			}
			if _, err := s.ledger.MintTx(tx, &models.MintRequest{
				UserID:   userID,
				Origin:   origin,
				Amount:   grant.Amount,
				WeightBp: grant.WeightBp,
				Meta:     meta,
			}); err != nil {
				return err
			}
		case models.GrantKindToken:
			if err := s.bonusRepo.AddToken(tx, userID, grant.Token, grant.Amount); err != nil {
				return err
			}
		case models.GrantKindEntitlement:
			if err := s.bonusRepo.InsertEntitlement(tx, userID, grant.Entitlement); err != nil {
				return err
			}
		default:
			return fmt.Errorf("bilinmeyen grant tipi: %s", grant.Kind)
		}
	}
	return nil
}
