package services

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/db"
	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/models"
	"github.com/rubisplatform/rubis-api/internal/repository"
)

// LedgerService mint ve ağırlıklı harcama operasyonları.
// Tüm mutasyonlar tek bir kısa ömürlü database transaction'ında,
// FOR UPDATE kilitleri alındıktan sonra yapılır.
type LedgerService struct {
	lotRepo        interfaces.LotRepositoryInterface
	txRepo         interfaces.TransactionRepositoryInterface
	walletRepo     interfaces.WalletRepositoryInterface
	streamerRepo   interfaces.StreamerRepositoryInterface
	database       *sql.DB
	weights        map[string]int // origin -> weight_bp, açılışta yüklenir, immutable
	beneficiaryPct int
}

// NewLedgerService yeni service oluşturur
func NewLedgerService(
	lotRepo interfaces.LotRepositoryInterface,
	txRepo interfaces.TransactionRepositoryInterface,
	walletRepo interfaces.WalletRepositoryInterface,
	streamerRepo interfaces.StreamerRepositoryInterface,
	database *sql.DB,
	weights map[string]int,
	beneficiaryPct int,
) *LedgerService {
	return &LedgerService{
		lotRepo:        lotRepo,
		txRepo:         txRepo,
		walletRepo:     walletRepo,
		streamerRepo:   streamerRepo,
		database:       database,
		weights:        weights,
		beneficiaryPct: beneficiaryPct,
	}
}

// --- Saf yardımcılar: allocation planı kilit altında hesaplanır ama
// aritmetiğin kendisi yan etkisizdir ve tek başına test edilir ---

// planConsumption sıralı lot listesinden istenen miktarı greedy tüketir.
// Liste SQL tarafında deterministik sıralanmıştır (weight, created_at, id).
// Toplam kalan yetmiyorsa hiçbir şey döndürmeden ErrInsufficientBalance
// verir; kısmi harcama asla planlanmaz.
func planConsumption(lots []*models.Lot, amount int64) ([]*models.ConsumedLot, error) {
	var plan []*models.ConsumedLot
	remaining := amount

	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		take := lot.AmountRemaining
		if take > remaining {
			take = remaining
		}
		plan = append(plan, &models.ConsumedLot{
			LotID:    lot.ID,
			Origin:   lot.Origin,
			WeightBp: lot.WeightBp,
			Amount:   take,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, models.ErrInsufficientBalance
	}
	return plan, nil
}

// weightedValue tüketim planının support value'sunu hesaplar:
// floor(Σ(amount_i * weight_i) / 10000). Harcanan karışımın ağırlığına
// göre devalüe edilir, asla nominal sayıya göre değil.
func weightedValue(plan []*models.ConsumedLot) int64 {
	var weightedSum int64
	for _, c := range plan {
		weightedSum += c.Amount * int64(c.WeightBp)
	}
	return weightedSum / models.FullWeightBp
}

// splitSupport support value'yu beneficiary ve platform arasında böler
func splitSupport(supportValue int64, beneficiaryPct int) (beneficiaryShare, platformShare int64) {
	beneficiaryShare = supportValue * int64(beneficiaryPct) / 100
	platformShare = supportValue - beneficiaryShare
	return beneficiaryShare, platformShare
}

// validateMint mint girdisini lock alınmadan önce doğrular
func validateMint(req *models.MintRequest) error {
	if req.Amount <= 0 {
		return models.ErrInvalidAmount
	}
	if req.WeightBp < 0 || req.WeightBp > models.FullWeightBp {
		return models.ErrInvalidWeight
	}
	if req.Origin == "" {
		return fmt.Errorf("origin boş olamaz")
	}
	return nil
}

// validateSpend spend girdisini lock alınmadan önce doğrular
func validateSpend(req *models.SpendRequest) error {
	if req.Amount <= 0 {
		return models.ErrInvalidAmount
	}
	switch req.SpendKind {
	case models.SpendKindSupport:
		if req.BeneficiaryID == nil {
			return models.ErrBeneficiaryRequired
		}
	case models.SpendKindSink:
		// beneficiary yok, değer dolaşımdan çıkar
	default:
		return fmt.Errorf("geçersiz spend kind: %s", req.SpendKind)
	}
	return nil
}

// --- Mint ---

// Mint kullanıcıya yeni rubis basar: tek transaction içinde lot + ledger
// kaydı + entry'ler + cache'lenmiş bakiye birlikte commit edilir
func (s *LedgerService) Mint(req *models.MintRequest) (*models.MintResult, error) {
	var result *models.MintResult

	err := db.WithTransaction(s.database, func(tx *sql.Tx) error {
		var txErr error
		result, txErr = s.MintTx(tx, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("user_id", req.UserID).
		Str("origin", req.Origin).
		Int64("amount", req.Amount).
		Int("weight_bp", req.WeightBp).
		Int("transaction_id", result.TransactionID).
		Msg("💎 Rubis basıldı")

	return result, nil
}

// MintTx açık bir transaction içinde basım yapar (sandık settlement'ı ve
// bonus motoru kendi transaction'larının parçası olarak çağırır)
func (s *LedgerService) MintTx(tx *sql.Tx, req *models.MintRequest) (*models.MintResult, error) {
	// Çağıran ağırlığı tabloya bırakmışsa konsolide origin_weights'ten
	// çöz; sıfır dahil açıkça verilen her ağırlık olduğu gibi kullanılır
	if req.WeightBp == models.WeightBpFromOrigin {
		w, ok := s.weights[req.Origin]
		if !ok {
			return nil, fmt.Errorf("origin %q için tanımlı weight yok: %w", req.Origin, models.ErrInvalidWeight)
		}
		req.WeightBp = w
	}
	if err := validateMint(req); err != nil {
		return nil, err
	}

	// 1. Kullanıcının bakiye satırını kilitle (yoksa ErrUserNotFound)
	if _, err := s.lotRepo.GetLockedBalance(tx, req.UserID, repository.LotOrderWeightDesc); err != nil {
		return nil, err
	}

	// 2. Lot'u oluştur
	lotID, err := s.lotRepo.InsertLot(tx, &models.Lot{
		OwnerID:     req.UserID,
		Origin:      req.Origin,
		WeightBp:    req.WeightBp,
		AmountTotal: req.Amount,
		Meta:        req.Meta,
	})
	if err != nil {
		return nil, err
	}

	// 3. Ledger kaydını yaz
	transactionID, err := s.txRepo.Insert(tx, &models.Transaction{
		Kind:     models.TxKindMint,
		Purpose:  req.Origin,
		ToUserID: &req.UserID,
		Amount:   req.Amount,
		Status:   models.StatusCompleted,
		Meta:     req.Meta,
	})
	if err != nil {
		return nil, err
	}

	// 4. Çift kayıt: basım rezervden kullanıcıya akar
	entries := []*models.TransactionEntry{
		{Entity: models.EntryEntityUser, UserID: &req.UserID, Delta: req.Amount},
		{Entity: models.EntryEntityPlatformBurn, Delta: -req.Amount},
	}
	if err := s.txRepo.InsertEntries(tx, transactionID, entries); err != nil {
		return nil, err
	}

	// 5. Cache'lenmiş bakiyeyi artır
	if err := s.lotRepo.AdjustCachedBalance(tx, req.UserID, req.Amount); err != nil {
		return nil, err
	}

	return &models.MintResult{TransactionID: transactionID, LotID: lotID}, nil
}

// --- Spend ---

// Spend ağırlıklı tüketimle harcama yapar.
// support: en yüksek weight önce, beneficiary'nin support value'su maksimize edilir.
// sink: en düşük weight önce, en ucuz rubis yanar.
func (s *LedgerService) Spend(req *models.SpendRequest) (*models.SpendResult, error) {
	var result *models.SpendResult

	err := db.WithTransaction(s.database, func(tx *sql.Tx) error {
		var txErr error
		result, txErr = s.SpendTx(tx, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("user_id", req.UserID).
		Str("kind", req.SpendKind).
		Str("purpose", req.Purpose).
		Int64("amount", req.Amount).
		Int64("support_value", result.SupportValue).
		Msg("🔥 Rubis harcandı")

	return result, nil
}

// SpendTx açık bir transaction içinde harcama yapar
func (s *LedgerService) SpendTx(tx *sql.Tx, req *models.SpendRequest) (*models.SpendResult, error) {
	if err := validateSpend(req); err != nil {
		return nil, err
	}

	// Support harcamasında beneficiary kimliğini mutasyondan önce çöz
	var beneficiary *models.Streamer
	if req.SpendKind == models.SpendKindSupport {
		var err error
		beneficiary, err = s.streamerRepo.GetByID(*req.BeneficiaryID)
		if err != nil {
			return nil, err
		}
	}

	// 1. Kullanıcının lot'larını deterministik sırayla kilitle
	order := repository.LotOrderWeightDesc
	if req.SpendKind == models.SpendKindSink {
		order = repository.LotOrderWeightAsc
	}
	balance, err := s.lotRepo.GetLockedBalance(tx, req.UserID, order)
	if err != nil {
		return nil, err
	}

	// 2. Tüketim planını hesapla; yetersizse hiçbir mutasyon uygulanmadan çık
	plan, err := planConsumption(balance.Lots, req.Amount)
	if err != nil {
		return nil, err
	}

	// 3. Planı uygula: lot kalanları ve cache'lenmiş bakiye
	for _, c := range plan {
		if err := s.lotRepo.DecrementLot(tx, c.LotID, c.Amount); err != nil {
			return nil, err
		}
	}
	if err := s.lotRepo.AdjustCachedBalance(tx, req.UserID, -req.Amount); err != nil {
		return nil, err
	}

	// 4. Support value: harcanan karışımın ağırlıklı değeri
	supportValue := weightedValue(plan)

	// 5. Kind'a göre pay dağılımı
	var beneficiaryShare, platformShare, burnShare int64
	if req.SpendKind == models.SpendKindSupport {
		beneficiaryShare, platformShare = splitSupport(supportValue, s.beneficiaryPct)
		burnShare = req.Amount - beneficiaryShare - platformShare
	} else {
		// Sink: pay dağılımı yok, değer dolaşımdan çıkar
		burnShare = req.Amount
	}

	// 6. Ledger kaydı: tüketim breakdown'ı her durumda meta'ya yazılır;
	// çağıranın verdiği meta alanları korunur
	breakdownJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("breakdown serileştirilemedi: %w", err)
	}
	metaObj := map[string]json.RawMessage{}
	if req.Meta != "" {
		if err := json.Unmarshal([]byte(req.Meta), &metaObj); err != nil {
			return nil, fmt.Errorf("meta çözümlenemedi: %w", err)
		}
	}
	metaObj["breakdown"] = breakdownJSON
	metaBytes, err := json.Marshal(metaObj)
	if err != nil {
		return nil, fmt.Errorf("meta serileştirilemedi: %w", err)
	}
	meta := string(metaBytes)

	var toUserID *int
	if beneficiary != nil {
		toUserID = &beneficiary.UserID
	}
	transactionID, err := s.txRepo.Insert(tx, &models.Transaction{
		Kind:             models.TxKindSpend,
		Purpose:          req.Purpose,
		FromUserID:       &req.UserID,
		ToUserID:         toUserID,
		Amount:           req.Amount,
		SupportValue:     supportValue,
		BeneficiaryShare: beneficiaryShare,
		PlatformShare:    platformShare,
		BurnShare:        burnShare,
		Status:           models.StatusCompleted,
		Meta:             meta,
	})
	if err != nil {
		return nil, err
	}

	// 7. Çift kayıt disiplini: delta'ların toplamı sıfır
	entries := []*models.TransactionEntry{
		{Entity: models.EntryEntityUser, UserID: &req.UserID, Delta: -req.Amount},
	}
	if req.SpendKind == models.SpendKindSupport {
		entries = append(entries,
			&models.TransactionEntry{Entity: models.EntryEntityUser, UserID: &beneficiary.UserID, Delta: beneficiaryShare},
			&models.TransactionEntry{Entity: models.EntryEntityPlatformFee, Delta: platformShare},
			&models.TransactionEntry{Entity: models.EntryEntityPlatformBurn, Delta: burnShare},
		)
	} else {
		entries = append(entries,
			&models.TransactionEntry{Entity: models.EntryEntityPlatformBurn, Delta: burnShare},
		)
	}
	if err := s.txRepo.InsertEntries(tx, transactionID, entries); err != nil {
		return nil, err
	}

	// 8. Beneficiary cüzdanını güncelle (support)
	if req.SpendKind == models.SpendKindSupport && beneficiaryShare > 0 {
		if _, err := s.walletRepo.EnsureAndLock(tx, beneficiary.ID); err != nil {
			return nil, err
		}
		if err := s.walletRepo.Credit(tx, beneficiary.ID, beneficiaryShare); err != nil {
			return nil, err
		}
		if err := s.walletRepo.InsertEarning(tx, beneficiary.ID, transactionID, beneficiaryShare); err != nil {
			return nil, err
		}
	}

	return &models.SpendResult{
		TransactionID:    transactionID,
		Spent:            req.Amount,
		Breakdown:        plan,
		SupportValue:     supportValue,
		BeneficiaryShare: beneficiaryShare,
		PlatformShare:    platformShare,
	}, nil
}

// GetBalance kilitsiz bakiye okuması (mutasyon dışı özetler için)
func (s *LedgerService) GetBalance(userID int) (*models.Balance, error) {
	return s.lotRepo.GetBalance(userID)
}
