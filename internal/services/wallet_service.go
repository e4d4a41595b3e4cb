package services

import (
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/db"
	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// WalletService yayıncı cüzdanı: kilitsiz özet okuması ve cashout talebi.
// Gerçek para transferi kapsam dışıdır; talep pending bir adjust
// transaction'ı olarak kaydedilir.
type WalletService struct {
	walletRepo   interfaces.WalletRepositoryInterface
	streamerRepo interfaces.StreamerRepositoryInterface
	txRepo       interfaces.TransactionRepositoryInterface
	database     *sql.DB
}

// NewWalletService yeni service oluşturur
func NewWalletService(
	walletRepo interfaces.WalletRepositoryInterface,
	streamerRepo interfaces.StreamerRepositoryInterface,
	txRepo interfaces.TransactionRepositoryInterface,
	database *sql.DB,
) *WalletService {
	return &WalletService{
		walletRepo:   walletRepo,
		streamerRepo: streamerRepo,
		txRepo:       txRepo,
		database:     database,
	}
}

// GetSummary kilitsiz cüzdan özeti; tasarım gereği stale olabilir
func (s *WalletService) GetSummary(streamerID int) (*models.WalletSummary, error) {
	if _, err := s.streamerRepo.GetByID(streamerID); err != nil {
		return nil, err
	}
	return s.walletRepo.GetSummary(streamerID)
}

// RequestCashout kullanılabilir değeri düşer ve pending talep kaydeder.
// Kısmi cashout yoktur: değer yetmiyorsa ErrInsufficientValue ile
// hiçbir mutasyon uygulanmadan reddedilir.
func (s *WalletService) RequestCashout(req *models.CashoutRequest) (*models.CashoutResult, error) {
	if req.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	streamer, err := s.streamerRepo.GetByID(req.StreamerID)
	if err != nil {
		return nil, err
	}

	var result *models.CashoutResult

	err = db.WithTransaction(s.database, func(tx *sql.Tx) error {
		// 1. Cüzdan satırını kilitle ve yeterlilik kontrolü yap
		wallet, err := s.walletRepo.EnsureAndLock(tx, streamer.ID)
		if err != nil {
			return err
		}
		if wallet.AvailableValue < req.Amount {
			return models.ErrInsufficientValue
		}

		// 2. Kullanılabilir değeri düş (lifetime değişmez)
		if err := s.walletRepo.Debit(tx, streamer.ID, req.Amount); err != nil {
			return err
		}

		// 3. Pending talep kaydı + çift kayıt
		transactionID, err := s.txRepo.Insert(tx, &models.Transaction{
			Kind:       models.TxKindAdjust,
			Purpose:    "cashout_request",
			FromUserID: &streamer.UserID,
			Amount:     req.Amount,
			BurnShare:  req.Amount,
			Status:     models.StatusPending,
		})
		if err != nil {
			return err
		}
		entries := []*models.TransactionEntry{
			{Entity: models.EntryEntityUser, UserID: &streamer.UserID, Delta: -req.Amount},
			{Entity: models.EntryEntityPlatformBurn, Delta: req.Amount},
		}
		if err := s.txRepo.InsertEntries(tx, transactionID, entries); err != nil {
			return err
		}

		result = &models.CashoutResult{
			TransactionID:  transactionID,
			Amount:         req.Amount,
			AvailableValue: wallet.AvailableValue - req.Amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("streamer_id", streamer.ID).
		Int64("amount", req.Amount).
		Msg("💸 Cashout talebi kaydedildi")

	return result, nil
}
