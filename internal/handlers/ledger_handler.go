package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/middleware"
	apierrors "github.com/rubisplatform/rubis-api/internal/middleware/errors"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// LedgerHandler rubis mint/spend/bakiye HTTP isteklerini yönetir
type LedgerHandler struct {
	ledgerService interfaces.LedgerServiceInterface
}

// NewLedgerHandler yeni handler oluşturur
func NewLedgerHandler(ledgerService interfaces.LedgerServiceInterface) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// purchaseRequest satın alma endpoint'inin body'si
type purchaseRequest struct {
	Amount int64 `json:"amount"`
}

// spendRequest harcama endpoint'inin body'si
type spendRequest struct {
	Amount     int64  `json:"amount"`
	SpendKind  string `json:"spend_kind"`
	Purpose    string `json:"purpose"`
	StreamerID *int   `json:"streamer_id,omitempty"`
}

// Purchase satın alma sonrası rubis basar (protected).
// Ödeme sağlayıcı entegrasyonu kapsam dışı; başarılı ödeme webhook'u
// bu endpoint'in arkasındaki akışla aynı mint'i çağırır.
func (h *LedgerHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.")
		return
	}

	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz istek formatı")
		return
	}

	result, err := h.ledgerService.Mint(&models.MintRequest{
		UserID:   claims.UserID,
		Origin:   models.OriginPurchase,
		Amount:   req.Amount,
		WeightBp: models.WeightBpFromOrigin,
	})
	if err != nil {
		log.Warn().Err(err).Int("user_id", claims.UserID).Msg("Satın alma başarısız")
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, result, "Rubis hesabınıza eklendi")
}

// Spend rubis harcar: destek veya sink (protected)
func (h *LedgerHandler) Spend(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.")
		return
	}

	var req spendRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz istek formatı")
		return
	}

	result, err := h.ledgerService.Spend(&models.SpendRequest{
		UserID:        claims.UserID,
		Amount:        req.Amount,
		SpendKind:     req.SpendKind,
		Purpose:       req.Purpose,
		BeneficiaryID: req.StreamerID,
	})
	if err != nil {
		log.Warn().Err(err).Int("user_id", claims.UserID).Int64("amount", req.Amount).Msg("Harcama başarısız")
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, result, "Harcama tamamlandı")
}

// GetBalance kullanıcının bakiyesini döner (protected).
// Kilitsiz okumadır; eşzamanlı harcamalar altında stale olabilir.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.")
		return
	}

	balance, err := h.ledgerService.GetBalance(claims.UserID)
	if err != nil {
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, balance, "")
}
