package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/interfaces"
	apierrors "github.com/rubisplatform/rubis-api/internal/middleware/errors"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// WalletHandler yayıncı cüzdanı HTTP isteklerini yönetir
type WalletHandler struct {
	walletService interfaces.WalletServiceInterface
}

// NewWalletHandler yeni handler oluşturur
func NewWalletHandler(walletService interfaces.WalletServiceInterface) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// streamerIDFromPath path'teki {id} değişkenini parse eder
func streamerIDFromPath(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// GetSummary yayıncı cüzdan özeti (protected)
func (h *WalletHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	streamerID, ok := streamerIDFromPath(r)
	if !ok {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz yayıncı ID")
		return
	}

	summary, err := h.walletService.GetSummary(streamerID)
	if err != nil {
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, summary, "")
}

// RequestCashout cashout talebi oluşturur (protected)
func (h *WalletHandler) RequestCashout(w http.ResponseWriter, r *http.Request) {
	streamerID, ok := streamerIDFromPath(r)
	if !ok {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz yayıncı ID")
		return
	}

	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := decodeJSON(r, &body); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz istek formatı")
		return
	}

	result, err := h.walletService.RequestCashout(&models.CashoutRequest{
		StreamerID: streamerID,
		Amount:     body.Amount,
	})
	if err != nil {
		log.Warn().Err(err).Int("streamer_id", streamerID).Msg("Cashout talebi başarısız")
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, result, "Cashout talebi alındı")
}
