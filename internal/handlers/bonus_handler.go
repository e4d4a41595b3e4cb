package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/middleware"
	apierrors "github.com/rubisplatform/rubis-api/internal/middleware/errors"
)

// BonusHandler günlük bonus ve milestone HTTP isteklerini yönetir
type BonusHandler struct {
	bonusService interfaces.BonusServiceInterface
}

// NewBonusHandler yeni handler oluşturur
func NewBonusHandler(bonusService interfaces.BonusServiceInterface) *BonusHandler {
	return &BonusHandler{bonusService: bonusService}
}

// ClaimDaily günlük ödül talebi (protected).
// Aynı gün ikinci talep hata değildir; already_claimed döner.
func (h *BonusHandler) ClaimDaily(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.")
		return
	}

	result, err := h.bonusService.ClaimDaily(claims.UserID)
	if err != nil {
		log.Warn().Err(err).Int("user_id", claims.UserID).Msg("Günlük bonus talebi başarısız")
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	message := "Günlük ödül verildi"
	if result.AlreadyClaimed {
		message = "Bugünkü ödül zaten alınmış"
	}
	apierrors.WriteSuccess(w, http.StatusOK, result, message)
}

// ClaimMilestone aylık milestone ödülü talebi (protected)
func (h *BonusHandler) ClaimMilestone(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.")
		return
	}

	milestone, err := strconv.Atoi(mux.Vars(r)["milestone"])
	if err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz milestone")
		return
	}

	result, err := h.bonusService.ClaimMilestone(claims.UserID, milestone)
	if err != nil {
		log.Warn().Err(err).Int("user_id", claims.UserID).Int("milestone", milestone).Msg("Milestone talebi başarısız")
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, result, "Milestone ödülü verildi")
}
