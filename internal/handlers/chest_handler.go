package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/middleware"
	apierrors "github.com/rubisplatform/rubis-api/internal/middleware/errors"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// ChestHandler sandık HTTP isteklerini yönetir
type ChestHandler struct {
	chestService interfaces.ChestServiceInterface
}

// NewChestHandler yeni handler oluşturur
func NewChestHandler(chestService interfaces.ChestServiceInterface) *ChestHandler {
	return &ChestHandler{chestService: chestService}
}

// openingIDFromPath path'teki {id} değişkenini parse eder
func openingIDFromPath(r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Open yayıncı için sandık açılışı başlatır (protected)
func (h *ChestHandler) Open(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.")
		return
	}

	var req models.OpenChestRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz istek formatı")
		return
	}

	opening, err := h.chestService.Open(&req, claims.UserID)
	if err != nil {
		log.Warn().Err(err).Int("streamer_id", req.StreamerID).Msg("Sandık açılamadı")
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, opening, "Sandık açıldı")
}

// Join izleyiciyi açık sandığa katar (protected).
// Tekrarlı katılım hata değildir; idempotent davranır.
func (h *ChestHandler) Join(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.")
		return
	}

	openingID, ok := openingIDFromPath(r)
	if !ok {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz açılış ID")
		return
	}

	if err := h.chestService.Join(openingID, claims.UserID); err != nil {
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, nil, "Sandığa katıldınız")
}

// Deposit kullanıcının rubis'ini yayıncının sandık havuzuna yatırır
// (protected). Havuz yayıncıya bağlıdır; açılışlar arasında devreder.
func (h *ChestHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.")
		return
	}

	var req models.ChestDepositRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz istek formatı")
		return
	}

	if err := h.chestService.Deposit(&req, claims.UserID); err != nil {
		log.Warn().Err(err).Int("user_id", claims.UserID).Int("streamer_id", req.StreamerID).Msg("Sandık yatırma başarısız")
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, nil, "Rubis sandığa yatırıldı")
}

// Settle sandığı manuel kapatır ve dağıtımı yapar (protected).
// Aynı açılış için ikinci çağrı zararsızdır; already_done döner.
func (h *ChestHandler) Settle(w http.ResponseWriter, r *http.Request) {
	openingID, ok := openingIDFromPath(r)
	if !ok {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz açılış ID")
		return
	}

	result, err := h.chestService.Settle(openingID)
	if err != nil {
		log.Warn().Err(err).Int("opening_id", openingID).Msg("Settlement başarısız")
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, result, "Sandık kapatıldı")
}

// Cancel sandığı dağıtım yapmadan iptal eder (protected)
func (h *ChestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	openingID, ok := openingIDFromPath(r)
	if !ok {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz açılış ID")
		return
	}

	if err := h.chestService.Cancel(openingID); err != nil {
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, nil, "Sandık iptal edildi")
}
