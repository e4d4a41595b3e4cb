package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/middleware"
	apierrors "github.com/rubisplatform/rubis-api/internal/middleware/errors"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// UserHandler kullanıcı HTTP isteklerini yönetir
type UserHandler struct {
	userService interfaces.UserServiceInterface
}

// NewUserHandler yeni handler oluşturur
func NewUserHandler(userService interfaces.UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register yeni kullanıcı kaydı endpoint'i (public)
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz istek formatı")
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Kullanıcı kaydı başarısız")
		apierrors.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Info().Int("user_id", user.ID).Msg("👤 Yeni kullanıcı kaydedildi")
	apierrors.WriteSuccess(w, http.StatusCreated, user, "Kullanıcı başarıyla kaydedildi")
}

// Login kullanıcı girişi endpoint'i (public)
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "Geçersiz istek formatı")
		return
	}

	response, err := h.userService.Login(&req)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Giriş başarısız")
		apierrors.WriteError(w, http.StatusUnauthorized, "Email veya şifre hatalı")
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, response, "Giriş başarılı")
}

// GetProfile giriş yapmış kullanıcının profili (protected)
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.")
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil {
		status, msg := statusForError(err)
		apierrors.WriteError(w, status, msg)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, user, "")
}
