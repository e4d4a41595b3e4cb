package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rubisplatform/rubis-api/internal/models"
)

// decodeJSON request body'sini parse eder, bilinmeyen alanları reddeder
func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// statusForError domain hatalarını HTTP status code'a map'ler.
// Bilinmeyen hatalar 500 döner ve detayı client'a sızdırılmaz.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidWeight),
		errors.Is(err, models.ErrBeneficiaryRequired),
		errors.Is(err, models.ErrInvalidMilestone):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrStreamerNotFound),
		errors.Is(err, models.ErrOpeningNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, models.ErrOpeningAlreadyExists),
		errors.Is(err, models.ErrAlreadyClaimed):
		return http.StatusConflict, err.Error()

	case errors.Is(err, models.ErrOpeningClosed):
		return http.StatusGone, err.Error()

	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrInsufficientValue),
		errors.Is(err, models.ErrMilestoneNotReached):
		return http.StatusUnprocessableEntity, err.Error()

	default:
		return http.StatusInternalServerError, "İşlem tamamlanamadı. Lütfen tekrar deneyin."
	}
}
