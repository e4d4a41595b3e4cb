package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	apierrors "github.com/rubisplatform/rubis-api/internal/middleware/errors"
)

// RecoveryMiddleware panic'leri yakalar ve 500 döner.
// Ledger transaction'ları kendi defer'larıyla rollback olur; burada
// sadece HTTP yüzeyi korunur.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				// APIError panic'leri kendi status'uyla döner
				if apiErr, ok := recovered.(apierrors.APIError); ok {
					log.Warn().
						Str("path", r.URL.Path).
						Str("error", apiErr.Error()).
						Msg("API error yakalandı")
					apierrors.WriteError(w, apiErr.Status(), apiErr.Error())
					return
				}

				log.Error().
					Interface("recover", recovered).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("stack", string(debug.Stack())).
					Msg("🚨 Handler panikledi")

				apierrors.WriteError(w, http.StatusInternalServerError, "Sunucu hatası. Lütfen tekrar deneyin.")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
