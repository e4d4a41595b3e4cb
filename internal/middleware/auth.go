package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/auth"
)

// ContextKey middleware'de context için key tipi
type ContextKey string

const UserContextKey ContextKey = "user"

// AuthMiddleware JWT token kontrolü yapar (Gorilla Mux için middleware)
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Authorization header'ını al
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Warn().
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("Authorization header eksik")
			http.Error(w, "Authorization header gerekli", http.StatusUnauthorized)
			return
		}

		// "Bearer " prefix'ini kontrol et
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			log.Warn().
				Str("path", r.URL.Path).
				Msg("Geçersiz Authorization format")
			http.Error(w, "Authorization format: 'Bearer <token>'", http.StatusUnauthorized)
			return
		}

		// Token'ı doğrula
		claims, err := auth.ValidateToken(tokenParts[1])
		if err != nil {
			log.Warn().
				Err(err).
				Str("path", r.URL.Path).
				Msg("Token doğrulama başarısız")
			http.Error(w, "Geçersiz token", http.StatusUnauthorized)
			return
		}

		// User bilgilerini context'e ekle
		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		r = r.WithContext(ctx)

		log.Debug().
			Int("user_id", claims.UserID).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg("🔐 Authentication successful")

		next.ServeHTTP(w, r)
	})
}

// GetClaims context'ten auth claims'i çıkarır
func GetClaims(r *http.Request) (*auth.Claims, bool) {
	claims, ok := r.Context().Value(UserContextKey).(*auth.Claims)
	return claims, ok
}
