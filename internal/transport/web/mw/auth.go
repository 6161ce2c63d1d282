package mw

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

type AuthDeps struct {
	Tokens domain.TokenManager
}

// OptionalAuth пытается распарсить Bearer-токен; любая неудача — тихо
// продолжаем без аутентификации. Публичные read-эндпоинты обязаны
// отвечать и с мусорным/протухшим токеном.
func OptionalAuth(deps AuthDeps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := deps.Tokens.Parse(r.Context(), raw)
		if err != nil {
			next.ServeHTTP(w, r) // не валидный — идём как неавторизованный
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithClaims(r.Context(), claims)))
	})
}

// RequireAuth пускает дальше только с валидным токеном настроенного админа
func RequireAuth(deps AuthDeps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			unauthorized(w, "Authorization header required")
			return
		}
		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			unauthorized(w, "Token required")
			return
		}
		claims, err := deps.Tokens.Parse(r.Context(), raw)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				unauthorized(w, "Token expired")
				return
			}
			if errors.Is(err, domain.ErrIdentityMismatch) {
				unauthorized(w, "Invalid credentials")
				return
			}
			unauthorized(w, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithClaims(r.Context(), claims)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
