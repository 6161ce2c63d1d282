package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

// Формат ответов: успех — ресурс как есть (объект или массив),
// ошибка — {"error": "<текст>"} со статусом 400/401/404/500.

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRaw пишет уже сериализованное тело (кешированные списки)
func WriteRaw(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteDomainError маппит бизнес-ошибку на статус; msg4xx — текст для
// клиентских ошибок (400/404), msg500 — для всего остального
func WriteDomainError(w http.ResponseWriter, err error, msg4xx, msg500 string) {
	switch {
	case errors.Is(err, domain.ErrBadParams):
		WriteError(w, http.StatusBadRequest, msg4xx)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, msg4xx)
	case errors.Is(err, domain.ErrUnauth):
		WriteError(w, http.StatusUnauthorized, msg4xx)
	default:
		WriteError(w, http.StatusInternalServerError, msg500)
	}
}
