package health

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ibrahim99035/portfolio-server/internal/transport/web/logx"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/mw"
	v1 "github.com/ibrahim99035/portfolio-server/internal/transport/web/v1"
)

type Pinger interface {
	Ping(context.Context) error
}

type Handler struct {
	Log     *log.Logger
	DB      Pinger
	Cache   Pinger
	Storage Pinger
}

// Liveness — жив ли процесс, без зависимостей
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	const op = "health.liveness"
	reqID := mw.RequestIDFromCtx(r.Context())

	logx.Info(h.Log, reqID, op, "ok")
	v1.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness — готовность с пингом БД, Redis и медиа-хоста
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "db ping failed", err)
		v1.WriteError(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}
	if err := h.Cache.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "cache ping failed", err)
		v1.WriteError(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}
	if err := h.Storage.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "storage ping failed", err)
		v1.WriteError(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}

	logx.Info(h.Log, reqID, op, "ready")
	v1.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
