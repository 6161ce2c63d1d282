package linkedin

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
	"github.com/ibrahim99035/portfolio-server/internal/resource"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/logx"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/mw"
	v1 "github.com/ibrahim99035/portfolio-server/internal/transport/web/v1"
)

// Handler — синглтон-профиль с вложенными массивами
// (experience, education, skills, certifications)
type Handler struct {
	Log *log.Logger
	Svc *resource.Service
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "linkedin.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	b, err := h.Svc.GetSingleton(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			v1.WriteError(w, http.StatusNotFound, "LinkedIn profile not found")
			return
		}
		logx.Error(h.Log, reqID, op, "get failed", err)
		v1.WriteError(w, http.StatusInternalServerError, "Failed to fetch LinkedIn profile")
		return
	}
	v1.WriteRaw(w, http.StatusOK, b)
}

// Upsert создаёт профиль или обновляет самый свежий
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	const op = "linkedin.upsert"
	reqID := mw.RequestIDFromCtx(r.Context())

	p := domain.Payload{}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		v1.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	e, err := h.Svc.Upsert(r.Context(), p)
	if err != nil {
		logx.Error(h.Log, reqID, op, "upsert failed", err)
		v1.WriteError(w, http.StatusInternalServerError, "Failed to save LinkedIn profile")
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "id", e.ID)
	v1.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "linkedin.update"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		v1.WriteError(w, http.StatusNotFound, "LinkedIn profile not found")
		return
	}
	p := domain.Payload{}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		v1.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := h.Svc.Update(r.Context(), id, p, nil)
	if err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "id", id)
		v1.WriteDomainError(w, err,
			"LinkedIn profile not found",
			"Failed to update LinkedIn profile")
		return
	}
	v1.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "linkedin.delete"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		v1.WriteError(w, http.StatusNotFound, "LinkedIn profile not found")
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "id", id)
		v1.WriteDomainError(w, err,
			"LinkedIn profile not found",
			"Failed to delete LinkedIn profile")
		return
	}
	v1.WriteJSON(w, http.StatusOK, map[string]string{"message": "LinkedIn profile deleted successfully"})
}

// AddSub — фабрика: добавление элемента во вложенный массив field
func (h *Handler) AddSub(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "linkedin.add." + field
		reqID := mw.RequestIDFromCtx(r.Context())

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			v1.WriteError(w, http.StatusNotFound, "LinkedIn profile not found")
			return
		}
		item := domain.Payload{}
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			v1.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		e, err := h.Svc.AddSubItem(r.Context(), id, field, item)
		if err != nil {
			logx.Error(h.Log, reqID, op, "add failed", err, "id", id)
			v1.WriteDomainError(w, err,
				"LinkedIn profile not found",
				"Failed to update LinkedIn profile")
			return
		}
		v1.WriteJSON(w, http.StatusOK, e)
	}
}

// UpdateSub — фабрика: patch элемента вложенного массива по его id
func (h *Handler) UpdateSub(field, subParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "linkedin.update." + field
		reqID := mw.RequestIDFromCtx(r.Context())

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			v1.WriteError(w, http.StatusNotFound, "LinkedIn profile not found")
			return
		}
		patch := domain.Payload{}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			v1.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		e, err := h.Svc.UpdateSubItem(r.Context(), id, field, r.PathValue(subParam), patch)
		if err != nil {
			logx.Error(h.Log, reqID, op, "update failed", err, "id", id)
			v1.WriteDomainError(w, err,
				"Item not found",
				"Failed to update LinkedIn profile")
			return
		}
		v1.WriteJSON(w, http.StatusOK, e)
	}
}

// DeleteSub — фабрика: удаление элемента вложенного массива по его id
func (h *Handler) DeleteSub(field, subParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "linkedin.delete." + field
		reqID := mw.RequestIDFromCtx(r.Context())

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			v1.WriteError(w, http.StatusNotFound, "LinkedIn profile not found")
			return
		}

		e, err := h.Svc.DeleteSubItem(r.Context(), id, field, r.PathValue(subParam))
		if err != nil {
			logx.Error(h.Log, reqID, op, "delete failed", err, "id", id)
			v1.WriteDomainError(w, err,
				"Item not found",
				"Failed to update LinkedIn profile")
			return
		}
		v1.WriteJSON(w, http.StatusOK, e)
	}
}
