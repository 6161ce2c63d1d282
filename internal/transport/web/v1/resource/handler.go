package resource

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
	"github.com/ibrahim99035/portfolio-server/internal/resource"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/logx"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/mw"
	v1 "github.com/ibrahim99035/portfolio-server/internal/transport/web/v1"
)

const maxMultipartMem = 32 << 20

// Handler — единый HTTP-слой для всех коллекций; различия ресурсов
// описывает Descriptor сервиса.
type Handler struct {
	Log *log.Logger
	Svc *resource.Service
}

func (h *Handler) d() domain.Descriptor { return h.Svc.Descriptor() }

// List отдаёт тело списка как есть (кеш хранит уже сериализованный ответ)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	op := h.d().Collection + ".list"
	reqID := mw.RequestIDFromCtx(r.Context())

	f := domain.ListFilter{}
	for _, name := range h.d().Filters {
		if v := r.URL.Query().Get(name); v != "" {
			f[name] = v
		}
	}

	b, err := h.Svc.List(r.Context(), f)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteError(w, http.StatusInternalServerError, "Failed to fetch "+h.d().Plural)
		return
	}
	v1.WriteRaw(w, http.StatusOK, b)
}

func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	op := h.d().Collection + ".get"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		v1.WriteError(w, http.StatusNotFound, upperFirst(h.d().Name)+" not found")
		return
	}
	e, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "get failed", err, "id", id)
		v1.WriteDomainError(w, err,
			upperFirst(h.d().Name)+" not found",
			"Failed to fetch "+h.d().Name)
		return
	}
	v1.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	op := h.d().Collection + ".create"
	reqID := mw.RequestIDFromCtx(r.Context())

	p, files, cleanup, err := h.decodeBody(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad body", err)
		v1.WriteError(w, http.StatusBadRequest, h.d().RequiredMsg)
		return
	}
	defer cleanup()

	e, err := h.Svc.Create(r.Context(), p, files)
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err)
		if errors.Is(err, domain.ErrBadParams) {
			v1.WriteError(w, http.StatusBadRequest, h.d().RequiredMsg)
			return
		}
		v1.WriteError(w, http.StatusInternalServerError, "Failed to create "+h.d().Name)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "id", e.ID)
	v1.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	op := h.d().Collection + ".update"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		v1.WriteError(w, http.StatusNotFound, upperFirst(h.d().Name)+" not found")
		return
	}
	p, files, cleanup, err := h.decodeBody(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad body", err, "id", id)
		v1.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer cleanup()

	e, err := h.Svc.Update(r.Context(), id, p, files)
	if err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "id", id)
		v1.WriteDomainError(w, err,
			upperFirst(h.d().Name)+" not found",
			"Failed to update "+h.d().Name)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "id", e.ID)
	v1.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	op := h.d().Collection + ".delete"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		v1.WriteError(w, http.StatusNotFound, upperFirst(h.d().Name)+" not found")
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "id", id)
		v1.WriteDomainError(w, err,
			upperFirst(h.d().Name)+" not found",
			"Failed to delete "+h.d().Name)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "id", id)
	v1.WriteJSON(w, http.StatusOK, map[string]string{
		"message": upperFirst(h.d().Name) + " deleted successfully",
	})
}

// Distinct — фабрика хендлера уникальных значений поля (станции, статусы,
// категории) под фиксированным ключом кеша
func (h *Handler) Distinct(field, cacheKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := h.d().Collection + ".distinct." + field
		reqID := mw.RequestIDFromCtx(r.Context())

		b, err := h.Svc.DistinctCached(r.Context(), field, cacheKey)
		if err != nil {
			logx.Error(h.Log, reqID, op, "distinct failed", err)
			v1.WriteError(w, http.StatusInternalServerError, "Failed to fetch "+field+" values")
			return
		}
		v1.WriteRaw(w, http.StatusOK, b)
	}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	op := h.d().Collection + ".stats"
	reqID := mw.RequestIDFromCtx(r.Context())

	b, err := h.Svc.Stats(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "stats failed", err)
		v1.WriteError(w, http.StatusInternalServerError, "Failed to fetch module stats")
		return
	}
	v1.WriteRaw(w, http.StatusOK, b)
}

type reorderRequest struct {
	Steps []resource.OrderStep `json:"steps"`
}

// Reorder принимает полный новый порядок и возвращает обновлённый список
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	op := h.d().Collection + ".reorder"
	reqID := mw.RequestIDFromCtx(r.Context())

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Steps) == 0 {
		v1.WriteError(w, http.StatusBadRequest, "Steps array is required")
		return
	}
	if err := h.Svc.Reorder(r.Context(), req.Steps); err != nil {
		logx.Error(h.Log, reqID, op, "reorder failed", err)
		v1.WriteError(w, http.StatusInternalServerError, "Failed to reorder "+h.d().Plural)
		return
	}

	b, err := h.Svc.List(r.Context(), nil)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list after reorder failed", err)
		v1.WriteError(w, http.StatusInternalServerError, "Failed to fetch "+h.d().Plural)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "steps", len(req.Steps))
	v1.WriteRaw(w, http.StatusOK, b)
}

func (h *Handler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	op := h.d().Collection + ".toggle-featured"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		v1.WriteError(w, http.StatusNotFound, upperFirst(h.d().Name)+" not found")
		return
	}
	e, err := h.Svc.ToggleFeatured(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "toggle failed", err, "id", id)
		v1.WriteDomainError(w, err,
			upperFirst(h.d().Name)+" not found",
			"Failed to update "+h.d().Name)
		return
	}
	v1.WriteJSON(w, http.StatusOK, e)
}

type clientsRequest struct {
	ClientsUsing *int `json:"clientsUsing"`
}

func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	op := h.d().Collection + ".clients"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		v1.WriteError(w, http.StatusNotFound, upperFirst(h.d().Name)+" not found")
		return
	}
	var req clientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientsUsing == nil || *req.ClientsUsing < 0 {
		v1.WriteError(w, http.StatusBadRequest, "Valid clientsUsing value is required")
		return
	}

	e, err := h.Svc.SetClients(r.Context(), id, *req.ClientsUsing)
	if err != nil {
		logx.Error(h.Log, reqID, op, "set clients failed", err, "id", id)
		v1.WriteDomainError(w, err,
			upperFirst(h.d().Name)+" not found",
			"Failed to update "+h.d().Name)
		return
	}
	v1.WriteJSON(w, http.StatusOK, e)
}

// decodeBody разбирает JSON либо multipart-тело. В multipart поля сущности
// идут JSON-строкой в поле payload или обычными form-полями, файлы — в
// поле из дескриптора. cleanup закрывает открытые файлы и вызывается
// после обработки запроса сервисом.
func (h *Handler) decodeBody(r *http.Request) (domain.Payload, []resource.File, func(), error) {
	noop := func() {}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(ct, "multipart/") {
		p := domain.Payload{}
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return nil, nil, noop, err
		}
		return p, nil, noop, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMem); err != nil {
		return nil, nil, noop, err
	}
	p := domain.Payload{}
	if raw := r.FormValue("payload"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, nil, noop, err
		}
	} else {
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				p[k] = vs[0]
			}
		}
	}

	var (
		files   []resource.File
		closers []io.Closer
	)
	cleanup := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
	for _, fh := range r.MultipartForm.File[h.d().FileField] {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return nil, nil, noop, err
		}
		closers = append(closers, f)
		files = append(files, resource.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}
	return p, files, cleanup, nil
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
