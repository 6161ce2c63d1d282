package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
	"github.com/ibrahim99035/portfolio-server/internal/resource"
)

// --- минимальные фейки хранилища/кеша/медиа ---

type memRepo struct {
	ents []domain.Entity
}

var _ domain.EntityRepo = (*memRepo)(nil)

func (r *memRepo) Close()                     {}
func (r *memRepo) Ping(context.Context) error { return nil }

func (r *memRepo) Create(_ context.Context, e domain.Entity) (domain.Entity, error) {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	r.ents = append(r.ents, e)
	return e, nil
}

func (r *memRepo) ByID(_ context.Context, collection string, id domain.EntityID) (domain.Entity, error) {
	for _, e := range r.ents {
		if e.Collection == collection && e.ID == id {
			e.Payload = domain.ClonePayload(e.Payload)
			return e, nil
		}
	}
	return domain.Entity{}, domain.ErrNotFound
}

func (r *memRepo) Update(_ context.Context, e domain.Entity) (domain.Entity, error) {
	for i, cur := range r.ents {
		if cur.Collection == e.Collection && cur.ID == e.ID {
			r.ents[i] = e
			return e, nil
		}
	}
	return domain.Entity{}, domain.ErrNotFound
}

func (r *memRepo) Delete(_ context.Context, collection string, id domain.EntityID) error {
	for i, e := range r.ents {
		if e.Collection == collection && e.ID == id {
			r.ents = append(r.ents[:i], r.ents[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memRepo) List(_ context.Context, d domain.Descriptor, f domain.ListFilter) ([]domain.Entity, error) {
	var out []domain.Entity
	for _, e := range r.ents {
		if e.Collection == d.Collection {
			out = append(out, e)
		}
	}
	if d.Order == domain.OrderExplicitAsc {
		sort.SliceStable(out, func(i, j int) bool {
			oi, oj := 0, 0
			if out[i].Ord != nil {
				oi = *out[i].Ord
			}
			if out[j].Ord != nil {
				oj = *out[j].Ord
			}
			return oi < oj
		})
	}
	return out, nil
}

func (r *memRepo) Newest(_ context.Context, collection string) (domain.Entity, error) {
	return domain.Entity{}, domain.ErrNotFound
}

func (r *memRepo) Distinct(_ context.Context, collection, field string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, e := range r.ents {
		if e.Collection != collection {
			continue
		}
		if s, ok := e.Payload[field].(string); ok && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *memRepo) GroupCount(context.Context, string, string) ([]domain.GroupCount, error) {
	return nil, errors.New("not used")
}
func (r *memRepo) SumInt(context.Context, string, string) (int64, error) { return 0, nil }
func (r *memRepo) Count(context.Context, string) (int64, error)          { return 0, nil }

func (r *memRepo) SetOrder(_ context.Context, collection string, id domain.EntityID, ord int) error {
	for i, e := range r.ents {
		if e.Collection == collection && e.ID == id {
			o := ord
			r.ents[i].Ord = &o
			r.ents[i].Payload["order"] = ord
			return nil
		}
	}
	return domain.ErrNotFound
}

type memCache struct{ data map[string][]byte }

var _ domain.Cache = (*memCache)(nil)

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) { return c.data[key], nil }
func (c *memCache) Set(_ context.Context, key string, val []byte, _ int) error {
	c.data[key] = val
	return nil
}
func (c *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}
func (c *memCache) DelPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}
func (c *memCache) Ping(context.Context) error { return nil }
func (c *memCache) Close()                     {}

type memMedia struct{ uploads []string }

var _ domain.MediaStorage = (*memMedia)(nil)

func (m *memMedia) Upload(_ context.Context, r io.Reader, filename, _ string) (domain.MediaRef, error) {
	_, _ = io.Copy(io.Discard, r)
	m.uploads = append(m.uploads, filename)
	return domain.MediaRef{URL: "https://cdn.example/" + filename, ExternalID: "portfolio/" + filename}, nil
}
func (m *memMedia) Delete(context.Context, string) error { return nil }
func (m *memMedia) Ping(context.Context) error           { return nil }

func newJourneyMux(t *testing.T) (*http.ServeMux, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	svc := resource.New(log.New(io.Discard, "", 0), domain.Journey, repo,
		&memCache{data: map[string][]byte{}}, &memMedia{}, 3600)
	h := &Handler{Log: log.New(io.Discard, "", 0), Svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/journey", h.List)
	mux.HandleFunc("GET /api/journey/{id}", h.GetOne)
	mux.HandleFunc("POST /api/journey", h.Create)
	mux.HandleFunc("PUT /api/journey/reorder", h.Reorder)
	mux.HandleFunc("PUT /api/journey/{id}", h.Update)
	mux.HandleFunc("DELETE /api/journey/{id}", h.Delete)
	return mux, repo
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestJourney_EndToEnd(t *testing.T) {
	t.Parallel()
	mux, _ := newJourneyMux(t)

	// создание: order по умолчанию 0
	rec := do(mux, http.MethodPost, "/api/journey",
		`{"year":"2021","title":"first job","description":"d","icon":"code","color":"blue"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.EqualValues(t, 0, created["order"])
	id := created["id"].(string)
	require.NotEmpty(t, id)

	rec = do(mux, http.MethodPost, "/api/journey",
		`{"year":"2023","title":"second job","description":"d","icon":"code","color":"red","order":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var second map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	// список отсортирован по order
	rec = do(mux, http.MethodGet, "/api/journey", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "first job", list[0]["title"])

	// reorder меняет порядок и возвращает свежий список
	rec = do(mux, http.MethodPut, "/api/journey/reorder",
		`{"steps":[{"id":"`+id+`","order":5},{"id":"`+second["id"].(string)+`","order":1}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "second job", list[0]["title"])
	assert.EqualValues(t, 5, list[1]["order"])

	// частичное обновление не трогает опущенные поля
	rec = do(mux, http.MethodPut, "/api/journey/"+id, `{"title":"renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "renamed", updated["title"])
	assert.Equal(t, "blue", updated["color"])

	// удаление
	rec = do(mux, http.MethodDelete, "/api/journey/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Journey step deleted successfully"}`, rec.Body.String())

	rec = do(mux, http.MethodGet, "/api/journey/"+id, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Journey step not found"}`, rec.Body.String())
}

func TestJourney_CreateMissingRequired(t *testing.T) {
	t.Parallel()
	mux, repo := newJourneyMux(t)

	rec := do(mux, http.MethodPost, "/api/journey", `{"year":"2021"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Year, title, description, icon, and color are required"}`, rec.Body.String())
	assert.Empty(t, repo.ents)
}

func TestJourney_ReorderWithoutSteps(t *testing.T) {
	t.Parallel()
	mux, _ := newJourneyMux(t)

	for _, body := range []string{`{}`, `{"steps":[]}`, `not json`} {
		rec := do(mux, http.MethodPut, "/api/journey/reorder", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Steps array is required"}`, rec.Body.String())
	}
}

func TestJourney_MalformedIDIsNotFound(t *testing.T) {
	t.Parallel()
	mux, _ := newJourneyMux(t)

	rec := do(mux, http.MethodGet, "/api/journey/not-a-uuid", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Journey step not found"}`, rec.Body.String())
}

// cleanup из decodeBody закрывает файловые хендлы multipart-формы
func TestDecodeBody_CleanupClosesFiles(t *testing.T) {
	t.Parallel()

	svc := resource.New(log.New(io.Discard, "", 0), domain.LandingPages, &memRepo{},
		&memCache{data: map[string][]byte{}}, &memMedia{}, 3600)
	h := &Handler{Log: log.New(io.Discard, "", 0), Svc: svc}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "hero.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/landing-pages", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	// нулевой лимит памяти: файл уходит на диск, Close ощутим
	require.NoError(t, req.ParseMultipartForm(0))

	_, files, cleanup, err := h.decodeBody(req)
	require.NoError(t, err)
	require.Len(t, files, 1)

	one := make([]byte, 1)
	_, err = files[0].Reader.Read(one)
	require.NoError(t, err)

	cleanup()
	_, err = files[0].Reader.Read(one)
	require.Error(t, err, "reader must be closed after cleanup")
}

// multipart: поля формы + файл, URL зеркалится в payload
func TestCreate_Multipart(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	media := &memMedia{}
	svc := resource.New(log.New(io.Discard, "", 0), domain.LandingPages, repo,
		&memCache{data: map[string][]byte{}}, media, 3600)
	h := &Handler{Log: log.New(io.Discard, "", 0), Svc: svc}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("payload", `{"title":"shop","description":"landing"}`))
	fw, err := w.CreateFormFile("image", "hero.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/landing-pages", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "shop", got["title"])
	assert.Equal(t, "https://cdn.example/hero.png", got["image"])
	assert.Equal(t, []string{"hero.png"}, media.uploads)
}
