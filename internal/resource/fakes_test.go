package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

// Общие in-memory фейки для тестов сервиса и HTTP-хендлеров.

type fakeRepo struct {
	mu   sync.Mutex
	ents []domain.Entity

	listCalls int
	failList  bool
}

var _ domain.EntityRepo = (*fakeRepo)(nil)

func (f *fakeRepo) Close()                     {}
func (f *fakeRepo) Ping(context.Context) error { return nil }

func (f *fakeRepo) Create(_ context.Context, e domain.Entity) (domain.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	f.ents = append(f.ents, e)
	return e, nil
}

func (f *fakeRepo) ByID(_ context.Context, collection string, id domain.EntityID) (domain.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.ents {
		if e.Collection == collection && e.ID == id {
			e.Payload = domain.ClonePayload(e.Payload)
			return e, nil
		}
	}
	return domain.Entity{}, domain.ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, e domain.Entity) (domain.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, cur := range f.ents {
		if cur.Collection == e.Collection && cur.ID == e.ID {
			e.CreatedAt = cur.CreatedAt
			e.UpdatedAt = time.Now().UTC()
			f.ents[i] = e
			return e, nil
		}
	}
	return domain.Entity{}, domain.ErrNotFound
}

func (f *fakeRepo) Delete(_ context.Context, collection string, id domain.EntityID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.ents {
		if e.Collection == collection && e.ID == id {
			f.ents = append(f.ents[:i], f.ents[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, d domain.Descriptor, flt domain.ListFilter) ([]domain.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failList {
		return nil, errors.New("boom")
	}
	var out []domain.Entity
	for _, e := range f.ents {
		if e.Collection != d.Collection {
			continue
		}
		match := true
		for k, v := range flt {
			if fmt.Sprint(e.Payload[k]) != v {
				match = false
				break
			}
		}
		if match {
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
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out, nil
}

func (f *fakeRepo) Newest(ctx context.Context, collection string) (domain.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *domain.Entity
	for i, e := range f.ents {
		if e.Collection != collection {
			continue
		}
		if best == nil || e.CreatedAt.After(best.CreatedAt) {
			best = &f.ents[i]
		}
	}
	if best == nil {
		return domain.Entity{}, domain.ErrNotFound
	}
	out := *best
	out.Payload = domain.ClonePayload(out.Payload)
	return out, nil
}

func (f *fakeRepo) Distinct(_ context.Context, collection, field string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, e := range f.ents {
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

func (f *fakeRepo) GroupCount(_ context.Context, collection, field string) ([]domain.GroupCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int64{}
	for _, e := range f.ents {
		if e.Collection != collection {
			continue
		}
		if s, ok := e.Payload[field].(string); ok {
			counts[s]++
		}
	}
	var out []domain.GroupCount
	for k, n := range counts {
		out = append(out, domain.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeRepo) SumInt(_ context.Context, collection, field string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, e := range f.ents {
		if e.Collection != collection {
			continue
		}
		if n, ok := domain.IntFrom(e.Payload[field]); ok {
			sum += int64(n)
		}
	}
	return sum, nil
}

func (f *fakeRepo) Count(_ context.Context, collection string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.ents {
		if e.Collection == collection {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) SetOrder(_ context.Context, collection string, id domain.EntityID, ord int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.ents {
		if e.Collection == collection && e.ID == id {
			o := ord
			f.ents[i].Ord = &o
			f.ents[i].Payload["order"] = ord
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte

	failGet bool
}

var _ domain.Cache = (*fakeCache)(nil)

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("redis down")
	}
	return c.data[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, val []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) DelPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }
func (c *fakeCache) Close()                     {}

func (c *fakeCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.data))
	for k := range c.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type fakeMedia struct {
	mu      sync.Mutex
	uploads []string // имена загруженных файлов
	deletes []string // externalId удалённых ассетов

	failUploads map[string]bool // имя файла → падать
	failDelete  bool
}

var _ domain.MediaStorage = (*fakeMedia)(nil)

func (m *fakeMedia) Upload(_ context.Context, r io.Reader, filename, _ string) (domain.MediaRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _ = io.Copy(io.Discard, r)
	if m.failUploads[filename] {
		return domain.MediaRef{}, errors.New("upload failed")
	}
	m.uploads = append(m.uploads, filename)
	return domain.MediaRef{
		URL:        "https://cdn.example/" + filename,
		ExternalID: "portfolio/" + filename,
	}, nil
}

func (m *fakeMedia) Delete(_ context.Context, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, externalID)
	if m.failDelete {
		return errors.New("delete failed")
	}
	return nil
}

func (m *fakeMedia) Ping(context.Context) error { return nil }
