package resource

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

// Операции синглтон-профиля и вложенных под-сущностей (массивы
// experience/education/skills/certifications внутри одного документа).
// Read-modify-write массива не защищён от конкурентных писателей —
// допустимо при единственном админе.

// ensureSubIDs выдаёт id элементам вложенных массивов, пришедшим в теле
// без него: без id под-сущность недоступна для точечного PUT/DELETE
func (s *Service) ensureSubIDs(p domain.Payload) {
	for _, field := range s.d.SubFields {
		arr, ok := p[field].([]any)
		if !ok {
			continue
		}
		for _, it := range arr {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if v, _ := m["id"].(string); v == "" {
				m["id"] = uuid.NewString()
			}
		}
	}
}

// GetSingleton отдаёт самый свежий документ коллекции (read-through)
func (s *Service) GetSingleton(ctx context.Context) ([]byte, error) {
	key := s.d.ListCacheKey(nil)
	if b, err := s.cache.Get(ctx, key); err == nil && len(b) > 0 {
		return b, nil
	}

	e, err := s.repo.Newest(ctx, s.d.Collection)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.Printf("cache set %q: %v", key, err)
	}
	return b, nil
}

// Upsert обновляет существующий синглтон или создаёт новый
func (s *Service) Upsert(ctx context.Context, p domain.Payload) (domain.Entity, error) {
	cur, err := s.repo.Newest(ctx, s.d.Collection)
	if errors.Is(err, domain.ErrNotFound) {
		return s.Create(ctx, p, nil)
	}
	if err != nil {
		return domain.Entity{}, err
	}
	return s.Update(ctx, cur.ID, p, nil)
}

// AddSubItem добавляет элемент в массив field; id элементу выдаём сами
func (s *Service) AddSubItem(ctx context.Context, parentID domain.EntityID, field string, item domain.Payload) (domain.Entity, error) {
	cur, err := s.repo.ByID(ctx, s.d.Collection, parentID)
	if err != nil {
		return domain.Entity{}, err
	}

	if item == nil {
		item = domain.Payload{}
	} else {
		item = domain.ClonePayload(item)
	}
	item["id"] = uuid.NewString()

	arr, _ := cur.Payload[field].([]any)
	arr = append(arr, map[string]any(item))
	cur.Payload[field] = arr

	out, err := s.repo.Update(ctx, cur)
	if err != nil {
		return domain.Entity{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

// UpdateSubItem мержит patch в элемент массива по его id
func (s *Service) UpdateSubItem(ctx context.Context, parentID domain.EntityID, field, subID string, patch domain.Payload) (domain.Entity, error) {
	cur, err := s.repo.ByID(ctx, s.d.Collection, parentID)
	if err != nil {
		return domain.Entity{}, err
	}

	arr, _ := cur.Payload[field].([]any)
	found := false
	for i, it := range arr {
		m, ok := it.(map[string]any)
		if !ok || m["id"] != subID {
			continue
		}
		for k, v := range patch {
			if k == "id" {
				continue
			}
			m[k] = v
		}
		arr[i] = m
		found = true
		break
	}
	if !found {
		return domain.Entity{}, domain.ErrNotFound
	}
	cur.Payload[field] = arr

	out, err := s.repo.Update(ctx, cur)
	if err != nil {
		return domain.Entity{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

// DeleteSubItem убирает элемент массива по его id
func (s *Service) DeleteSubItem(ctx context.Context, parentID domain.EntityID, field, subID string) (domain.Entity, error) {
	cur, err := s.repo.ByID(ctx, s.d.Collection, parentID)
	if err != nil {
		return domain.Entity{}, err
	}

	arr, _ := cur.Payload[field].([]any)
	kept := make([]any, 0, len(arr))
	for _, it := range arr {
		if m, ok := it.(map[string]any); ok && m["id"] == subID {
			continue
		}
		kept = append(kept, it)
	}
	if len(kept) == len(arr) {
		return domain.Entity{}, domain.ErrNotFound
	}
	cur.Payload[field] = kept

	out, err := s.repo.Update(ctx, cur)
	if err != nil {
		return domain.Entity{}, err
	}
	s.invalidate(ctx)
	return out, nil
}
