package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

// Service — общий для всех семи ресурсов путь чтения/записи:
// чтение — optional-auth сверху, read-through кеш, фолбэк в хранилище;
// запись — валидация, загрузка медиа, сохранение, инвалидация по префиксу.
// Кеш и медиа-хост best-effort: их ошибки логируются и не прерывают запрос.
type Service struct {
	log   *log.Logger
	d     domain.Descriptor
	repo  domain.EntityRepo
	cache domain.Cache
	media domain.MediaStorage
	ttl   int // секунды
}

func New(logger *log.Logger, d domain.Descriptor, repo domain.EntityRepo, cache domain.Cache, media domain.MediaStorage, ttlSeconds int) *Service {
	return &Service{log: logger, d: d, repo: repo, cache: cache, media: media, ttl: ttlSeconds}
}

func (s *Service) Descriptor() domain.Descriptor { return s.d }

// File — один файл из multipart-запроса
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// List возвращает готовое JSON-тело списка.
// В кеше лежат сериализованные ответы, не сущности: хит отдаётся как есть.
func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]byte, error) {
	key := s.d.ListCacheKey(f)
	if b, err := s.cache.Get(ctx, key); err == nil && len(b) > 0 {
		return b, nil
	}

	ents, err := s.repo.List(ctx, s.d, f)
	if err != nil {
		return nil, err
	}
	if ents == nil {
		ents = []domain.Entity{}
	}
	b, err := json.Marshal(ents)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.Printf("cache set %q: %v", key, err)
	}
	return b, nil
}

// GetByID всегда идёт в хранилище, единичные документы не кешируются
func (s *Service) GetByID(ctx context.Context, id domain.EntityID) (domain.Entity, error) {
	return s.repo.ByID(ctx, s.d.Collection, id)
}

func (s *Service) Create(ctx context.Context, p domain.Payload, files []File) (domain.Entity, error) {
	if p == nil {
		p = domain.Payload{}
	} else {
		p = domain.ClonePayload(p)
	}
	stripReserved(p)

	// Валидация до любых сторонних вызовов: при отказе не остаётся ни
	// документа, ни осиротевших ассетов.
	if miss := domain.MissingRequired(p, s.d.Required, s.requiredSkip(len(files) > 0)); miss != "" {
		return domain.Entity{}, fmt.Errorf("%w: missing %s", domain.ErrBadParams, miss)
	}

	refs, names := s.uploadAll(ctx, files)
	s.mirror(p, refs, names)
	s.ensureSubIDs(p)
	if s.d.DeriveOnCreate != nil {
		s.d.DeriveOnCreate(p)
	}
	for k, v := range s.d.Defaults {
		if _, ok := p[k]; !ok {
			p[k] = v
		}
	}

	e := domain.Entity{Collection: s.d.Collection, Payload: p, Media: refs}
	promoteOrder(s.d, &e)

	out, err := s.repo.Create(ctx, e)
	if err != nil {
		return domain.Entity{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

// Update мержит только присланные поля; опущенные не сбрасываются.
// Новые файлы вытесняют старые ассеты, старые удаляются best-effort
// уже после сохранения документа.
func (s *Service) Update(ctx context.Context, id domain.EntityID, p domain.Payload, files []File) (domain.Entity, error) {
	cur, err := s.repo.ByID(ctx, s.d.Collection, id)
	if err != nil {
		return domain.Entity{}, err
	}

	if p != nil {
		p = domain.ClonePayload(p)
		stripReserved(p)
		for k, v := range p {
			cur.Payload[k] = v
		}
		s.ensureSubIDs(cur.Payload)
	}

	var old []domain.MediaRef
	refs, names := s.uploadAll(ctx, files)
	if len(refs) > 0 {
		old = cur.Media
		s.mirror(cur.Payload, refs, names)
		cur.Media = refs
	}
	promoteOrder(s.d, &cur)

	out, err := s.repo.Update(ctx, cur)
	if err != nil {
		return domain.Entity{}, err
	}
	s.deleteAssets(ctx, old)
	s.invalidate(ctx)
	return out, nil
}

// Delete удаляет документ; по одной попытке удаления на каждый ассет,
// неудача не мешает удалению документа.
func (s *Service) Delete(ctx context.Context, id domain.EntityID) error {
	cur, err := s.repo.ByID(ctx, s.d.Collection, id)
	if err != nil {
		return err
	}
	s.deleteAssets(ctx, cur.Media)
	if err := s.repo.Delete(ctx, s.d.Collection, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DistinctCached — уникальные значения поля payload под своим ключом кеша
func (s *Service) DistinctCached(ctx context.Context, field, key string) ([]byte, error) {
	if b, err := s.cache.Get(ctx, key); err == nil && len(b) > 0 {
		return b, nil
	}
	vals, err := s.repo.Distinct(ctx, s.d.Collection, field)
	if err != nil {
		return nil, err
	}
	if vals == nil {
		vals = []string{}
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.Printf("cache set %q: %v", key, err)
	}
	return b, nil
}

// ModuleStats — агрегат по showcase-модулям
type ModuleStats struct {
	TotalModules      int64               `json:"totalModules"`
	ModulesByCategory []domain.GroupCount `json:"modulesByCategory"`
	ModulesByStatus   []domain.GroupCount `json:"modulesByStatus"`
	TotalClients      int64               `json:"totalClients"`
}

func (s *Service) Stats(ctx context.Context) ([]byte, error) {
	key := s.d.Collection + ":stats"
	if b, err := s.cache.Get(ctx, key); err == nil && len(b) > 0 {
		return b, nil
	}

	total, err := s.repo.Count(ctx, s.d.Collection)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.repo.GroupCount(ctx, s.d.Collection, "category")
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.GroupCount(ctx, s.d.Collection, "status")
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.SumInt(ctx, s.d.Collection, "clientsUsing")
	if err != nil {
		return nil, err
	}

	if byCategory == nil {
		byCategory = []domain.GroupCount{}
	}
	if byStatus == nil {
		byStatus = []domain.GroupCount{}
	}
	b, err := json.Marshal(ModuleStats{
		TotalModules:      total,
		ModulesByCategory: byCategory,
		ModulesByStatus:   byStatus,
		TotalClients:      clients,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.Printf("cache set %q: %v", key, err)
	}
	return b, nil
}

// OrderStep — элемент bulk-переупорядочивания
type OrderStep struct {
	ID    domain.EntityID `json:"id"`
	Order int             `json:"order"`
}

// Reorder обновляет order подокументно, без транзакции: писатель один (админ).
// Неизвестные id пропускаются, как и в остальных bulk-операциях.
func (s *Service) Reorder(ctx context.Context, steps []OrderStep) error {
	for _, st := range steps {
		if err := s.repo.SetOrder(ctx, s.d.Collection, st.ID, st.Order); err != nil {
			s.log.Printf("reorder %s: %v", st.ID, err)
		}
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) ToggleFeatured(ctx context.Context, id domain.EntityID) (domain.Entity, error) {
	cur, err := s.repo.ByID(ctx, s.d.Collection, id)
	if err != nil {
		return domain.Entity{}, err
	}
	// plain-form multipart присылает флаг строкой
	featured := false
	switch v := cur.Payload["featured"].(type) {
	case bool:
		featured = v
	case string:
		featured = v == "true"
	}
	cur.Payload["featured"] = !featured

	out, err := s.repo.Update(ctx, cur)
	if err != nil {
		return domain.Entity{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

func (s *Service) SetClients(ctx context.Context, id domain.EntityID, n int) (domain.Entity, error) {
	cur, err := s.repo.ByID(ctx, s.d.Collection, id)
	if err != nil {
		return domain.Entity{}, err
	}
	cur.Payload["clientsUsing"] = n

	out, err := s.repo.Update(ctx, cur)
	if err != nil {
		return domain.Entity{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

// ---- внутреннее ----

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.DelPattern(ctx, s.d.CachePattern()); err != nil {
		s.log.Printf("cache invalidate %q: %v", s.d.CachePattern(), err)
	}
}

// uploadAll загружает файлы с изоляцией ошибок по отдельным файлам:
// неудачный аплоуд логируется и пропускается, запрос продолжается.
func (s *Service) uploadAll(ctx context.Context, files []File) ([]domain.MediaRef, []string) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.d.Media == domain.MediaSingle && len(files) > 1 {
		files = files[:1]
	}
	refs := make([]domain.MediaRef, 0, len(files))
	names := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := s.media.Upload(ctx, f.Reader, f.Name, f.ContentType)
		if err != nil {
			s.log.Printf("upload %q failed: %v", f.Name, err)
			continue
		}
		refs = append(refs, ref)
		names = append(names, f.Name)
	}
	return refs, names
}

// mirror отражает URL загруженных ассетов в клиентские поля payload
func (s *Service) mirror(p domain.Payload, refs []domain.MediaRef, names []string) {
	if len(refs) == 0 {
		return
	}
	switch s.d.Media {
	case domain.MediaSingle:
		if s.d.MediaField != "" {
			p[s.d.MediaField] = refs[0].URL
		}
		if s.d.NameField != "" {
			p[s.d.NameField] = names[0]
		}
	case domain.MediaMulti:
		urls := make([]any, 0, len(refs))
		for _, ref := range refs {
			urls = append(urls, ref.URL)
		}
		p[s.d.MediaField] = urls
	}
}

func (s *Service) deleteAssets(ctx context.Context, refs []domain.MediaRef) {
	for _, ref := range refs {
		if ref.ExternalID == "" {
			continue
		}
		if err := s.media.Delete(ctx, ref.ExternalID); err != nil {
			s.log.Printf("delete asset %q failed: %v", ref.ExternalID, err)
		}
	}
}

func (s *Service) requiredSkip(hasFiles bool) string {
	if hasFiles {
		return s.d.MediaField
	}
	return ""
}

func promoteOrder(d domain.Descriptor, e *domain.Entity) {
	if d.Order != domain.OrderExplicitAsc {
		return
	}
	if n, ok := domain.IntFrom(e.Payload["order"]); ok {
		e.Ord = &n
	}
}

// stripReserved убирает служебные поля: их проставляет хранилище
func stripReserved(p domain.Payload) {
	delete(p, "id")
	delete(p, "createdAt")
	delete(p, "updatedAt")
	delete(p, "media")
}
