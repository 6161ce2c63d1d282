package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type EntityID = uuid.UUID

// Payload — произвольные поля ресурса; хранится как JSONB
type Payload map[string]any

// MediaRef — ссылка на ассет внешнего медиа-хоста.
// URL отдаётся клиентам, ExternalID нужен для удаления ассета.
type MediaRef struct {
	URL        string `json:"url"`
	ExternalID string `json:"externalId"`
}

// Entity — документ одной из коллекций портфолио.
// ID и таймстемпы проставляет хранилище, клиент их не пишет.
type Entity struct {
	ID         EntityID
	Collection string
	Payload    Payload
	Media      []MediaRef
	Ord        *int // продублированное поле order для сортировки
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MarshalJSON — наружу документ плоский: поля payload + служебные.
// id/createdAt/updatedAt всегда перекрывают одноимённые поля payload.
func (e Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Payload)+4)
	for k, v := range e.Payload {
		out[k] = v
	}
	out["id"] = e.ID
	out["createdAt"] = e.CreatedAt
	out["updatedAt"] = e.UpdatedAt
	if len(e.Media) > 0 {
		out["media"] = e.Media
	}
	return json.Marshal(out)
}

// ClonePayload — неглубокая копия (payload мутируется при merge)
func ClonePayload(p Payload) Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
