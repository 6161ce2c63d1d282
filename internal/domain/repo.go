package domain

import "context"

// GroupCount — строка агрегата "значение поля → количество документов"
type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// EntityRepo — хранилище документов (Postgres).
// Отсутствие документа везде возвращается как ErrNotFound.
type EntityRepo interface {
	Close()
	Ping(context.Context) error

	Create(ctx context.Context, e Entity) (Entity, error)
	ByID(ctx context.Context, collection string, id EntityID) (Entity, error)
	Update(ctx context.Context, e Entity) (Entity, error)
	Delete(ctx context.Context, collection string, id EntityID) error

	List(ctx context.Context, d Descriptor, f ListFilter) ([]Entity, error)
	Newest(ctx context.Context, collection string) (Entity, error)

	// Агрегаты по полям payload
	Distinct(ctx context.Context, collection, field string) ([]string, error)
	GroupCount(ctx context.Context, collection, field string) ([]GroupCount, error)
	SumInt(ctx context.Context, collection, field string) (int64, error)
	Count(ctx context.Context, collection string) (int64, error)

	// Точечное обновление order (bulk reorder)
	SetOrder(ctx context.Context, collection string, id EntityID, ord int) error
}
