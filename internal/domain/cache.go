package domain

import "context"

// Простой k/v интерфейс с TTL и инвалидацией по шаблону. Реализация — Redis.
// Контракт fail-open: ошибка Get трактуется вызывающим как промах,
// ошибки Set/Del/DelPattern логируются и не прерывают основную операцию.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	Del(ctx context.Context, keys ...string) error
	DelPattern(ctx context.Context, pattern string) error
	Ping(context.Context) error
	Close()
}
