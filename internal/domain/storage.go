package domain

import (
	"context"
	"io"
)

// MediaStorage — внешний медиа-хост (S3/MinIO).
// Upload возвращает пару {url, externalId}; Delete принимает externalId.
// Ретраев нет: одиночная неудача удаления логируется и прощается.
type MediaStorage interface {
	Upload(ctx context.Context, r io.Reader, filename, contentType string) (MediaRef, error)
	Delete(ctx context.Context, externalID string) error
	Ping(context.Context) error
}
