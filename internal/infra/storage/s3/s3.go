package s3

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
	// База публичных ссылок (CDN/reverse-proxy); пусто — строим из endpoint
	PublicURL string
}

// Storage — медиа-хост портфолио поверх S3/MinIO.
// Ключ объекта и есть externalId медиа-ссылки.
type Storage struct {
	cl     *minio.Client
	logger *log.Logger
	bucket string
	public string
}

var _ domain.MediaStorage = (*Storage)(nil)

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}

	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &Storage{cl: cl, logger: logger, bucket: cfg.Bucket, public: public}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		s.logger.Printf("bucket check failed: %v", err)
	}
	return err
}

// Upload кладёт файл под ключ portfolio/<uuid><ext> и возвращает {url, externalId}
func (s *Storage) Upload(ctx context.Context, r io.Reader, filename, contentType string) (domain.MediaRef, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := "portfolio/" + uuid.NewString() + sanitizeExt(filename)

	info, err := s.cl.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Printf("PUT %q failed: %v", key, err)
		return domain.MediaRef{}, err
	}
	s.logger.Printf("PUT %q ok (%d bytes)", key, info.Size)

	return domain.MediaRef{URL: s.public + "/" + key, ExternalID: key}, nil
}

func (s *Storage) Delete(ctx context.Context, externalID string) error {
	err := s.cl.RemoveObject(ctx, s.bucket, externalID, minio.RemoveObjectOptions{})
	if err != nil {
		s.logger.Printf("DELETE %q failed: %v", externalID, err)
		return err
	}
	s.logger.Printf("DELETE %q ok", externalID)
	return nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || len(ext) > 8 {
		return ""
	}
	return url.PathEscape(ext)
}
