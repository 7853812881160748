// Пакет mediastore — хранилище аватаров пользователей в S3-совместимом
// хранилище (MinIO).
package mediastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrUploadFailed — не удалось записать объект.
var ErrUploadFailed = errors.New("ошибка загрузки объекта")

// Config — параметры подключения к MinIO.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store — бакет аватаров в MinIO.
type Store struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
	logger   *slog.Logger
}

// New создаёт клиент MinIO. Соединение не открывается до первого запроса.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("создание клиента MinIO: %w", err)
	}

	return &Store{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
		logger:   logger.With(slog.String("component", "mediastore")),
	}, nil
}

// EnsureBucket создаёт бакет, если его нет.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("проверка бакета %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("создание бакета %s: %w", s.bucket, err)
	}
	s.logger.Info("Бакет создан", slog.String("bucket", s.bucket))
	return nil
}

// Put записывает объект.
func (s *Store) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return nil
}

// PublicURL возвращает адрес объекта для предпросмотра.
func (s *Store) PublicURL(name string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   s.endpoint,
		Path:   "/" + s.bucket + "/" + name,
	}).String()
}

// Name — имя проверки готовности.
func (s *Store) Name() string {
	return "minio"
}

// CheckReady проверяет доступность бакета.
func (s *Store) CheckReady(ctx context.Context) (string, string) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "fail", err.Error()
	}
	if !exists {
		return "fail", "бакет " + s.bucket + " не найден"
	}
	return "ok", "MinIO доступен"
}
