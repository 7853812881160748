// avatar.go — загрузка аватара создаваемого пользователя.
package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

// avatarPrefix — префикс имён объектов аватаров в бакете.
const avatarPrefix = "users/"

// ObjectStore — хранилище медиа-объектов.
type ObjectStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	PublicURL(name string) string
}

// AvatarService — приём изображения, уменьшение и запись в хранилище.
type AvatarService struct {
	store   ObjectStore
	maxSize int
	logger  *slog.Logger
}

// NewAvatarService создаёт сервис аватаров.
// maxSize — максимальная сторона изображения в пикселях.
func NewAvatarService(store ObjectStore, maxSize int, logger *slog.Logger) *AvatarService {
	return &AvatarService{
		store:   store,
		maxSize: maxSize,
		logger:  logger.With(slog.String("component", "avatar_service")),
	}
}

// Upload декодирует изображение (jpeg, png, gif), вписывает его в квадрат
// maxSize×maxSize, сохраняет как JPEG под новым именем и возвращает
// дескриптор для поля images формы.
func (s *AvatarService) Upload(ctx context.Context, r io.Reader) (*model.Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: некорректное изображение: %v", ErrValidation, err)
	}

	resized := imaging.Fit(src, s.maxSize, s.maxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("кодирование изображения: %w", err)
	}

	name := avatarPrefix + uuid.NewString() + ".jpg"
	if err := s.store.Put(ctx, name, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "image/jpeg"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	avatarsUploadedTotal.Inc()

	s.logger.Info("Аватар загружен",
		slog.String("name", name),
		slog.String("source_format", format),
		slog.Int("bytes", buf.Len()),
	)
	return &model.Image{Name: name, URL: s.store.PublicURL(name)}, nil
}
