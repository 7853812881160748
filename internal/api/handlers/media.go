// media.go — POST /api/v1/media/users: загрузка аватара (multipart, поле "file").
package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/bigkaa/goartstore/user-admin-module/internal/api/errors"
	"github.com/bigkaa/goartstore/user-admin-module/internal/service"
)

// defaultMaxUploadBytes — ограничение тела загрузки по умолчанию.
const defaultMaxUploadBytes = 10 << 20

// avatarFormField — имя поля multipart с файлом.
const avatarFormField = "file"

// UploadAvatar принимает изображение и возвращает {name, url} для поля images.
func (h *APIHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, _, err := r.FormFile(avatarFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.ValidationError(w, "Файл слишком большой")
			return
		}
		apierrors.ValidationError(w, "Ожидается multipart-поле file с изображением")
		return
	}
	defer file.Close()

	img, err := h.avatars.Upload(r.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, "Файл не является изображением")
		case errors.Is(err, service.ErrStorageUnavailable):
			apierrors.StorageUnavailable(w, "Хранилище медиа недоступно")
		default:
			h.logger.Error("Ошибка загрузки аватара", "error", err)
			apierrors.InternalError(w, "Ошибка загрузки аватара")
		}
		return
	}

	writeJSON(w, http.StatusCreated, img)
}
