// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrSubmissionInFlight — отправка формы для вкладки уже выполняется.
	ErrSubmissionInFlight = errors.New("отправка формы уже выполняется")
	// ErrBackendUnavailable — backend API недоступен.
	ErrBackendUnavailable = errors.New("backend API недоступен")
	// ErrStorageUnavailable — хранилище медиа недоступно.
	ErrStorageUnavailable = errors.New("хранилище медиа недоступно")
)
