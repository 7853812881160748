// draft.go — черновик формы создания пользователя во вкладке оболочки.
// Оболочка вызывает SaveDraft один раз при уходе с экрана; при возврате
// на вкладку InitialValues восстанавливает форму.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/formpolicy"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/repository"
)

// Ключи черновика с особой обработкой.
const (
	draftKeyBirthday = "birthday"
	draftKeyImage    = "image"
	draftKeyImages   = "images"
	draftKeyOnline   = "online"
	draftKeyGender   = "gender"
)

// DraftService — сохранение и восстановление черновиков формы.
type DraftService struct {
	tabs   repository.TabRepository
	logger *slog.Logger
}

// NewDraftService создаёт сервис черновиков.
func NewDraftService(tabs repository.TabRepository, logger *slog.Logger) *DraftService {
	return &DraftService{
		tabs:   tabs,
		logger: logger.With(slog.String("component", "draft_service")),
	}
}

// SaveDraft сливает текущие значения формы с черновиком вкладки.
// Значения не валидируются. Дата рождения приводится к "YYYY-MM-DD".
// Повторный вызов с теми же значениями даёт тот же результат.
func (s *DraftService) SaveDraft(ctx context.Context, owner, tabID, url string, values model.FormDraft) (*model.Tab, error) {
	if strings.TrimSpace(tabID) == "" {
		return nil, fmt.Errorf("%w: не указан идентификатор вкладки", ErrValidation)
	}

	snapshot := make(model.FormDraft, len(values))
	for k, v := range values {
		snapshot[k] = v
	}
	if v, ok := snapshot[draftKeyBirthday]; ok {
		snapshot[draftKeyBirthday] = serializeBirthday(v)
	}

	tab, err := s.tabs.MergeData(ctx, owner, tabID, url, snapshot)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения черновика: %w", err)
	}
	draftsSavedTotal.Inc()

	s.logger.Debug("Черновик формы сохранён",
		slog.String("tab_id", tabID),
		slog.String("owner", owner),
		slog.Int("fields", len(snapshot)),
	)
	return tab, nil
}

// InitialValues возвращает начальные значения формы для вкладки:
// значения по умолчанию (online=true, gender=male), поверх них — черновик.
// Одиночное изображение из черновика возвращается списком из одного элемента.
func (s *DraftService) InitialValues(ctx context.Context, owner, tabID string) (model.FormDraft, error) {
	initial := model.FormDraft{
		draftKeyOnline: formpolicy.DefaultOnline,
		draftKeyGender: formpolicy.DefaultGender,
	}
	if tabID == "" {
		return initial, nil
	}

	tab, err := s.tabs.Get(ctx, owner, tabID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return initial, nil
		}
		return nil, fmt.Errorf("ошибка загрузки черновика: %w", err)
	}

	values := initial.Merge(tab.Data)

	if v, ok := values[draftKeyBirthday]; ok {
		if d, ok := parseDraftDate(v); ok {
			values[draftKeyBirthday] = d.Format(formpolicy.DateFormat)
		} else {
			delete(values, draftKeyBirthday)
		}
	}

	if img, ok := values[draftKeyImage]; ok {
		if _, hasList := values[draftKeyImages]; !hasList && img != nil {
			values[draftKeyImages] = []any{img}
		}
		delete(values, draftKeyImage)
	}

	return values, nil
}

// serializeBirthday приводит дату рождения к "YYYY-MM-DD".
// Значение, которое не удаётся разобрать как дату, сохраняется как есть.
func serializeBirthday(v any) any {
	if d, ok := parseDraftDate(v); ok {
		return d.Format(formpolicy.DateFormat)
	}
	return v
}

// parseDraftDate разбирает дату из черновика: "YYYY-MM-DD", RFC 3339
// или JSON-строку с одним из этих форматов.
func parseDraftDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return time.Time{}, false
		}
		s = inner
	}
	if s == "" {
		return time.Time{}, false
	}

	if d, err := time.Parse(formpolicy.DateFormat, s); err == nil {
		return d, true
	}
	// Календарная дата берётся в смещении клиента
	if d, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return d, true
	}
	return time.Time{}, false
}
