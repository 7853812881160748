// handler.go — обработчик REST API User Admin Module.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/i18n"
	"github.com/bigkaa/goartstore/user-admin-module/internal/service"
)

// DraftStore — черновики формы во вкладках.
type DraftStore interface {
	SaveDraft(ctx context.Context, owner, tabID, url string, values model.FormDraft) (*model.Tab, error)
	InitialValues(ctx context.Context, owner, tabID string) (model.FormDraft, error)
}

// TabStore — вкладки оператора.
type TabStore interface {
	Get(ctx context.Context, owner, tabID string) (*model.Tab, error)
	List(ctx context.Context, owner string) ([]*model.Tab, error)
	Remove(ctx context.Context, owner, tabID string) error
}

// ShopSearcher — поиск магазинов для выпадающего списка.
type ShopSearcher interface {
	Search(ctx context.Context, text string) ([]model.ShopOption, error)
}

// Submitter — отправка формы.
type Submitter interface {
	Submit(ctx context.Context, req service.SubmitRequest) (*model.SubmitResult, error)
}

// UserLister — список пользователей с параметрами оператора.
type UserLister interface {
	List(ctx context.Context, owner string, params map[string]string) (*model.UserList, error)
}

// AvatarUploader — загрузка аватара.
type AvatarUploader interface {
	Upload(ctx context.Context, r io.Reader) (*model.Image, error)
}

// Deps — зависимости APIHandler.
type Deps struct {
	Drafts     DraftStore
	Tabs       TabStore
	Shops      ShopSearcher
	Submitter  Submitter
	Users      UserLister
	Avatars    AvatarUploader
	Translator i18n.Translator
	// MaxUploadBytes — максимальный размер тела загрузки аватара
	MaxUploadBytes int64
}

// APIHandler — обработчик REST API.
type APIHandler struct {
	drafts         DraftStore
	tabs           TabStore
	shops          ShopSearcher
	submitter      Submitter
	users          UserLister
	avatars        AvatarUploader
	translator     i18n.Translator
	maxUploadBytes int64
	now            func() time.Time
	logger         *slog.Logger
}

// NewAPIHandler создаёт обработчик API.
func NewAPIHandler(deps Deps, logger *slog.Logger) *APIHandler {
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &APIHandler{
		drafts:         deps.Drafts,
		tabs:           deps.Tabs,
		shops:          deps.Shops,
		submitter:      deps.Submitter,
		users:          deps.Users,
		avatars:        deps.Avatars,
		translator:     deps.Translator,
		maxUploadBytes: maxUpload,
		now:            time.Now,
		logger:         logger.With(slog.String("component", "api_handler")),
	}
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
