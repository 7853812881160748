// Пакет handlers — HTTP-обработчики серверных фрагментов панели.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/user-admin-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/formpolicy"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/formview"
	"github.com/bigkaa/goartstore/user-admin-module/internal/i18n"
	"github.com/bigkaa/goartstore/user-admin-module/internal/ui/pages"
)

// DraftSource — начальные значения формы из черновика вкладки.
type DraftSource interface {
	InitialValues(ctx context.Context, owner, tabID string) (model.FormDraft, error)
}

// UserFormHandler — фрагмент формы создания пользователя.
type UserFormHandler struct {
	drafts     DraftSource
	translator i18n.Translator
	now        func() time.Time
	logger     *slog.Logger
}

// NewUserFormHandler создаёт обработчик фрагмента.
func NewUserFormHandler(drafts DraftSource, translator i18n.Translator, logger *slog.Logger) *UserFormHandler {
	return &UserFormHandler{
		drafts:     drafts,
		translator: translator,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "ui.user_form")),
	}
}

// HandleUserForm обрабатывает GET /admin/users/add/{role}?tab_id=….
func (h *UserFormHandler) HandleUserForm(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	tabID := r.URL.Query().Get("tab_id")
	owner := middleware.SubjectFromContext(r.Context())

	values, err := h.drafts.InitialValues(r.Context(), owner, tabID)
	if err != nil {
		h.logger.Error("Ошибка восстановления черновика",
			slog.String("tab_id", tabID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка восстановления черновика", http.StatusInternalServerError)
		return
	}

	schema := formpolicy.BuildSchema(formpolicy.Role(role), h.now())
	view := formview.Build(schema, values, h.translator, i18n.LangFromContext(r.Context()))

	action := "/api/v1/users/" + url.PathEscape(role)
	if tabID != "" {
		action += "?tab_id=" + url.QueryEscape(tabID)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	data := pages.UserFormData{View: view, Action: action, SearchURL: "/api/v1/shops/search"}
	if err := pages.UserForm(data).Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга формы",
			slog.String("role", role),
			slog.String("error", err.Error()),
		)
	}
}
