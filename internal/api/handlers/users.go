// users.go — /api/v1/users: создание пользователя и список пользователей.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/user-admin-module/internal/api/errors"
	"github.com/bigkaa/goartstore/user-admin-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/i18n"
	"github.com/bigkaa/goartstore/user-admin-module/internal/service"
)

// SubmitUser — POST /api/v1/users/{role}?tab_id=….
//
// Статусы ответа:
//   - 201 — пользователь создан, в теле эффекты для оболочки
//   - 400 — ошибки валидации формы (status=invalid)
//   - 409 — для вкладки уже идёт отправка
//   - 422 — backend вернул ошибки по полям
//   - 502 — backend недоступен или вернул ошибку без полей
func (h *APIHandler) SubmitUser(w http.ResponseWriter, r *http.Request) {
	var values model.FormValues
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	res, err := h.submitter.Submit(r.Context(), service.SubmitRequest{
		Owner:  middleware.SubjectFromContext(r.Context()),
		TabID:  r.URL.Query().Get("tab_id"),
		Role:   chi.URLParam(r, "role"),
		Values: &values,
		Lang:   i18n.LangFromContext(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionInFlight):
			apierrors.SubmissionInFlight(w, "Форма уже отправляется")
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка отправки формы", "error", err)
			apierrors.InternalError(w, "Ошибка отправки формы")
		}
		return
	}

	writeJSON(w, submitStatusCode(res), res)
}

// submitStatusCode сопоставляет итог отправки с HTTP-статусом.
func submitStatusCode(res *model.SubmitResult) int {
	switch res.Status {
	case model.SubmitSuccess:
		return http.StatusCreated
	case model.SubmitInvalid:
		return http.StatusBadRequest
	default:
		if res.FieldErrors.HasErrors() {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	}
}

// ListUsers — GET /api/v1/users.
// Параметры запроса сохраняются как текущий фильтр оператора.
func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]string)
	for key, vals := range r.URL.Query() {
		if key == "lang" || len(vals) == 0 || vals[0] == "" {
			continue
		}
		params[key] = vals[0]
	}

	list, err := h.users.List(r.Context(), middleware.SubjectFromContext(r.Context()), params)
	if err != nil {
		if errors.Is(err, service.ErrBackendUnavailable) {
			apierrors.BackendUnavailable(w, "Backend API недоступен")
			return
		}
		h.logger.Error("Ошибка получения списка пользователей", "error", err)
		apierrors.BackendUnavailable(w, "Ошибка получения списка пользователей")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":   list.Data,
		"meta":   list.Meta,
		"params": params,
	})
}
