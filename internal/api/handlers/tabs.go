// tabs.go — /api/v1/tabs: вкладки оператора и черновики формы.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/user-admin-module/internal/api/errors"
	"github.com/bigkaa/goartstore/user-admin-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/service"
)

// tabResponse — вкладка в ответе API.
type tabResponse struct {
	ID        string          `json:"id"`
	URL       string          `json:"url,omitempty"`
	Data      model.FormDraft `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func mapTab(t *model.Tab) tabResponse {
	data := t.Data
	if data == nil {
		data = model.FormDraft{}
	}
	return tabResponse{
		ID:        t.ID,
		URL:       t.URL,
		Data:      data,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// draftRequest — тело PUT /api/v1/tabs/{tabID}/draft.
type draftRequest struct {
	URL    string          `json:"url"`
	Values model.FormDraft `json:"values"`
}

// SaveDraft — PUT /api/v1/tabs/{tabID}/draft.
// Сливает текущие значения формы с черновиком вкладки.
func (h *APIHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	tab, err := h.drafts.SaveDraft(r.Context(), middleware.SubjectFromContext(r.Context()), tabID, req.URL, req.Values)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка сохранения черновика", "tab_id", tabID, "error", err)
		apierrors.InternalError(w, "Ошибка сохранения черновика")
		return
	}

	writeJSON(w, http.StatusOK, mapTab(tab))
}

// ListTabs — GET /api/v1/tabs.
func (h *APIHandler) ListTabs(w http.ResponseWriter, r *http.Request) {
	tabs, err := h.tabs.List(r.Context(), middleware.SubjectFromContext(r.Context()))
	if err != nil {
		h.logger.Error("Ошибка получения вкладок", "error", err)
		apierrors.InternalError(w, "Ошибка получения вкладок")
		return
	}

	items := make([]tabResponse, len(tabs))
	for i, t := range tabs {
		items[i] = mapTab(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetTab — GET /api/v1/tabs/{tabID}.
func (h *APIHandler) GetTab(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")

	tab, err := h.tabs.Get(r.Context(), middleware.SubjectFromContext(r.Context()), tabID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Вкладка не найдена")
			return
		}
		h.logger.Error("Ошибка получения вкладки", "tab_id", tabID, "error", err)
		apierrors.InternalError(w, "Ошибка получения вкладки")
		return
	}

	writeJSON(w, http.StatusOK, mapTab(tab))
}

// RemoveTab — DELETE /api/v1/tabs/{tabID}. Закрывает вкладку с черновиком.
func (h *APIHandler) RemoveTab(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")

	if err := h.tabs.Remove(r.Context(), middleware.SubjectFromContext(r.Context()), tabID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Вкладка не найдена")
			return
		}
		h.logger.Error("Ошибка закрытия вкладки", "tab_id", tabID, "error", err)
		apierrors.InternalError(w, "Ошибка закрытия вкладки")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
