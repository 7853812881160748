// shops.go — GET /api/v1/shops/search: варианты для выбора магазина/филиала.
package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/bigkaa/goartstore/user-admin-module/internal/api/errors"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/service"
)

// SearchShops ищет одобренные магазины по строке search.
// Ответ: {"data": [{"label": "...", "value": 1}, ...]}.
func (h *APIHandler) SearchShops(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	opts, err := h.shops.Search(r.Context(), search)
	if err != nil {
		if errors.Is(err, service.ErrBackendUnavailable) {
			apierrors.BackendUnavailable(w, "Поиск магазинов недоступен")
			return
		}
		h.logger.Error("Ошибка поиска магазинов", "search", search, "error", err)
		apierrors.BackendUnavailable(w, "Ошибка поиска магазинов")
		return
	}

	if opts == nil {
		opts = []model.ShopOption{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": opts})
}
