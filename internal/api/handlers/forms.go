// forms.go — GET /api/v1/user-forms/{role}: схема формы и начальные значения.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/user-admin-module/internal/api/errors"
	"github.com/bigkaa/goartstore/user-admin-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/formpolicy"
	"github.com/bigkaa/goartstore/user-admin-module/internal/formview"
	"github.com/bigkaa/goartstore/user-admin-module/internal/i18n"
)

// GetUserForm возвращает поля формы для роли с подписями на языке
// запроса. Если передан tab_id, начальные значения восстанавливаются
// из черновика вкладки.
func (h *APIHandler) GetUserForm(w http.ResponseWriter, r *http.Request) {
	role := formpolicy.Role(chi.URLParam(r, "role"))
	tabID := r.URL.Query().Get("tab_id")
	owner := middleware.SubjectFromContext(r.Context())

	values, err := h.drafts.InitialValues(r.Context(), owner, tabID)
	if err != nil {
		h.logger.Error("Ошибка восстановления черновика", "tab_id", tabID, "error", err)
		apierrors.InternalError(w, "Ошибка восстановления черновика")
		return
	}

	schema := formpolicy.BuildSchema(role, h.now())
	lang := i18n.LangFromContext(r.Context())
	writeJSON(w, http.StatusOK, formview.Build(schema, values, h.translator, lang))
}
