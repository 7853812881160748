// Пакет pages — серверные HTML-фрагменты панели (templ).
package pages

import (
	"strconv"

	"github.com/bigkaa/goartstore/user-admin-module/internal/formview"
)

// UserFormData — данные фрагмента формы.
type UserFormData struct {
	View formview.View
	// Action — URL отправки формы
	Action string
	// SearchURL — URL поиска магазинов
	SearchURL string
}

// fieldValue приводит значение черновика к строке для атрибута value.
// Изображения и магазины заполняет скрипт оболочки.
func fieldValue(values map[string]any, name string) string {
	switch x := values[name].(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

func isOnline(values map[string]any) bool {
	online, _ := values["online"].(bool)
	return online
}
