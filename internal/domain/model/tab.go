package model

import "time"

// Tab — вкладка оболочки админ-панели (активное меню).
// Хранится в таблице tabs, данные формы лежат в Data.
type Tab struct {
	// ID — идентификатор вкладки, выдаётся оболочкой
	ID string
	// Owner — sub оператора, которому принадлежит вкладка
	Owner string
	// URL — адрес экрана во вкладке (например, user/add/cook)
	URL string
	// Data — черновик формы
	Data FormDraft
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// UserListParams — текущие параметры фильтра списка пользователей оператора.
// Хранится в таблице user_list_params.
type UserListParams struct {
	// Owner — sub оператора
	Owner string
	// Params — параметры фильтра (role, page, perPage, search, ...)
	Params map[string]string
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// With возвращает копию параметров с заменой одного ключа.
// Пустое значение удаляет ключ.
func (p UserListParams) With(key, value string) UserListParams {
	params := make(map[string]string, len(p.Params)+1)
	for k, v := range p.Params {
		params[k] = v
	}
	if value == "" {
		delete(params, key)
	} else {
		params[key] = value
	}
	p.Params = params
	return p
}
