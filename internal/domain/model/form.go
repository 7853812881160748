// Пакет model — доменные модели User Admin Module.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// FormDraft — снимок значений формы (поле → значение), возможно
// неполный и невалидный. Хранится в данных вкладки.
// Дата рождения хранится строкой "YYYY-MM-DD".
type FormDraft map[string]any

// Merge возвращает новый черновик: ключи next перекрывают ключи d,
// непересекающиеся ключи d сохраняются.
func (d FormDraft) Merge(next FormDraft) FormDraft {
	out := make(FormDraft, len(d)+len(next))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range next {
		out[k] = v
	}
	return out
}

// Image — ссылка на загруженный аватар.
type Image struct {
	// Name — имя объекта в хранилище медиа, отправляется в backend
	Name string `json:"name"`
	// URL — адрес для предпросмотра (опционально)
	URL string `json:"url,omitempty"`
}

// ShopOption — вариант выбора магазина: подпись и идентификатор.
type ShopOption struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// ShopSelection — выбранные магазины. Виджет поиска присылает одиночный
// объект {label, value} в режиме single и список в режиме multiple.
type ShopSelection struct {
	Multiple bool
	Options  []ShopOption
}

// UnmarshalJSON принимает null, одиночный объект или список объектов.
func (s *ShopSelection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ShopSelection{}
		return nil
	case data[0] == '[':
		var opts []ShopOption
		if err := json.Unmarshal(data, &opts); err != nil {
			return fmt.Errorf("shop_id: %w", err)
		}
		*s = ShopSelection{Multiple: true, Options: opts}
		return nil
	default:
		var opt ShopOption
		if err := json.Unmarshal(data, &opt); err != nil {
			return fmt.Errorf("shop_id: %w", err)
		}
		*s = ShopSelection{Options: []ShopOption{opt}}
		return nil
	}
}

// MarshalJSON сохраняет форму, в которой значение пришло от виджета.
func (s ShopSelection) MarshalJSON() ([]byte, error) {
	if s.Multiple {
		if s.Options == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(s.Options)
	}
	if len(s.Options) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(s.Options[0])
}

// IsEmpty — ничего не выбрано.
func (s *ShopSelection) IsEmpty() bool {
	return s == nil || len(s.Options) == 0
}

// IDs возвращает идентификаторы выбранных магазинов независимо от режима.
func (s *ShopSelection) IDs() []int64 {
	if s.IsEmpty() {
		return nil
	}
	ids := make([]int64, len(s.Options))
	for i, o := range s.Options {
		ids[i] = o.Value
	}
	return ids
}

// FormValues — типизированные значения формы при отправке.
type FormValues struct {
	Firstname            string              `json:"firstname" validate:"required,nonblank,trimmin=2"`
	Lastname             string              `json:"lastname" validate:"required,nonblank,trimmin=2"`
	Phone                *int64              `json:"phone" validate:"required,min=0"`
	Birthday             *openapi_types.Date `json:"birthday"`
	Gender               string              `json:"gender" validate:"required,oneof=male female"`
	UserEmail            string              `json:"user_email" validate:"required,email"`
	Password             string              `json:"password" validate:"required,min=6"`
	PasswordConfirmation string              `json:"password_confirmation" validate:"required,eqfield=Password"`
	Images               []Image             `json:"images"`
	ShopID               *ShopSelection      `json:"shop_id"`
	Online               *bool               `json:"online"`

	Height     *float64 `json:"height,omitempty"`
	Kg         *float64 `json:"kg,omitempty"`
	Length     *float64 `json:"length,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	PricePerKm *float64 `json:"price_per_km,omitempty"`
	Width      *float64 `json:"width,omitempty"`
}

// UnmarshalJSON разбирает значения формы. Пустая строка и null в birthday
// означают «дата не выбрана».
func (v *FormValues) UnmarshalJSON(data []byte) error {
	type plain FormValues
	aux := struct {
		*plain
		Birthday json.RawMessage `json:"birthday"`
	}{plain: (*plain)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	v.Birthday = nil
	raw := bytes.TrimSpace(aux.Birthday)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) == "" {
		return nil
	}
	var d openapi_types.Date
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("birthday: %w", err)
	}
	v.Birthday = &d
	return nil
}

// SubmissionPayload — тело запроса создания пользователя в backend.
// Строится заново при каждой отправке и нигде не хранится.
type SubmissionPayload struct {
	Firstname            string              `json:"firstname"`
	Lastname             string              `json:"lastname"`
	Email                openapi_types.Email `json:"email"`
	Phone                *int64              `json:"phone,omitempty"`
	Birthday             *openapi_types.Date `json:"birthday,omitempty"`
	Gender               string              `json:"gender"`
	PasswordConfirmation string              `json:"password_confirmation"`
	Password             string              `json:"password"`
	Images               []string            `json:"images,omitempty"`
	ShopID               []int64             `json:"shop_id,omitempty"`
	Role                 string              `json:"role,omitempty"`
	Online               int                 `json:"online"`
	Height               *float64            `json:"height,omitempty"`
	Kg                   *float64            `json:"kg,omitempty"`
	Length               *float64            `json:"length,omitempty"`
	Price                *float64            `json:"price,omitempty"`
	PricePerKm           *float64            `json:"price_per_km,omitempty"`
	Width                *float64            `json:"width,omitempty"`
}

// FieldErrors — ошибки по полям (поле → список сообщений).
type FieldErrors map[string][]string

// Add добавляет сообщение к полю.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// HasErrors — есть хотя бы одна ошибка.
func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// First возвращает первое сообщение поля или пустую строку.
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}
