package formpolicy

import (
	"time"
)

// FieldKind — тип виджета поля.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindSelect   FieldKind = "select"
	KindEmail    FieldKind = "email"
	KindPassword FieldKind = "password"
	KindImage    FieldKind = "image"
	KindSearch   FieldKind = "search_select"
	KindSwitch   FieldKind = "switch"
)

// DateFormat — формат даты в черновике, в схеме и в запросе к backend.
const DateFormat = "2006-01-02"

// Field — описание одного поля формы.
type Field struct {
	Name     string    `json:"name"`
	LabelKey string    `json:"label_key"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	// ErrorKey — ключ, под которым backend возвращает ошибки поля
	ErrorKey string     `json:"error_key"`
	Options  []string   `json:"options,omitempty"`
	Mode     SelectMode `json:"mode,omitempty"`
	// Для даты рождения: первая запрещённая дата, последняя допустимая
	// и значение календаря по умолчанию
	DisabledFrom       string `json:"disabled_from,omitempty"`
	MaxDate            string `json:"max_date,omitempty"`
	DefaultPickerValue string `json:"default_picker_value,omitempty"`
	// Для поиска: i18n-ключ placeholder и URL поиска
	PlaceholderKey string `json:"placeholder_key,omitempty"`
	// Для чисел: минимальное значение
	Min *int64 `json:"min,omitempty"`
}

// Schema — полная схема формы для роли.
type Schema struct {
	Role        Role             `json:"role"`
	Fields      []Field          `json:"fields"`
	Association AssociationField `json:"association"`
	Defaults    map[string]any   `json:"defaults"`
}

// Значения формы по умолчанию.
const (
	DefaultGender = "male"
	DefaultOnline = true
)

// Genders — допустимые значения пола.
var Genders = []string{"male", "female"}

// errorKeys — поля, ошибки которых backend возвращает под другим ключом.
var errorKeys = map[string]string{
	"user_email": "email",
}

// ErrorKey возвращает ключ ошибок backend для поля формы.
func ErrorKey(field string) string {
	if k, ok := errorKeys[field]; ok {
		return k
	}
	return field
}

// FormField возвращает имя поля формы по ключу ошибки backend.
func FormField(errorKey string) string {
	for field, key := range errorKeys {
		if key == errorKey {
			return field
		}
	}
	return errorKey
}

// BuildSchema строит схему формы для роли на момент now.
// Порядок полей совпадает с порядком отображения.
func BuildSchema(role Role, now time.Time) Schema {
	adult := AdultCutoff(now)
	cutoff := adult.Format(DateFormat)
	zero := int64(0)

	fields := []Field{
		{Name: "images", LabelKey: "avatar", Kind: KindImage, Required: true},
		{Name: "firstname", LabelKey: "firstname", Kind: KindText, Required: true},
		{Name: "lastname", LabelKey: "lastname", Kind: KindText, Required: true},
		{Name: "phone", LabelKey: "phone", Kind: KindNumber, Required: true, Min: &zero},
		{
			Name: "birthday", LabelKey: "birthday", Kind: KindDate, Required: true,
			DisabledFrom: cutoff, DefaultPickerValue: cutoff,
			MaxDate: adult.AddDate(0, 0, -1).Format(DateFormat),
		},
		{Name: "gender", LabelKey: "gender", Kind: KindSelect, Required: true, Options: Genders},
		{Name: "user_email", LabelKey: "email", Kind: KindEmail, Required: true},
		{Name: "password", LabelKey: "password", Kind: KindPassword, Required: true},
	}

	assoc := AssociationFor(role)
	if assoc.Visible {
		fields = append(fields, Field{
			Name:           assoc.Name,
			LabelKey:       assoc.LabelKey,
			Kind:           KindSearch,
			Required:       assoc.Required,
			Mode:           assoc.Mode,
			PlaceholderKey: "select.shop",
		})
	}

	fields = append(fields, Field{
		Name: "password_confirmation", LabelKey: "password.confirmation", Kind: KindPassword, Required: true,
	})

	for i := range fields {
		fields[i].ErrorKey = ErrorKey(fields[i].Name)
	}

	return Schema{
		Role:        role,
		Fields:      fields,
		Association: assoc,
		Defaults: map[string]any{
			"online": DefaultOnline,
			"gender": DefaultGender,
		},
	}
}

// Field возвращает поле схемы по имени.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
