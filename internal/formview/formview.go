// Пакет formview — схема формы с подписями на языке оператора.
// Используется REST API и серверным HTML-фрагментом.
package formview

import (
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/formpolicy"
	"github.com/bigkaa/goartstore/user-admin-module/internal/i18n"
)

// Choice — вариант выбора с подписью.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field — поле формы с переведёнными подписями.
type Field struct {
	formpolicy.Field
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	Choices     []Choice `json:"choices,omitempty"`
}

// View — форма для роли.
type View struct {
	Role        formpolicy.Role             `json:"role"`
	Title       string                      `json:"title"`
	SubmitLabel string                      `json:"submit_label"`
	Fields      []Field                     `json:"fields"`
	Association formpolicy.AssociationField `json:"association"`
	Values      map[string]any              `json:"initial_values"`
	Lang        string                      `json:"lang"`
}

// Build переводит схему на язык lang. values — начальные значения формы.
func Build(schema formpolicy.Schema, values map[string]any, tr i18n.Translator, lang string) View {
	t := func(key string) string {
		if tr == nil || key == "" {
			return key
		}
		return tr.Translate(lang, key)
	}

	fields := make([]Field, len(schema.Fields))
	for i, f := range schema.Fields {
		fv := Field{Field: f, Label: t(f.LabelKey)}
		if f.PlaceholderKey != "" {
			fv.Placeholder = t(f.PlaceholderKey)
		}
		for _, opt := range f.Options {
			fv.Choices = append(fv.Choices, Choice{Value: opt, Label: t(opt)})
		}
		fields[i] = fv
	}

	if values == nil {
		values = schema.Defaults
	}

	return View{
		Role:        schema.Role,
		Title:       t("add.user"),
		SubmitLabel: t("save"),
		Fields:      fields,
		Association: schema.Association,
		Values:      values,
		Lang:        lang,
	}
}
