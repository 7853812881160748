// Пакет validation — проверка значений формы создания пользователя.
// Правила по полям описаны struct-тегами model.FormValues
// (go-playground/validator), правила, зависящие от роли, текущей даты
// и списка изображений, проверяются отдельно. Результат — i18n-ключи
// сообщений по полям формы.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/formpolicy"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

// Ключи сообщений.
const (
	KeyRequired      = "required"
	KeyNoEmptySpace  = "no.empty.space"
	KeyInvalidEmail  = "invalid.email"
	KeyPasswordMatch = "two.passwords.dont.match"
	KeyAdultOnly     = "adult.only"
	KeyInvalidValue  = "invalid.value"
)

// Validator — валидатор формы. Безопасен для конкурентного использования.
type Validator struct {
	v *validator.Validate
}

// New создаёт валидатор и регистрирует собственные правила:
//   - nonblank — строка не состоит из одних пробелов
//   - trimmin=N — не меньше N символов без пробелов по краям
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Ошибки регистрации возможны только при пустом имени тега.
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("trimmin", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	})

	return &Validator{v: v}
}

// NormalizePassword: значение из одних пробелов становится пустой строкой,
// любое другое значение не меняется.
func NormalizePassword(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Normalize применяет нормализацию полей перед проверкой.
func Normalize(values *model.FormValues) {
	values.Password = NormalizePassword(values.Password)
	values.PasswordConfirmation = NormalizePassword(values.PasswordConfirmation)
}

// Validate проверяет значения формы для роли на момент now.
// Возвращает по одному ключу сообщения на каждое невалидное поле.
func (val *Validator) Validate(values *model.FormValues, role formpolicy.Role, now time.Time) model.FieldErrors {
	errs := model.FieldErrors{}

	if err := val.v.Struct(values); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			for _, fe := range vErrs {
				if _, seen := errs[fe.Field()]; seen {
					continue
				}
				errs.Add(fe.Field(), messageKey(fe))
			}
		} else {
			errs.Add("form", KeyInvalidValue)
		}
	}

	switch {
	case values.Birthday == nil || values.Birthday.Time.IsZero():
		errs.Add("birthday", KeyRequired)
	case !formpolicy.IsAdultBirthday(values.Birthday.Time, now):
		errs.Add("birthday", KeyAdultOnly)
	}

	if !hasImage(values.Images) {
		errs.Add("images", KeyRequired)
	}

	if assoc := formpolicy.AssociationFor(role); assoc.Visible && assoc.Required && values.ShopID.IsEmpty() {
		errs.Add(assoc.Name, KeyRequired)
	}

	return errs
}

// hasImage — в списке есть хотя бы одно изображение с именем.
func hasImage(images []model.Image) bool {
	return len(images) > 0 && strings.TrimSpace(images[0].Name) != ""
}

// messageKey сопоставляет сработавшее правило с ключом сообщения.
func messageKey(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return KeyRequired
	case "nonblank":
		return KeyNoEmptySpace
	case "trimmin":
		return "must.be.at.least." + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "min." + fe.Param() + ".letters"
		}
		return KeyInvalidValue
	case "email":
		return KeyInvalidEmail
	case "eqfield":
		return KeyPasswordMatch
	default:
		return KeyInvalidValue
	}
}
