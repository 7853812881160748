// Пакет formpolicy — состав полей формы «добавить пользователя» в
// зависимости от роли создаваемого пользователя.
//
// Роль читается один раз из маршрута и не меняется, поэтому политика —
// чистая функция роли. Поле связи с магазином описано таблицей решений:
//   - admin, manager, seller, user — поле не показывается
//   - cook — одиночный выбор магазина (shop)
//   - moderator — одиночный выбор филиала (branches), тот же поиск
//   - любая другая роль — множественный выбор магазинов
//
// Показанное поле связи всегда обязательно.
package formpolicy

import (
	"time"
)

// Role — роль создаваемого пользователя (из маршрута).
type Role string

// Известные роли. Любая другая строка трактуется как пользовательская роль.
const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleModerator Role = "moderator"
	RoleSeller    Role = "seller"
	RoleCook      Role = "cook"
	RoleUser      Role = "user"
)

// IsKnown проверяет, входит ли роль в фиксированный набор.
func (r Role) IsKnown() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleModerator, RoleSeller, RoleCook, RoleUser:
		return true
	}
	return false
}

// SelectMode — режим выбора в поле поиска.
type SelectMode string

const (
	ModeSingle   SelectMode = "single"
	ModeMultiple SelectMode = "multiple"
)

// ShopFieldName — имя поля связи с магазином в форме и в запросе.
const ShopFieldName = "shop_id"

// AssociationField — описание поля связи с магазином/филиалом.
type AssociationField struct {
	// Visible — показывать ли поле
	Visible bool `json:"visible"`
	// Name — имя поля формы (shop_id)
	Name string `json:"name,omitempty"`
	// LabelKey — i18n-ключ подписи (shop, branches)
	LabelKey string `json:"label_key,omitempty"`
	// Mode — одиночный или множественный выбор
	Mode SelectMode `json:"mode,omitempty"`
	// Required — обязательность
	Required bool `json:"required"`
}

var (
	noAssociation = AssociationField{}

	singleShop = AssociationField{
		Visible: true, Name: ShopFieldName, LabelKey: "shop", Mode: ModeSingle, Required: true,
	}
	singleBranch = AssociationField{
		Visible: true, Name: ShopFieldName, LabelKey: "branches", Mode: ModeSingle, Required: true,
	}
	multipleShops = AssociationField{
		Visible: true, Name: ShopFieldName, LabelKey: "shop", Mode: ModeMultiple, Required: true,
	}
)

// associationTable — таблица решений для известных ролей.
var associationTable = map[Role]AssociationField{
	RoleAdmin:     noAssociation,
	RoleManager:   noAssociation,
	RoleSeller:    noAssociation,
	RoleUser:      noAssociation,
	RoleCook:      singleShop,
	RoleModerator: singleBranch,
}

// AssociationFor возвращает поле связи с магазином для роли.
func AssociationFor(role Role) AssociationField {
	if f, ok := associationTable[role]; ok {
		return f
	}
	return multipleShops
}

// AdultAge — минимальный возраст создаваемого пользователя (лет).
const AdultAge = 18

// AdultCutoff возвращает первую недопустимую дату рождения:
// допустимы только даты строго раньше now − 18 лет.
func AdultCutoff(now time.Time) time.Time {
	now = now.UTC()
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(-AdultAge, 0, 0)
}

// IsAdultBirthday проверяет, что дата рождения строго раньше now − 18 лет.
// Сравниваются только даты, время суток игнорируется.
func IsAdultBirthday(birthday, now time.Time) bool {
	b := birthday.UTC()
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return b.Before(AdultCutoff(now))
}
