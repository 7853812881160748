// Пакет rbac — роли операторов панели и права на действия с формой
// создания пользователя. Роль оператора вычисляется из групп IdP,
// при нескольких совпадениях берётся максимальная.
package rbac

// Роли в порядке возрастания привилегий.
const (
	RoleReadonly = "readonly"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// Action — действие оператора над формой.
type Action string

const (
	// ActionViewForm — получение схемы формы, восстановление черновика.
	ActionViewForm Action = "view_form"
	// ActionSearchShops — поиск магазинов для выпадающего списка.
	ActionSearchShops Action = "search_shops"
	// ActionSaveDraft — сохранение черновика во вкладку.
	ActionSaveDraft Action = "save_draft"
	// ActionUploadAvatar — загрузка аватара.
	ActionUploadAvatar Action = "upload_avatar"
	// ActionCreateUser — отправка формы в backend.
	ActionCreateUser Action = "create_user"
)

// roleWeight — вес роли для сравнения.
var roleWeight = map[string]int{
	RoleReadonly: 1,
	RoleManager:  2,
	RoleAdmin:    3,
}

// minRoleFor — минимальная роль, которой разрешено действие.
var minRoleFor = map[Action]string{
	ActionViewForm:     RoleReadonly,
	ActionSearchShops:  RoleReadonly,
	ActionSaveDraft:    RoleManager,
	ActionUploadAvatar: RoleManager,
	ActionCreateUser:   RoleManager,
}

// Can проверяет, разрешено ли действие роли.
// Неизвестная роль или неизвестное действие — запрещено.
func Can(role string, action Action) bool {
	minRole, ok := minRoleFor[action]
	if !ok {
		return false
	}
	w, ok := roleWeight[role]
	if !ok {
		return false
	}
	return w >= roleWeight[minRole]
}

// AtLeast проверяет, что роль не ниже required.
func AtLeast(role, required string) bool {
	w, ok := roleWeight[role]
	if !ok {
		return false
	}
	return w >= roleWeight[required]
}

// maxRole возвращает роль с максимальными привилегиями из двух.
func maxRole(a, b string) string {
	if roleWeight[a] >= roleWeight[b] {
		return a
	}
	return b
}

// HighestRole возвращает максимальную роль из набора.
// Если набор пуст — возвращает пустую строку.
func HighestRole(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	highest := roles[0]
	for _, r := range roles[1:] {
		highest = maxRole(highest, r)
	}
	return highest
}

// GroupMapping — списки групп IdP для каждой роли оператора.
type GroupMapping struct {
	AdminGroups    []string
	ManagerGroups  []string
	ReadonlyGroups []string
}

// MapGroupsToRole определяет роль оператора по его группам IdP.
// Если ни одна группа не совпала — возвращает пустую строку.
func MapGroupsToRole(groups []string, m GroupMapping) string {
	adminSet := toSet(m.AdminGroups)
	managerSet := toSet(m.ManagerGroups)
	readonlySet := toSet(m.ReadonlyGroups)

	var roles []string
	for _, g := range groups {
		if adminSet[g] {
			roles = append(roles, RoleAdmin)
		}
		if managerSet[g] {
			roles = append(roles, RoleManager)
		}
		if readonlySet[g] {
			roles = append(roles, RoleReadonly)
		}
	}

	return HighestRole(roles)
}

// IsValidRole проверяет, является ли строка допустимой ролью оператора.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, item := range items {
		s[item] = true
	}
	return s
}
