package model

// CreatedUser — пользователь, созданный backend.
type CreatedUser struct {
	ID        int64  `json:"id"`
	UUID      string `json:"uuid,omitempty"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
}

// UserList — страница списка пользователей от backend.
type UserList struct {
	Data []CreatedUser `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

// NotificationType — тип уведомления оболочки.
type NotificationType string

const (
	// NotificationDismissAll — скрыть все показанные уведомления
	NotificationDismissAll NotificationType = "dismiss_all"
	NotificationError      NotificationType = "error"
	NotificationSuccess    NotificationType = "success"
)

// Notification — уведомление, которое оболочка должна показать.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message,omitempty"`
	Field   string           `json:"field,omitempty"`
}

// EffectType — действие оболочки после успешной отправки.
type EffectType string

const (
	EffectRemoveTab   EffectType = "remove_tab"
	EffectNavigate    EffectType = "navigate"
	EffectRefreshList EffectType = "refresh_list"
	EffectResetForm   EffectType = "reset_form"
)

// Effect — выполненное действие в порядке выполнения.
type Effect struct {
	Type   EffectType        `json:"type"`
	TabID  string            `json:"tab_id,omitempty"`
	Menu   string            `json:"menu,omitempty"`
	URL    string            `json:"url,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// SubmitStatus — итог отправки формы.
type SubmitStatus string

const (
	SubmitSuccess SubmitStatus = "success"
	// SubmitInvalid — ошибки валидации на стороне модуля, backend не вызывался
	SubmitInvalid SubmitStatus = "invalid"
	SubmitFailed  SubmitStatus = "failed"
)

// SubmitResult — результат отправки формы для оболочки.
type SubmitResult struct {
	Status        SubmitStatus   `json:"status"`
	User          *CreatedUser   `json:"user,omitempty"`
	Redirect      string         `json:"redirect,omitempty"`
	Effects       []Effect       `json:"effects,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
	FieldErrors   FieldErrors    `json:"field_errors,omitempty"`
}
