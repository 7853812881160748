package service

import (
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/formpolicy"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

// BuildPayload собирает тело запроса создания пользователя из значений формы.
//
// user_email уходит как email; из изображений берётся имя первого;
// shop_id приводится к списку идентификаторов и отправляется, только
// если поле магазина показано для роли; online — 0 или 1, без значения
// берётся значение формы по умолчанию.
func BuildPayload(values *model.FormValues, role formpolicy.Role) *model.SubmissionPayload {
	p := &model.SubmissionPayload{
		Firstname:            values.Firstname,
		Lastname:             values.Lastname,
		Email:                openapi_types.Email(values.UserEmail),
		Phone:                values.Phone,
		Birthday:             values.Birthday,
		Gender:               values.Gender,
		PasswordConfirmation: values.PasswordConfirmation,
		Password:             values.Password,
		Role:                 string(role),
		Height:               values.Height,
		Kg:                   values.Kg,
		Length:               values.Length,
		Price:                values.Price,
		PricePerKm:           values.PricePerKm,
		Width:                values.Width,
	}

	if len(values.Images) > 0 && strings.TrimSpace(values.Images[0].Name) != "" {
		p.Images = []string{values.Images[0].Name}
	}

	if formpolicy.AssociationFor(role).Visible {
		p.ShopID = values.ShopID.IDs()
	}

	online := formpolicy.DefaultOnline
	if values.Online != nil {
		online = *values.Online
	}
	if online {
		p.Online = 1
	}

	return p
}
