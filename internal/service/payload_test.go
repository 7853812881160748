package service

import (
	"reflect"
	"testing"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/formpolicy"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

func TestBuildPayload_Fields(t *testing.T) {
	v := validValues()
	v.Height = ptr(1.8)

	p := BuildPayload(v, formpolicy.RoleSeller)

	if string(p.Email) != "anna@example.com" {
		t.Errorf("Email = %q", p.Email)
	}
	if !reflect.DeepEqual(p.Images, []string{"users/a.jpg"}) {
		t.Errorf("Images = %v", p.Images)
	}
	if p.Online != 1 {
		t.Errorf("Online = %d, ожидается 1", p.Online)
	}
	if p.Role != "seller" {
		t.Errorf("Role = %q", p.Role)
	}
	if p.ShopID != nil {
		t.Errorf("ShopID = %v, ожидается отсутствие для seller", p.ShopID)
	}
	if p.Height == nil || *p.Height != 1.8 {
		t.Errorf("Height = %v", p.Height)
	}
}

func TestBuildPayload_ShopSelection(t *testing.T) {
	tests := []struct {
		name string
		role formpolicy.Role
		sel  *model.ShopSelection
		want []int64
	}{
		{"cook — одиночный выбор", formpolicy.RoleCook,
			&model.ShopSelection{Options: []model.ShopOption{{Label: "A", Value: 7}}}, []int64{7}},
		{"произвольная роль — список", "courier",
			&model.ShopSelection{Multiple: true, Options: []model.ShopOption{{Value: 1}, {Value: 2}}}, []int64{1, 2}},
		{"admin — поле скрыто", formpolicy.RoleAdmin,
			&model.ShopSelection{Options: []model.ShopOption{{Value: 3}}}, nil},
		{"ничего не выбрано", "courier", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validValues()
			v.ShopID = tt.sel
			if got := BuildPayload(v, tt.role).ShopID; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ShopID = %v, ожидается %v", got, tt.want)
			}
		})
	}
}

func TestBuildPayload_Online(t *testing.T) {
	tests := []struct {
		name   string
		online *bool
		want   int
	}{
		{"не передан — значение по умолчанию", nil, 1},
		{"включён", ptr(true), 1},
		{"выключен", ptr(false), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validValues()
			v.Online = tt.online
			if got := BuildPayload(v, formpolicy.RoleUser).Online; got != tt.want {
				t.Errorf("Online = %d, ожидается %d", got, tt.want)
			}
		})
	}
}

func TestBuildPayload_NoImages(t *testing.T) {
	v := validValues()
	v.Images = nil

	p := BuildPayload(v, formpolicy.RoleUser)
	if p.Images != nil {
		t.Errorf("Images = %v, ожидается отсутствие", p.Images)
	}
}
