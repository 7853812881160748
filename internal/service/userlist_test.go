package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/bigkaa/goartstore/user-admin-module/internal/backendclient"
)

func TestUserListService_RefreshKeepsParams(t *testing.T) {
	params := newFakeParamsRepo()
	backend := &fakeBackend{}
	svc := NewUserListService(params, backend, testLogger())
	ctx := context.Background()

	params.params["op-1"] = map[string]string{"perPage": "10", "role": "admin"}

	got, _, err := svc.Refresh(ctx, "op-1", "seller")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	want := map[string]string{"perPage": "10", "role": "seller"}
	if !reflect.DeepEqual(got.Params, want) {
		t.Errorf("Params = %v, ожидается %v", got.Params, want)
	}
	if !reflect.DeepEqual(params.params["op-1"], want) {
		t.Errorf("сохранено %v, ожидается %v", params.params["op-1"], want)
	}
}

func TestUserListService_RefreshWithoutStoredParams(t *testing.T) {
	svc := NewUserListService(newFakeParamsRepo(), &fakeBackend{}, testLogger())

	got, _, err := svc.Refresh(context.Background(), "op-2", "cook")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !reflect.DeepEqual(got.Params, map[string]string{"role": "cook"}) {
		t.Errorf("Params = %v", got.Params)
	}
}

func TestUserListService_RefreshBackendDown(t *testing.T) {
	params := newFakeParamsRepo()
	backend := &fakeBackend{listErr: fmt.Errorf("%w: dial", backendclient.ErrUnavailable)}
	svc := NewUserListService(params, backend, testLogger())

	got, _, err := svc.Refresh(context.Background(), "op-1", "cook")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("ожидается ErrBackendUnavailable, получено %v", err)
	}
	if got.Params["role"] != "cook" {
		t.Error("параметры должны сохраняться даже при ошибке backend")
	}
	if params.params["op-1"]["role"] != "cook" {
		t.Error("параметры должны быть сохранены до запроса")
	}
}

func TestUserListService_List(t *testing.T) {
	params := newFakeParamsRepo()
	backend := &fakeBackend{}
	svc := NewUserListService(params, backend, testLogger())

	if _, err := svc.List(context.Background(), "op-1", nil); err != nil {
		t.Fatalf("List: %v", err)
	}
	if params.params["op-1"] == nil {
		t.Error("пустые параметры должны сохраняться как пустой набор")
	}
}
