package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/user-admin-module/internal/backendclient"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

func TestShopOptions_Labels(t *testing.T) {
	shops := []backendclient.Shop{
		{ID: 1, Translation: &backendclient.ShopTranslation{Title: "Кафе", Locale: "ru"}},
		{ID: 2},
	}
	want := []model.ShopOption{{Label: "Кафе", Value: 1}, {Label: "no name", Value: 2}}
	if got := ShopOptions(shops); !reflect.DeepEqual(got, want) {
		t.Errorf("ShopOptions() = %v, ожидается %v", got, want)
	}
}

func TestShopLookupService_SearchCaches(t *testing.T) {
	backend := &fakeBackend{shops: []backendclient.Shop{{ID: 5}}}
	svc := NewShopLookupService(backend, 10, time.Minute, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		opts, err := svc.Search(ctx, " кафе ")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(opts) != 1 || opts[0].Value != 5 {
			t.Fatalf("opts = %v", opts)
		}
	}

	if len(backend.searchCalls) != 1 {
		t.Errorf("backend вызван %d раз, ожидается 1", len(backend.searchCalls))
	}
	if backend.searchCalls[0] != "кафе|"+backendclient.StatusApproved {
		t.Errorf("параметры поиска = %q", backend.searchCalls[0])
	}

	svc.Purge()
	if _, err := svc.Search(ctx, "кафе"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(backend.searchCalls) != 2 {
		t.Errorf("после Purge ожидается повторный запрос, вызовов: %d", len(backend.searchCalls))
	}
}

func TestShopLookupService_ErrorsNotCached(t *testing.T) {
	backend := &fakeBackend{shopsErr: fmt.Errorf("%w: timeout", backendclient.ErrUnavailable)}
	svc := NewShopLookupService(backend, 10, time.Minute, testLogger())
	ctx := context.Background()

	if _, err := svc.Search(ctx, "a"); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("ожидается ErrBackendUnavailable, получено %v", err)
	}

	backend.shopsErr = nil
	if _, err := svc.Search(ctx, "a"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(backend.searchCalls) != 2 {
		t.Errorf("ошибка не должна кэшироваться, вызовов: %d", len(backend.searchCalls))
	}
}
