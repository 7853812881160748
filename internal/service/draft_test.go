package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestDraftService_SaveDraftMergesAndSerializesBirthday(t *testing.T) {
	repo := newFakeTabRepo()
	svc := NewDraftService(repo, testLogger())
	ctx := context.Background()

	if _, err := svc.SaveDraft(ctx, "op-1", "tab-1", "user/add/cook", map[string]any{
		"firstname": "Ан",
		"birthday":  "1990-05-04T00:00:00Z",
	}); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	tab, err := svc.SaveDraft(ctx, "op-1", "tab-1", "", map[string]any{"lastname": "Иванова"})
	if err != nil {
		t.Fatalf("SaveDraft (повтор): %v", err)
	}

	want := map[string]any{
		"firstname": "Ан",
		"lastname":  "Иванова",
		"birthday":  "1990-05-04",
	}
	if !reflect.DeepEqual(map[string]any(tab.Data), want) {
		t.Errorf("Data = %v, ожидается %v", tab.Data, want)
	}
	if tab.URL != "user/add/cook" {
		t.Errorf("URL = %q, ожидается сохранение первого значения", tab.URL)
	}
}

func TestDraftService_BirthdayKeepsClientCalendarDate(t *testing.T) {
	repo := newFakeTabRepo()
	svc := NewDraftService(repo, testLogger())
	ctx := context.Background()

	tab, err := svc.SaveDraft(ctx, "op-1", "tab-1", "", map[string]any{
		"birthday": "1990-05-10T00:00:00+03:00",
	})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if tab.Data["birthday"] != "1990-05-10" {
		t.Errorf("birthday = %v, ожидается 1990-05-10", tab.Data["birthday"])
	}

	_, _ = repo.MergeData(ctx, "op-1", "tab-2", "", map[string]any{
		"birthday": `"1990-05-10T00:00:00.000+05:00"`,
	})
	got, err := svc.InitialValues(ctx, "op-1", "tab-2")
	if err != nil {
		t.Fatalf("InitialValues: %v", err)
	}
	if got["birthday"] != "1990-05-10" {
		t.Errorf("birthday = %v, ожидается 1990-05-10", got["birthday"])
	}
}

func TestDraftService_SaveDraftIdempotent(t *testing.T) {
	repo := newFakeTabRepo()
	svc := NewDraftService(repo, testLogger())
	ctx := context.Background()
	values := map[string]any{"firstname": "Анна", "online": false}

	first, err := svc.SaveDraft(ctx, "op-1", "tab-1", "", values)
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	second, err := svc.SaveDraft(ctx, "op-1", "tab-1", "", values)
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if !reflect.DeepEqual(first.Data, second.Data) {
		t.Errorf("повторное сохранение изменило черновик: %v → %v", first.Data, second.Data)
	}
}

func TestDraftService_SaveDraftEmptyTab(t *testing.T) {
	svc := NewDraftService(newFakeTabRepo(), testLogger())
	_, err := svc.SaveDraft(context.Background(), "op-1", "  ", "", map[string]any{"a": 1})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("ожидается ErrValidation, получено %v", err)
	}
}

func TestDraftService_InitialValues(t *testing.T) {
	repo := newFakeTabRepo()
	svc := NewDraftService(repo, testLogger())
	ctx := context.Background()

	t.Run("без вкладки — значения по умолчанию", func(t *testing.T) {
		got, err := svc.InitialValues(ctx, "op-1", "")
		if err != nil {
			t.Fatalf("InitialValues: %v", err)
		}
		if got["online"] != true || got["gender"] != "male" {
			t.Errorf("значения по умолчанию = %v", got)
		}
	})

	t.Run("неизвестная вкладка — значения по умолчанию", func(t *testing.T) {
		got, err := svc.InitialValues(ctx, "op-1", "missing")
		if err != nil {
			t.Fatalf("InitialValues: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("ожидаются только значения по умолчанию, получено %v", got)
		}
	})

	t.Run("черновик перекрывает значения по умолчанию", func(t *testing.T) {
		_, _ = repo.MergeData(ctx, "op-1", "tab-2", "", map[string]any{
			"gender":   "female",
			"online":   false,
			"birthday": `"1990-05-04T00:00:00.000Z"`,
			"image":    map[string]any{"name": "users/a.jpg"},
		})

		got, err := svc.InitialValues(ctx, "op-1", "tab-2")
		if err != nil {
			t.Fatalf("InitialValues: %v", err)
		}
		if got["gender"] != "female" || got["online"] != false {
			t.Errorf("черновик не применён: %v", got)
		}
		if got["birthday"] != "1990-05-04" {
			t.Errorf("birthday = %v, ожидается 1990-05-04", got["birthday"])
		}
		images, ok := got["images"].([]any)
		if !ok || len(images) != 1 {
			t.Fatalf("images = %v, ожидается список из одного элемента", got["images"])
		}
		if _, ok := got["image"]; ok {
			t.Error("ключ image должен быть заменён на images")
		}
	})

	t.Run("неразбираемая дата удаляется", func(t *testing.T) {
		_, _ = repo.MergeData(ctx, "op-1", "tab-3", "", map[string]any{"birthday": "вчера"})
		got, err := svc.InitialValues(ctx, "op-1", "tab-3")
		if err != nil {
			t.Fatalf("InitialValues: %v", err)
		}
		if _, ok := got["birthday"]; ok {
			t.Errorf("birthday = %v, ожидается отсутствие", got["birthday"])
		}
	})
}
