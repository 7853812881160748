package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/formpolicy"
	"github.com/bigkaa/goartstore/user-admin-module/internal/formview"
)

func render(t *testing.T, data UserFormData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := UserForm(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestUserForm_FieldsAndValues(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	view := formview.Build(formpolicy.BuildSchema("cook", now), map[string]any{
		"firstname": "Анна",
		"gender":    "female",
		"online":    true,
	}, nil, "en")

	html := render(t, UserFormData{View: view, Action: "/api/v1/users/cook", SearchURL: "/api/v1/shops/search"})

	for _, want := range []string{
		`action="/api/v1/users/cook"`,
		`data-field="shop_id"`,
		`data-search-url="/api/v1/shops/search"`,
		`value="Анна"`,
		`<option value="female" selected>`,
		`data-error-key="email"`,
		` checked>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("в разметке нет %q", want)
		}
	}
}

func TestUserForm_EscapesValues(t *testing.T) {
	view := formview.Build(formpolicy.BuildSchema("cook", time.Now()), map[string]any{
		"firstname": `<script>alert(1)</script>`,
	}, nil, "en")

	html := render(t, UserFormData{View: view})
	if strings.Contains(html, "<script>") {
		t.Error("значение черновика не экранировано")
	}
}

func TestUserForm_NoAssociationForAdmin(t *testing.T) {
	view := formview.Build(formpolicy.BuildSchema("admin", time.Now()), nil, nil, "en")

	html := render(t, UserFormData{View: view})
	if strings.Contains(html, `data-field="shop_id"`) {
		t.Error("для admin поле магазина не отображается")
	}
}

func TestUserForm_BirthdayMaxIsLastAllowedDate(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	view := formview.Build(formpolicy.BuildSchema("cook", now), nil, nil, "en")

	html := render(t, UserFormData{View: view})
	if !strings.Contains(html, `max="2008-10-18"`) {
		t.Error("max календаря должен быть последним допустимым днём 2008-10-18")
	}
	if strings.Contains(html, `max="2008-10-19"`) {
		t.Error("дата отсечения 2008-10-19 запрещена и не может быть max")
	}
	if !strings.Contains(html, `data-default="2008-10-19"`) {
		t.Error("нет значения календаря по умолчанию")
	}
}
