package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/user-admin-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/i18n"
	"github.com/bigkaa/goartstore/user-admin-module/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- фейки сервисов ---

type fakeDrafts struct {
	saved   model.FormDraft
	owner   string
	initial model.FormDraft
	err     error
}

func (f *fakeDrafts) SaveDraft(_ context.Context, owner, tabID, url string, values model.FormDraft) (*model.Tab, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.owner = owner
	f.saved = values
	return &model.Tab{ID: tabID, Owner: owner, URL: url, Data: values}, nil
}

func (f *fakeDrafts) InitialValues(_ context.Context, _, _ string) (model.FormDraft, error) {
	return f.initial, f.err
}

type fakeTabs struct {
	tabs    map[string]*model.Tab
	removed []string
}

func (f *fakeTabs) Get(_ context.Context, _, tabID string) (*model.Tab, error) {
	t, ok := f.tabs[tabID]
	if !ok {
		return nil, service.ErrNotFound
	}
	return t, nil
}

func (f *fakeTabs) List(_ context.Context, _ string) ([]*model.Tab, error) {
	out := make([]*model.Tab, 0, len(f.tabs))
	for _, t := range f.tabs {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTabs) Remove(_ context.Context, _, tabID string) error {
	if _, ok := f.tabs[tabID]; !ok {
		return service.ErrNotFound
	}
	delete(f.tabs, tabID)
	f.removed = append(f.removed, tabID)
	return nil
}

type fakeShops struct {
	opts []model.ShopOption
	err  error
	got  string
}

func (f *fakeShops) Search(_ context.Context, text string) ([]model.ShopOption, error) {
	f.got = text
	return f.opts, f.err
}

type fakeSubmitter struct {
	res *model.SubmitResult
	err error
	req service.SubmitRequest
}

func (f *fakeSubmitter) Submit(_ context.Context, req service.SubmitRequest) (*model.SubmitResult, error) {
	f.req = req
	return f.res, f.err
}

type fakeUsers struct {
	params map[string]string
	err    error
}

func (f *fakeUsers) List(_ context.Context, _ string, params map[string]string) (*model.UserList, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &model.UserList{Data: []model.CreatedUser{{ID: 1, Role: "cook"}}}, nil
}

type fakeAvatars struct {
	err  error
	size int
}

func (f *fakeAvatars) Upload(_ context.Context, r io.Reader) (*model.Image, error) {
	data, _ := io.ReadAll(r)
	f.size = len(data)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Image{Name: "users/x.jpg", URL: "http://media/users/x.jpg"}, nil
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(lang, key string) string { return lang + ":" + key }

// newTestRouter собирает маршруты так же, как сервер, но без JWT.
func newTestRouter(h *APIHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(i18n.Middleware())
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithClaims(req.Context(), &middleware.AuthClaims{Subject: "op-1", Role: "admin"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/api/v1/user-forms/{role}", h.GetUserForm)
	r.Get("/api/v1/tabs", h.ListTabs)
	r.Get("/api/v1/tabs/{tabID}", h.GetTab)
	r.Delete("/api/v1/tabs/{tabID}", h.RemoveTab)
	r.Put("/api/v1/tabs/{tabID}/draft", h.SaveDraft)
	r.Get("/api/v1/shops/search", h.SearchShops)
	r.Post("/api/v1/users/{role}", h.SubmitUser)
	r.Get("/api/v1/users", h.ListUsers)
	r.Post("/api/v1/media/users", h.UploadAvatar)
	return r
}

type testEnv struct {
	drafts    *fakeDrafts
	tabs      *fakeTabs
	shops     *fakeShops
	submitter *fakeSubmitter
	users     *fakeUsers
	avatars   *fakeAvatars
	router    http.Handler
}

func newTestEnv(maxUpload int64) *testEnv {
	env := &testEnv{
		drafts:    &fakeDrafts{},
		tabs:      &fakeTabs{tabs: map[string]*model.Tab{}},
		shops:     &fakeShops{},
		submitter: &fakeSubmitter{},
		users:     &fakeUsers{},
		avatars:   &fakeAvatars{},
	}
	h := NewAPIHandler(Deps{
		Drafts:         env.drafts,
		Tabs:           env.tabs,
		Shops:          env.shops,
		Submitter:      env.submitter,
		Users:          env.users,
		Avatars:        env.avatars,
		Translator:     fakeTranslator{},
		MaxUploadBytes: maxUpload,
	}, testLogger())
	h.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	env.router = newTestRouter(h)
	return env
}

func (env *testEnv) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("некорректный JSON ответа: %v (%s)", err, rec.Body.String())
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

// --- формы ---

func TestGetUserForm_DefaultsAndLanguage(t *testing.T) {
	env := newTestEnv(0)

	rec := env.do(http.MethodGet, "/api/v1/user-forms/cook?lang=ru", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200 (%s)", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["role"] != "cook" {
		t.Errorf("role = %v, ожидается cook", body["role"])
	}
	if body["lang"] != "ru" {
		t.Errorf("lang = %v, ожидается ru", body["lang"])
	}
	fields, _ := body["fields"].([]any)
	if len(fields) == 0 {
		t.Fatal("поля формы пусты")
	}
	first, _ := fields[0].(map[string]any)
	if label, _ := first["label"].(string); !strings.HasPrefix(label, "ru:") {
		t.Errorf("label = %q, ожидается перевод на ru", label)
	}
}

func TestGetUserForm_RestoresDraft(t *testing.T) {
	env := newTestEnv(0)
	env.drafts.initial = model.FormDraft{"firstname": "Анна"}

	rec := env.do(http.MethodGet, "/api/v1/user-forms/cook?tab_id=t1", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}
	values, _ := decodeBody(t, rec)["initial_values"].(map[string]any)
	if values["firstname"] != "Анна" {
		t.Errorf("initial_values = %v, ожидается значение из черновика", values)
	}
}

func TestGetUserForm_DraftError(t *testing.T) {
	env := newTestEnv(0)
	env.drafts.err = errors.New("db down")

	rec := env.do(http.MethodGet, "/api/v1/user-forms/cook?tab_id=t1", nil, "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("статус = %d, ожидается 500", rec.Code)
	}
}

// --- вкладки ---

func TestSaveDraft(t *testing.T) {
	env := newTestEnv(0)

	body := `{"url":"/admin/users/add/cook","values":{"firstname":"Анна","online":true}}`
	rec := env.do(http.MethodPut, "/api/v1/tabs/t1/draft", strings.NewReader(body), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200 (%s)", rec.Code, rec.Body.String())
	}
	if env.drafts.owner != "op-1" {
		t.Errorf("owner = %q, ожидается op-1", env.drafts.owner)
	}
	if env.drafts.saved["firstname"] != "Анна" {
		t.Errorf("сохранено %v", env.drafts.saved)
	}
	resp := decodeBody(t, rec)
	if resp["id"] != "t1" || resp["url"] != "/admin/users/add/cook" {
		t.Errorf("ответ = %v", resp)
	}
}

func TestSaveDraft_InvalidJSON(t *testing.T) {
	env := newTestEnv(0)

	rec := env.do(http.MethodPut, "/api/v1/tabs/t1/draft", strings.NewReader("{"), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус = %d, ожидается 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, ожидается VALIDATION_ERROR", code)
	}
}

func TestTabs_GetListRemove(t *testing.T) {
	env := newTestEnv(0)
	env.tabs.tabs["t1"] = &model.Tab{ID: "t1", Owner: "op-1", URL: "/admin/users/add/cook"}

	rec := env.do(http.MethodGet, "/api/v1/tabs/t1", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET статус = %d, ожидается 200", rec.Code)
	}
	if data, ok := decodeBody(t, rec)["data"].(map[string]any); !ok || data == nil {
		t.Error("data вкладки без черновика должно быть пустым объектом")
	}

	rec = env.do(http.MethodGet, "/api/v1/tabs", nil, "")
	items, _ := decodeBody(t, rec)["items"].([]any)
	if len(items) != 1 {
		t.Errorf("вкладок = %d, ожидается 1", len(items))
	}

	rec = env.do(http.MethodDelete, "/api/v1/tabs/t1", nil, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE статус = %d, ожидается 204", rec.Code)
	}

	rec = env.do(http.MethodGet, "/api/v1/tabs/t1", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("статус после удаления = %d, ожидается 404", rec.Code)
	}

	rec = env.do(http.MethodDelete, "/api/v1/tabs/t1", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("повторный DELETE статус = %d, ожидается 404", rec.Code)
	}
}

// --- магазины ---

func TestSearchShops(t *testing.T) {
	env := newTestEnv(0)
	env.shops.opts = []model.ShopOption{{Label: "Пекарня", Value: 7}}

	rec := env.do(http.MethodGet, "/api/v1/shops/search?search=пек", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}
	if env.shops.got != "пек" {
		t.Errorf("строка поиска = %q, ожидается пек", env.shops.got)
	}
	data, _ := decodeBody(t, rec)["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("вариантов = %d, ожидается 1", len(data))
	}
}

func TestSearchShops_EmptyIsArray(t *testing.T) {
	env := newTestEnv(0)

	rec := env.do(http.MethodGet, "/api/v1/shops/search", nil, "")
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("тело = %s, ожидается пустой массив data", rec.Body.String())
	}
}

func TestSearchShops_BackendUnavailable(t *testing.T) {
	env := newTestEnv(0)
	env.shops.err = service.ErrBackendUnavailable

	rec := env.do(http.MethodGet, "/api/v1/shops/search?search=a", nil, "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("статус = %d, ожидается 502", rec.Code)
	}
	if code := errorCode(t, rec); code != "BACKEND_UNAVAILABLE" {
		t.Errorf("code = %q", code)
	}
}

// --- отправка формы ---

func TestSubmitUser_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		res  *model.SubmitResult
		err  error
		want int
	}{
		{"успех", &model.SubmitResult{Status: model.SubmitSuccess}, nil, http.StatusCreated},
		{"ошибки формы", &model.SubmitResult{Status: model.SubmitInvalid, FieldErrors: model.FieldErrors{"firstname": {"required"}}}, nil, http.StatusBadRequest},
		{"ошибки backend по полям", &model.SubmitResult{Status: model.SubmitFailed, FieldErrors: model.FieldErrors{"email": {"taken"}}}, nil, http.StatusUnprocessableEntity},
		{"сбой backend", &model.SubmitResult{Status: model.SubmitFailed}, nil, http.StatusBadGateway},
		{"уже отправляется", nil, service.ErrSubmissionInFlight, http.StatusConflict},
		{"пустая форма", nil, service.ErrValidation, http.StatusBadRequest},
		{"внутренняя ошибка", nil, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(0)
			env.submitter.res = tt.res
			env.submitter.err = tt.err

			rec := env.do(http.MethodPost, "/api/v1/users/cook?tab_id=t1&lang=ru",
				strings.NewReader(`{"firstname":"Анна","shop_id":{"label":"A","value":1}}`), "application/json")
			if rec.Code != tt.want {
				t.Errorf("статус = %d, ожидается %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestSubmitUser_RequestFields(t *testing.T) {
	env := newTestEnv(0)
	env.submitter.res = &model.SubmitResult{Status: model.SubmitSuccess}

	env.do(http.MethodPost, "/api/v1/users/cook?tab_id=t1&lang=ru",
		strings.NewReader(`{"firstname":"Анна"}`), "application/json")

	req := env.submitter.req
	if req.Owner != "op-1" || req.TabID != "t1" || req.Role != "cook" || req.Lang != "ru" {
		t.Errorf("запрос = %+v", req)
	}
	if req.Values == nil || req.Values.Firstname != "Анна" {
		t.Errorf("значения формы = %+v", req.Values)
	}
}

func TestSubmitUser_EmptyBirthdayReachesValidation(t *testing.T) {
	env := newTestEnv(0)
	env.submitter.res = &model.SubmitResult{
		Status:      model.SubmitInvalid,
		FieldErrors: model.FieldErrors{"birthday": {"Укажите дату рождения"}},
	}

	rec := env.do(http.MethodPost, "/api/v1/users/cook?tab_id=t1",
		strings.NewReader(`{"firstname":"Анна","birthday":""}`), "application/json")

	if strings.Contains(rec.Body.String(), "Некорректный JSON") {
		t.Fatalf("пустая дата не должна ломать разбор JSON: %s", rec.Body.String())
	}
	if env.submitter.req.Values == nil {
		t.Fatal("значения формы не переданы в отправку")
	}
	if env.submitter.req.Values.Birthday != nil {
		t.Errorf("Birthday = %v, ожидается отсутствие", env.submitter.req.Values.Birthday)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус = %d, ожидается 400", rec.Code)
	}
}

func TestSubmitUser_InvalidJSON(t *testing.T) {
	env := newTestEnv(0)

	rec := env.do(http.MethodPost, "/api/v1/users/cook", strings.NewReader("not json"), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус = %d, ожидается 400", rec.Code)
	}
}

// --- список пользователей ---

func TestListUsers_ParamsFromQuery(t *testing.T) {
	env := newTestEnv(0)

	rec := env.do(http.MethodGet, "/api/v1/users?role=cook&page=2&lang=ru&search=", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}
	want := map[string]string{"role": "cook", "page": "2"}
	if len(env.users.params) != len(want) {
		t.Fatalf("параметры = %v, ожидается %v", env.users.params, want)
	}
	for k, v := range want {
		if env.users.params[k] != v {
			t.Errorf("params[%q] = %q, ожидается %q", k, env.users.params[k], v)
		}
	}
}

func TestListUsers_BackendUnavailable(t *testing.T) {
	env := newTestEnv(0)
	env.users.err = service.ErrBackendUnavailable

	rec := env.do(http.MethodGet, "/api/v1/users", nil, "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("статус = %d, ожидается 502", rec.Code)
	}
}

// --- аватар ---

func multipartImage(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "avatar.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(0)
	img := pngBytes(t)
	body, ct := multipartImage(t, "file", img)

	rec := env.do(http.MethodPost, "/api/v1/media/users", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("статус = %d, ожидается 201 (%s)", rec.Code, rec.Body.String())
	}
	if env.avatars.size != len(img) {
		t.Errorf("передано байт = %d, ожидается %d", env.avatars.size, len(img))
	}
	if decodeBody(t, rec)["name"] != "users/x.jpg" {
		t.Errorf("тело = %s", rec.Body.String())
	}
}

func TestUploadAvatar_Errors(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		maxUpload int64
		svcErr    error
		want      int
	}{
		{"нет поля file", "other", 0, nil, http.StatusBadRequest},
		{"слишком большой", "file", 16, nil, http.StatusBadRequest},
		{"не изображение", "file", 0, service.ErrValidation, http.StatusBadRequest},
		{"хранилище недоступно", "file", 0, service.ErrStorageUnavailable, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(tt.maxUpload)
			env.avatars.err = tt.svcErr
			body, ct := multipartImage(t, tt.field, pngBytes(t))

			rec := env.do(http.MethodPost, "/api/v1/media/users", body, ct)
			if rec.Code != tt.want {
				t.Errorf("статус = %d, ожидается %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
