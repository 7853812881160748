package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/bigkaa/goartstore/user-admin-module/internal/backendclient"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testNow — фиксированное «сейчас» для проверок возраста.
var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// validValues возвращает значения формы, проходящие валидацию для ролей
// без поля магазина.
func validValues() *model.FormValues {
	return &model.FormValues{
		Firstname:            "Анна",
		Lastname:             "Иванова",
		Phone:                ptr(int64(79001234567)),
		Birthday:             &openapi_types.Date{Time: time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC)},
		Gender:               "female",
		UserEmail:            "anna@example.com",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
		Images:               []model.Image{{Name: "users/a.jpg"}},
		Online:               ptr(true),
	}
}

// fakeTabRepo — TabRepository в памяти.
type fakeTabRepo struct {
	mu        sync.Mutex
	tabs      map[string]*model.Tab
	deleted   []string
	deleteErr error
	mergeErr  error
}

func newFakeTabRepo() *fakeTabRepo {
	return &fakeTabRepo{tabs: make(map[string]*model.Tab)}
}

func (f *fakeTabRepo) key(owner, id string) string { return owner + "/" + id }

func (f *fakeTabRepo) Get(_ context.Context, owner, id string) (*model.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tab, ok := f.tabs[f.key(owner, id)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *tab
	return &cp, nil
}

func (f *fakeTabRepo) MergeData(_ context.Context, owner, id, url string, data model.FormDraft) (*model.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mergeErr != nil {
		return nil, f.mergeErr
	}
	tab, ok := f.tabs[f.key(owner, id)]
	if !ok {
		tab = &model.Tab{ID: id, Owner: owner, Data: model.FormDraft{}}
		f.tabs[f.key(owner, id)] = tab
	}
	if url != "" {
		tab.URL = url
	}
	tab.Data = tab.Data.Merge(data)
	cp := *tab
	return &cp, nil
}

func (f *fakeTabRepo) ListByOwner(_ context.Context, owner string) ([]*model.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Tab
	for _, tab := range f.tabs {
		if tab.Owner == owner {
			cp := *tab
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeTabRepo) Delete(_ context.Context, owner, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.tabs[f.key(owner, id)]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tabs, f.key(owner, id))
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeParamsRepo — UserListParamsRepository в памяти.
type fakeParamsRepo struct {
	mu     sync.Mutex
	params map[string]map[string]string
}

func newFakeParamsRepo() *fakeParamsRepo {
	return &fakeParamsRepo{params: make(map[string]map[string]string)}
}

func (f *fakeParamsRepo) Get(_ context.Context, owner string) (*model.UserListParams, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.params[owner]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.UserListParams{Owner: owner, Params: p}, nil
}

func (f *fakeParamsRepo) Save(_ context.Context, p *model.UserListParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params[p.Owner] = p.Params
	return nil
}

// fakeBackend — backend API с заданными ответами.
type fakeBackend struct {
	mu sync.Mutex

	createResult *model.CreatedUser
	createErr    error
	createCalls  []*model.SubmissionPayload
	// block — если задан, CreateUser ждёт закрытия канала
	block   chan struct{}
	started chan struct{}

	shops       []backendclient.Shop
	shopsErr    error
	searchCalls []string

	listErr    error
	listParams []map[string]string
}

func (f *fakeBackend) CreateUser(_ context.Context, payload *model.SubmissionPayload) (*model.CreatedUser, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, payload)
	block, started := f.block, f.started
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	return f.createResult, f.createErr
}

func (f *fakeBackend) SearchShops(_ context.Context, search, status string) ([]backendclient.Shop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, search+"|"+status)
	return f.shops, f.shopsErr
}

func (f *fakeBackend) ListUsers(_ context.Context, params map[string]string) (*model.UserList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listParams = append(f.listParams, params)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &model.UserList{}, nil
}

// fakeReporter запоминает отправленные ошибки.
type fakeReporter struct {
	mu     sync.Mutex
	errors []error
	tags   []map[string]string
}

func (f *fakeReporter) Report(_ context.Context, err error, tags map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, err)
	f.tags = append(f.tags, tags)
}

// fakeStore — ObjectStore в памяти.
type fakeStore struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeStore) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[name] = data
	f.types[name] = contentType
	return nil
}

func (f *fakeStore) PublicURL(name string) string {
	return "http://media.local/user-avatars/" + name
}
