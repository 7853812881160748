package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/goartstore/user-admin-module/internal/config"
	"github.com/bigkaa/goartstore/user-admin-module/internal/database"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("useradmin_test"),
		postgres.WithUsername("useradmin"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("UA_DB_HOST", host)
	t.Setenv("UA_DB_PORT", port.Port())
	t.Setenv("UA_DB_NAME", "useradmin_test")
	t.Setenv("UA_DB_USER", "useradmin")
	t.Setenv("UA_DB_PASSWORD", "test-password")
	t.Setenv("UA_DB_SSL_MODE", "disable")
	t.Setenv("UA_KEYCLOAK_URL", "http://localhost:8080")
	t.Setenv("UA_KEYCLOAK_CLIENT_ID", "test")
	t.Setenv("UA_KEYCLOAK_CLIENT_SECRET", "test")
	t.Setenv("UA_BACKEND_URL", "http://localhost:9090")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// --- Тесты TabRepository ---

func TestTabMergeData(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewTabRepository(pool)

	owner := uuid.New().String()
	tabID := "user-add-cook"

	// Первое сохранение создаёт вкладку
	tab, err := repo.MergeData(ctx, owner, tabID, "user/add/cook", model.FormDraft{
		"firstname": "Ivan",
		"phone":     float64(79990001122),
	})
	if err != nil {
		t.Fatalf("MergeData() ошибка: %v", err)
	}
	if tab.URL != "user/add/cook" {
		t.Errorf("URL = %q, хотели user/add/cook", tab.URL)
	}
	if tab.CreatedAt.IsZero() {
		t.Error("CreatedAt не установлен")
	}

	// Второе сохранение перекрывает совпадающие ключи и сохраняет остальные
	tab, err = repo.MergeData(ctx, owner, tabID, "", model.FormDraft{
		"firstname": "Petr",
		"birthday":  "1990-05-05",
	})
	if err != nil {
		t.Fatalf("MergeData() повторно ошибка: %v", err)
	}
	if tab.Data["firstname"] != "Petr" {
		t.Errorf("firstname = %v, хотели Petr", tab.Data["firstname"])
	}
	if tab.Data["phone"] != float64(79990001122) {
		t.Errorf("phone = %v, ожидалось сохранение прежнего значения", tab.Data["phone"])
	}
	if tab.Data["birthday"] != "1990-05-05" {
		t.Errorf("birthday = %v, хотели 1990-05-05", tab.Data["birthday"])
	}
	if tab.URL != "user/add/cook" {
		t.Errorf("URL = %q, пустой url не должен затирать сохранённый", tab.URL)
	}

	got, err := repo.Get(ctx, owner, tabID)
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if len(got.Data) != 3 {
		t.Errorf("Data = %v, хотели 3 ключа", got.Data)
	}
}

func TestTabGetNotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewTabRepository(pool)

	_, err := repo.Get(context.Background(), "nobody", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() = %v, хотели ErrNotFound", err)
	}
}

func TestTabIsolationByOwner(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewTabRepository(pool)

	if _, err := repo.MergeData(ctx, "alice", "tab", "", model.FormDraft{"firstname": "A"}); err != nil {
		t.Fatalf("MergeData(alice) ошибка: %v", err)
	}
	if _, err := repo.MergeData(ctx, "bob", "tab", "", model.FormDraft{"firstname": "B"}); err != nil {
		t.Fatalf("MergeData(bob) ошибка: %v", err)
	}

	alice, err := repo.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner() ошибка: %v", err)
	}
	if len(alice) != 1 || alice[0].Data["firstname"] != "A" {
		t.Errorf("вкладки alice = %+v", alice)
	}
}

func TestTabDelete(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewTabRepository(pool)

	if _, err := repo.MergeData(ctx, "op", "tab-1", "", model.FormDraft{}); err != nil {
		t.Fatalf("MergeData() ошибка: %v", err)
	}
	if err := repo.Delete(ctx, "op", "tab-1"); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if err := repo.Delete(ctx, "op", "tab-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Delete() = %v, хотели ErrNotFound", err)
	}
}

// --- Тесты UserListParamsRepository ---

func TestUserListParamsSaveGet(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserListParamsRepository(pool)

	if _, err := repo.Get(ctx, "op"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() до сохранения = %v, хотели ErrNotFound", err)
	}

	p := &model.UserListParams{Owner: "op", Params: map[string]string{"page": "1", "role": "admin"}}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save() ошибка: %v", err)
	}
	if p.UpdatedAt.IsZero() {
		t.Error("UpdatedAt не установлен")
	}

	// Повторное сохранение заменяет параметры целиком
	p.Params = map[string]string{"role": "cook"}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save() повторно ошибка: %v", err)
	}

	got, err := repo.Get(ctx, "op")
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if len(got.Params) != 1 || got.Params["role"] != "cook" {
		t.Errorf("Params = %v, хотели {role: cook}", got.Params)
	}
}
