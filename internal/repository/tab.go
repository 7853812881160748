package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

// TabRepository — интерфейс для таблицы tabs (вкладки оболочки с черновиками).
type TabRepository interface {
	// Get возвращает вкладку оператора. Если не найдена — ErrNotFound.
	Get(ctx context.Context, owner, id string) (*model.Tab, error)
	// MergeData сливает черновик с данными вкладки (новые ключи перекрывают
	// старые, остальные сохраняются). Создаёт вкладку, если её нет.
	MergeData(ctx context.Context, owner, id, url string, data model.FormDraft) (*model.Tab, error)
	// ListByOwner возвращает вкладки оператора, новые первыми.
	ListByOwner(ctx context.Context, owner string) ([]*model.Tab, error)
	// Delete удаляет вкладку. Если не найдена — ErrNotFound.
	Delete(ctx context.Context, owner, id string) error
}

// tabRepo — реализация TabRepository.
type tabRepo struct {
	db DBTX
}

// NewTabRepository создаёт репозиторий вкладок.
func NewTabRepository(db DBTX) TabRepository {
	return &tabRepo{db: db}
}

// tabColumns — список колонок для SELECT.
const tabColumns = `owner, id, url, data, created_at, updated_at`

// scanTab сканирует строку результата в model.Tab.
func scanTab(row pgx.Row) (*model.Tab, error) {
	t := &model.Tab{}
	var data []byte
	if err := row.Scan(&t.Owner, &t.ID, &t.URL, &data, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(data, &t.Data); err != nil {
		return nil, err
	}
	return t, nil
}

// Get возвращает вкладку по владельцу и идентификатору.
func (r *tabRepo) Get(ctx context.Context, owner, id string) (*model.Tab, error) {
	query := `SELECT ` + tabColumns + ` FROM tabs WHERE owner = $1 AND id = $2`

	t, err := scanTab(r.db.QueryRow(ctx, query, owner, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения вкладки %s: %w", id, err)
	}
	return t, nil
}

// MergeData — upsert со слиянием JSONB (оператор ||: правый операнд
// перекрывает совпадающие ключи). Пустой url не затирает сохранённый.
func (r *tabRepo) MergeData(ctx context.Context, owner, id, url string, data model.FormDraft) (*model.Tab, error) {
	payload, err := marshalJSONB(data)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации черновика вкладки %s: %w", id, err)
	}

	query := `
		INSERT INTO tabs (owner, id, url, data)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (owner, id) DO UPDATE
		SET data = tabs.data || EXCLUDED.data,
			url = COALESCE(NULLIF(EXCLUDED.url, ''), tabs.url),
			updated_at = NOW()
		RETURNING ` + tabColumns

	t, err := scanTab(r.db.QueryRow(ctx, query, owner, id, url, payload))
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения черновика вкладки %s: %w", id, err)
	}
	return t, nil
}

// ListByOwner возвращает все вкладки оператора.
func (r *tabRepo) ListByOwner(ctx context.Context, owner string) ([]*model.Tab, error) {
	query := `SELECT ` + tabColumns + ` FROM tabs WHERE owner = $1 ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения вкладок: %w", err)
	}
	defer rows.Close()

	var result []*model.Tab
	for rows.Next() {
		t, err := scanTab(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования вкладки: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Delete удаляет вкладку.
func (r *tabRepo) Delete(ctx context.Context, owner, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tabs WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления вкладки %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
