package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

// UserListParamsRepository — интерфейс для таблицы user_list_params.
type UserListParamsRepository interface {
	// Get возвращает параметры списка оператора. Если нет — ErrNotFound.
	Get(ctx context.Context, owner string) (*model.UserListParams, error)
	// Save создаёт или заменяет параметры списка (upsert).
	Save(ctx context.Context, p *model.UserListParams) error
}

type userListParamsRepo struct {
	db DBTX
}

// NewUserListParamsRepository создаёт репозиторий параметров списка пользователей.
func NewUserListParamsRepository(db DBTX) UserListParamsRepository {
	return &userListParamsRepo{db: db}
}

// Get возвращает параметры списка оператора.
func (r *userListParamsRepo) Get(ctx context.Context, owner string) (*model.UserListParams, error) {
	query := `SELECT owner, params, updated_at FROM user_list_params WHERE owner = $1`

	p := &model.UserListParams{}
	var params []byte
	err := r.db.QueryRow(ctx, query, owner).Scan(&p.Owner, &params, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения параметров списка [%s]: %w", owner, err)
	}
	if err := unmarshalJSONB(params, &p.Params); err != nil {
		return nil, err
	}
	return p, nil
}

// Save — INSERT ... ON CONFLICT DO UPDATE, параметры заменяются целиком.
func (r *userListParamsRepo) Save(ctx context.Context, p *model.UserListParams) error {
	payload, err := marshalJSONB(p.Params)
	if err != nil {
		return fmt.Errorf("ошибка сериализации параметров списка [%s]: %w", p.Owner, err)
	}

	query := `
		INSERT INTO user_list_params (owner, params)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (owner) DO UPDATE
		SET params = EXCLUDED.params,
			updated_at = NOW()
		RETURNING updated_at`

	if err := r.db.QueryRow(ctx, query, p.Owner, payload).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("ошибка сохранения параметров списка [%s]: %w", p.Owner, err)
	}
	return nil
}
