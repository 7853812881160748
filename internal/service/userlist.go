// userlist.go — параметры списка пользователей оператора и обновление списка.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/goartstore/user-admin-module/internal/backendclient"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/repository"
)

// UserLister — получение списка пользователей из backend.
type UserLister interface {
	ListUsers(ctx context.Context, params map[string]string) (*model.UserList, error)
}

// UserListService — хранит параметры фильтра списка и запрашивает список.
type UserListService struct {
	params  repository.UserListParamsRepository
	backend UserLister
	logger  *slog.Logger
}

// NewUserListService создаёт сервис списка пользователей.
func NewUserListService(params repository.UserListParamsRepository, backend UserLister, logger *slog.Logger) *UserListService {
	return &UserListService{
		params:  params,
		backend: backend,
		logger:  logger.With(slog.String("component", "user_list_service")),
	}
}

// CurrentParams возвращает сохранённые параметры оператора (пустые, если нет).
func (s *UserListService) CurrentParams(ctx context.Context, owner string) (model.UserListParams, error) {
	p, err := s.params.Get(ctx, owner)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserListParams{Owner: owner, Params: map[string]string{}}, nil
		}
		return model.UserListParams{}, fmt.Errorf("ошибка получения параметров списка: %w", err)
	}
	return *p, nil
}

// List сохраняет параметры как текущие и запрашивает список у backend.
func (s *UserListService) List(ctx context.Context, owner string, params map[string]string) (*model.UserList, error) {
	p := model.UserListParams{Owner: owner, Params: params}
	if p.Params == nil {
		p.Params = map[string]string{}
	}
	if err := s.params.Save(ctx, &p); err != nil {
		return nil, fmt.Errorf("ошибка сохранения параметров списка: %w", err)
	}
	return s.fetch(ctx, p.Params)
}

// Refresh обновляет список с текущими параметрами оператора и ролью role.
// Параметры сохраняются до запроса к backend и возвращаются даже при
// ошибке запроса.
func (s *UserListService) Refresh(ctx context.Context, owner, role string) (model.UserListParams, *model.UserList, error) {
	current, err := s.CurrentParams(ctx, owner)
	if err != nil {
		return model.UserListParams{}, nil, err
	}

	next := current.With("role", role)
	if err := s.params.Save(ctx, &next); err != nil {
		return next, nil, fmt.Errorf("ошибка сохранения параметров списка: %w", err)
	}

	list, err := s.fetch(ctx, next.Params)
	if err != nil {
		return next, nil, err
	}

	s.logger.Debug("Список пользователей обновлён",
		slog.String("owner", owner),
		slog.String("role", role),
		slog.Int("count", len(list.Data)),
	)
	return next, list, nil
}

func (s *UserListService) fetch(ctx context.Context, params map[string]string) (*model.UserList, error) {
	list, err := s.backend.ListUsers(ctx, params)
	if err != nil {
		if errors.Is(err, backendclient.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	return list, nil
}
