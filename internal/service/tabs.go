// tabs.go — вкладки оболочки (состояние меню) текущего оператора.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/repository"
)

// TabService — чтение и закрытие вкладок.
type TabService struct {
	tabs   repository.TabRepository
	logger *slog.Logger
}

// NewTabService создаёт сервис вкладок.
func NewTabService(tabs repository.TabRepository, logger *slog.Logger) *TabService {
	return &TabService{
		tabs:   tabs,
		logger: logger.With(slog.String("component", "tab_service")),
	}
}

// Get возвращает вкладку оператора.
func (s *TabService) Get(ctx context.Context, owner, tabID string) (*model.Tab, error) {
	tab, err := s.tabs.Get(ctx, owner, tabID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения вкладки: %w", err)
	}
	return tab, nil
}

// List возвращает вкладки оператора.
func (s *TabService) List(ctx context.Context, owner string) ([]*model.Tab, error) {
	tabs, err := s.tabs.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения вкладок: %w", err)
	}
	return tabs, nil
}

// Remove закрывает вкладку вместе с черновиком.
func (s *TabService) Remove(ctx context.Context, owner, tabID string) error {
	if err := s.tabs.Delete(ctx, owner, tabID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка закрытия вкладки: %w", err)
	}

	s.logger.Info("Вкладка закрыта",
		slog.String("tab_id", tabID),
		slog.String("owner", owner),
	)
	return nil
}
