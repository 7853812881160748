// shops.go — поиск магазинов/филиалов для выпадающего списка формы.
// Результаты кэшируются в LRU с TTL (hashicorp/golang-lru/v2/expirable):
// виджет шлёт запрос на каждое нажатие после debounce, и одинаковые
// строки поиска повторяются.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bigkaa/goartstore/user-admin-module/internal/backendclient"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

// NoNameLabel — подпись магазина без перевода названия.
const NoNameLabel = "no name"

// ShopSearcher — поиск магазинов в backend.
type ShopSearcher interface {
	SearchShops(ctx context.Context, search, status string) ([]backendclient.Shop, error)
}

// ShopLookupService — поиск одобренных магазинов с кэшированием.
type ShopLookupService struct {
	backend ShopSearcher
	cache   *expirable.LRU[string, []model.ShopOption]
	logger  *slog.Logger
}

// NewShopLookupService создаёт сервис поиска.
// cacheSize — максимальное количество строк поиска в кэше, ttl — время жизни записи.
func NewShopLookupService(backend ShopSearcher, cacheSize int, ttl time.Duration, logger *slog.Logger) *ShopLookupService {
	return &ShopLookupService{
		backend: backend,
		cache:   expirable.NewLRU[string, []model.ShopOption](cacheSize, nil, ttl),
		logger:  logger.With(slog.String("component", "shop_lookup")),
	}
}

// Search возвращает варианты {label, value} для строки поиска.
// Ошибки backend не кэшируются и возвращаются вызывающему.
func (s *ShopLookupService) Search(ctx context.Context, text string) ([]model.ShopOption, error) {
	key := strings.TrimSpace(text)

	if opts, ok := s.cache.Get(key); ok {
		shopCacheHitsTotal.Inc()
		return opts, nil
	}
	shopCacheMissesTotal.Inc()

	shops, err := s.backend.SearchShops(ctx, key, backendclient.StatusApproved)
	if err != nil {
		s.logger.Warn("Ошибка поиска магазинов",
			slog.String("search", key),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, backendclient.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil, fmt.Errorf("ошибка поиска магазинов: %w", err)
	}

	opts := ShopOptions(shops)
	s.cache.Add(key, opts)
	return opts, nil
}

// ShopOptions преобразует магазины в варианты выбора.
// Подпись — название из перевода или "no name", если перевода нет.
func ShopOptions(shops []backendclient.Shop) []model.ShopOption {
	opts := make([]model.ShopOption, 0, len(shops))
	for _, shop := range shops {
		label := NoNameLabel
		if shop.Translation != nil {
			label = shop.Translation.Title
		}
		opts = append(opts, model.ShopOption{Label: label, Value: shop.ID})
	}
	return opts
}

// Purge очищает кэш поиска.
func (s *ShopLookupService) Purge() {
	s.cache.Purge()
}
