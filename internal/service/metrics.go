// metrics.go — Prometheus-метрики сервисного слоя.
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы отправки формы (лейбл outcome).
const (
	outcomeSuccess     = "success"
	outcomeInvalid     = "invalid"
	outcomeFieldErrors = "field_errors"
	outcomeFailed      = "failed"
	outcomeInFlight    = "in_flight"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ua_submissions_total",
		Help: "Количество отправок формы создания пользователя по исходу.",
	}, []string{"outcome"})

	submissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ua_submission_duration_seconds",
		Help:    "Длительность вызова backend при создании пользователя.",
		Buckets: prometheus.DefBuckets,
	})

	shopCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ua_shop_cache_hits_total",
		Help: "Попадания в LRU-кэш поиска магазинов.",
	})
	shopCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ua_shop_cache_misses_total",
		Help: "Промахи LRU-кэша поиска магазинов.",
	})

	draftsSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ua_drafts_saved_total",
		Help: "Количество сохранённых черновиков формы.",
	})

	avatarsUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ua_avatars_uploaded_total",
		Help: "Количество загруженных аватаров.",
	})
)
