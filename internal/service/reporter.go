// reporter.go — отправка неструктурированных ошибок создания пользователя в Sentry.
package service

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// ErrorReporter — внешний получатель ошибок.
type ErrorReporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
}

// SentryReporter отправляет ошибки в Sentry через hub из контекста
// (или текущий hub, если в контексте его нет). Без DSN sentry-go
// ничего не отправляет.
type SentryReporter struct {
	logger *slog.Logger
}

// NewSentryReporter создаёт SentryReporter.
func NewSentryReporter(logger *slog.Logger) *SentryReporter {
	return &SentryReporter{logger: logger.With(slog.String("component", "sentry_reporter"))}
}

// Report отправляет ошибку с тегами.
func (r *SentryReporter) Report(ctx context.Context, err error, tags map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	var eventID *sentry.EventID
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		eventID = hub.CaptureException(err)
	})

	if eventID != nil {
		r.logger.Debug("Ошибка отправлена в Sentry", slog.String("event_id", string(*eventID)))
	}
}

// NopReporter — ErrorReporter, который ничего не делает.
type NopReporter struct{}

// Report ничего не делает.
func (NopReporter) Report(context.Context, error, map[string]string) {}
