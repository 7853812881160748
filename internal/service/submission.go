// submission.go — отправка формы создания пользователя в backend.
//
// Порядок: нормализация → локальная валидация → захват вкладки
// (одна отправка на вкладку) → запрос в backend → эффекты успеха или
// уведомления об ошибке → вкладка возвращается в idle.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/bigkaa/goartstore/user-admin-module/internal/backendclient"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/formpolicy"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/submission"
	"github.com/bigkaa/goartstore/user-admin-module/internal/i18n"
	"github.com/bigkaa/goartstore/user-admin-module/internal/repository"
	"github.com/bigkaa/goartstore/user-admin-module/internal/validation"
)

// Ключи сообщений отправки.
const (
	keySubmitFailed      = "submit.failed"
	keySuccessfullyAdded = "successfully.created"
)

// UserCreator — создание пользователя в backend.
type UserCreator interface {
	CreateUser(ctx context.Context, payload *model.SubmissionPayload) (*model.CreatedUser, error)
}

// TabRemover — закрытие вкладки.
type TabRemover interface {
	Delete(ctx context.Context, owner, id string) error
}

// ListRefresher — обновление списка пользователей оператора.
type ListRefresher interface {
	Refresh(ctx context.Context, owner, role string) (model.UserListParams, *model.UserList, error)
}

// SubmitRequest — запрос на отправку формы.
type SubmitRequest struct {
	// Owner — sub оператора
	Owner string
	// TabID — вкладка, из которой отправлена форма (может быть пустой)
	TabID string
	// Role — роль создаваемого пользователя из маршрута
	Role string
	// Values — значения формы
	Values *model.FormValues
	// Lang — язык сообщений
	Lang string
}

// SubmissionService — конвейер отправки формы.
type SubmissionService struct {
	validator  *validation.Validator
	registry   *submission.Registry
	backend    UserCreator
	tabs       TabRemover
	userList   ListRefresher
	translator i18n.Translator
	reporter   ErrorReporter
	menu       string
	logger     *slog.Logger
	now        func() time.Time
}

// NewSubmissionService создаёт сервис отправки.
// menu — меню списка пользователей, куда оболочка переходит после успеха.
func NewSubmissionService(
	validator *validation.Validator,
	registry *submission.Registry,
	backend UserCreator,
	tabs TabRemover,
	userList ListRefresher,
	translator i18n.Translator,
	reporter ErrorReporter,
	menu string,
	logger *slog.Logger,
) *SubmissionService {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &SubmissionService{
		validator:  validator,
		registry:   registry,
		backend:    backend,
		tabs:       tabs,
		userList:   userList,
		translator: translator,
		reporter:   reporter,
		menu:       menu,
		logger:     logger.With(slog.String("component", "submission_service")),
		now:        time.Now,
	}
}

// Submit отправляет форму.
//
// Ошибки валидации и ошибки backend возвращаются в SubmitResult
// (Status invalid или failed) с nil-ошибкой. Ошибка возвращается, только
// если отправка не состоялась: пустой запрос или для вкладки уже идёт
// отправка (ErrSubmissionInFlight).
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*model.SubmitResult, error) {
	if req.Values == nil {
		return nil, fmt.Errorf("%w: пустые значения формы", ErrValidation)
	}
	role := formpolicy.Role(req.Role)

	validation.Normalize(req.Values)
	if errs := s.validator.Validate(req.Values, role, s.now()); errs.HasErrors() {
		submissionsTotal.WithLabelValues(outcomeInvalid).Inc()
		return &model.SubmitResult{
			Status:      model.SubmitInvalid,
			FieldErrors: s.translateErrors(req.Lang, errs),
		}, nil
	}

	key := req.Owner + "/" + req.TabID
	sm, err := s.registry.Begin(key)
	if err != nil {
		submissionsTotal.WithLabelValues(outcomeInFlight).Inc()
		s.logger.Warn("Повторная отправка формы отклонена",
			slog.String("tab_id", req.TabID),
			slog.String("owner", req.Owner),
		)
		return nil, fmt.Errorf("%w: %v", ErrSubmissionInFlight, err)
	}

	outcome := submission.StateFailed
	defer func() {
		if err := s.registry.Finish(key, sm, outcome); err != nil {
			s.logger.Error("Ошибка завершения отправки",
				slog.String("tab_id", req.TabID),
				slog.String("error", err.Error()),
			)
		}
	}()

	payload := BuildPayload(req.Values, role)

	start := time.Now()
	user, err := s.backend.CreateUser(ctx, payload)
	submissionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return s.failure(ctx, req, err), nil
	}

	outcome = submission.StateSuccess
	submissionsTotal.WithLabelValues(outcomeSuccess).Inc()
	return s.success(ctx, req, user), nil
}

// success выполняет действия после создания пользователя в порядке:
// закрыть вкладку, перейти к списку, обновить список с ролью созданного
// пользователя, сбросить форму. Ошибки этих действий не отменяют успех.
func (s *SubmissionService) success(ctx context.Context, req SubmitRequest, user *model.CreatedUser) *model.SubmitResult {
	result := &model.SubmitResult{
		Status:   model.SubmitSuccess,
		User:     user,
		Redirect: "/" + s.menu,
	}

	if req.TabID != "" {
		if err := s.tabs.Delete(ctx, req.Owner, req.TabID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Не удалось закрыть вкладку после создания пользователя",
				slog.String("tab_id", req.TabID),
				slog.String("error", err.Error()),
			)
		}
		result.Effects = append(result.Effects, model.Effect{
			Type:  model.EffectRemoveTab,
			TabID: req.TabID,
			Menu:  s.menu,
		})
	}

	result.Effects = append(result.Effects, model.Effect{
		Type: model.EffectNavigate,
		Menu: s.menu,
		URL:  result.Redirect,
	})

	params, _, err := s.userList.Refresh(ctx, req.Owner, user.Role)
	if err != nil {
		s.logger.Warn("Не удалось обновить список пользователей",
			slog.String("role", user.Role),
			slog.String("error", err.Error()),
		)
	}
	result.Effects = append(result.Effects,
		model.Effect{Type: model.EffectRefreshList, Menu: s.menu, Params: params.Params},
		model.Effect{Type: model.EffectResetForm, TabID: req.TabID},
	)

	result.Notifications = []model.Notification{{
		Type:    model.NotificationSuccess,
		Message: s.translate(req.Lang, keySuccessfullyAdded),
	}}

	s.logger.Info("Пользователь создан",
		slog.Int64("user_id", user.ID),
		slog.String("role", user.Role),
		slog.String("owner", req.Owner),
	)
	return result
}

// failure формирует результат неуспешной отправки.
// Ошибки по полям от backend передаются без перевода: скрыть все
// уведомления, затем по одному уведомлению на поле с первым сообщением.
// Прочие ошибки дают одно общее уведомление и уходят в ErrorReporter.
func (s *SubmissionService) failure(ctx context.Context, req SubmitRequest, err error) *model.SubmitResult {
	var apiErr *backendclient.APIError
	if errors.As(err, &apiErr) && apiErr.HasParams() {
		submissionsTotal.WithLabelValues(outcomeFieldErrors).Inc()

		fieldErrors := make(model.FieldErrors, len(apiErr.Params))
		for field, msgs := range apiErr.Params {
			fieldErrors[field] = append([]string(nil), msgs...)
		}

		notifications := []model.Notification{{Type: model.NotificationDismissAll}}
		for _, field := range sortedFields(fieldErrors) {
			notifications = append(notifications, model.Notification{
				Type:    model.NotificationError,
				Message: fieldErrors.First(field),
				Field:   field,
			})
		}

		s.logger.Info("Backend отклонил создание пользователя",
			slog.Int("status", apiErr.StatusCode),
			slog.Int("fields", len(fieldErrors)),
		)
		return &model.SubmitResult{
			Status:        model.SubmitFailed,
			Notifications: notifications,
			FieldErrors:   fieldErrors,
		}
	}

	submissionsTotal.WithLabelValues(outcomeFailed).Inc()
	s.logger.Error("Ошибка создания пользователя",
		slog.String("role", req.Role),
		slog.String("tab_id", req.TabID),
		slog.String("error", err.Error()),
	)
	s.reporter.Report(ctx, err, map[string]string{
		"component": "submission",
		"role":      req.Role,
	})

	return &model.SubmitResult{
		Status: model.SubmitFailed,
		Notifications: []model.Notification{
			{Type: model.NotificationDismissAll},
			{Type: model.NotificationError, Message: s.translate(req.Lang, keySubmitFailed)},
		},
	}
}

func (s *SubmissionService) translateErrors(lang string, errs model.FieldErrors) model.FieldErrors {
	out := make(model.FieldErrors, len(errs))
	for field, keys := range errs {
		for _, key := range keys {
			out.Add(field, s.translate(lang, key))
		}
	}
	return out
}

func (s *SubmissionService) translate(lang, key string) string {
	if s.translator == nil {
		return key
	}
	return s.translator.Translate(lang, key)
}

func sortedFields(fe model.FieldErrors) []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
