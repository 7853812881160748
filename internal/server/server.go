// Пакет server — HTTP-сервер User Admin Module с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на API Gateway.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/user-admin-module/internal/api/handlers"
	"github.com/bigkaa/goartstore/user-admin-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/user-admin-module/internal/config"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/rbac"
	"github.com/bigkaa/goartstore/user-admin-module/internal/i18n"
	uihandlers "github.com/bigkaa/goartstore/user-admin-module/internal/ui/handlers"
)

// Server — HTTP-сервер User Admin Module.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// Routes — обработчики и middleware, из которых собирается роутер.
type Routes struct {
	API    *handlers.APIHandler
	Health *handlers.HealthHandler
	UI     *uihandlers.UserFormHandler
	// JWTAuth — может быть nil для тестирования без auth
	JWTAuth *middleware.JWTAuth
	// Validator — проверка запросов по OpenAPI-контракту (может быть nil)
	Validator *middleware.RequestValidator
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, routes Routes) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, routes),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает роутер. Health и metrics проверяются Kubernetes
// напрямую, без API Gateway, поэтому доступны без JWT.
func NewRouter(logger *slog.Logger, routes Routes) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))
	router.Use(i18n.Middleware())

	router.Get("/health/live", routes.Health.HealthLive)
	router.Get("/health/ready", routes.Health.HealthReady)
	router.Get("/metrics", routes.Health.GetMetrics)

	// Маршруты оператора
	router.Group(func(r chi.Router) {
		if routes.JWTAuth != nil {
			r.Use(routes.JWTAuth.Middleware())
		}

		r.Route("/api/v1", func(r chi.Router) {
			if routes.Validator != nil {
				r.Use(routes.Validator.Middleware())
			}
			api := routes.API

			r.With(middleware.RequireAction(rbac.ActionViewForm)).Get("/user-forms/{role}", api.GetUserForm)

			r.With(middleware.RequireAction(rbac.ActionViewForm)).Get("/tabs", api.ListTabs)
			r.With(middleware.RequireAction(rbac.ActionViewForm)).Get("/tabs/{tabID}", api.GetTab)
			r.With(middleware.RequireAction(rbac.ActionSaveDraft)).Delete("/tabs/{tabID}", api.RemoveTab)
			r.With(middleware.RequireAction(rbac.ActionSaveDraft)).Put("/tabs/{tabID}/draft", api.SaveDraft)

			r.With(middleware.RequireAction(rbac.ActionSearchShops)).Get("/shops/search", api.SearchShops)

			r.With(middleware.RequireAction(rbac.ActionViewForm)).Get("/users", api.ListUsers)
			r.With(middleware.RequireAction(rbac.ActionCreateUser)).Post("/users/{role}", api.SubmitUser)

			r.With(middleware.RequireAction(rbac.ActionUploadAvatar)).Post("/media/users", api.UploadAvatar)
		})

		if routes.UI != nil {
			r.With(middleware.RequireAction(rbac.ActionViewForm)).Get("/admin/users/add/{role}", routes.UI.HandleUserForm)
		}
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
