// Точка входа User Admin Module — экран создания пользователя с ролью
// для панели администратора магазина.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// инициализирует клиенты Keycloak, backend API и MinIO, собирает сервисный
// слой и запускает HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/bigkaa/goartstore/user-admin-module/internal/api/handlers"
	"github.com/bigkaa/goartstore/user-admin-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/user-admin-module/internal/api/openapi"
	"github.com/bigkaa/goartstore/user-admin-module/internal/backendclient"
	"github.com/bigkaa/goartstore/user-admin-module/internal/config"
	"github.com/bigkaa/goartstore/user-admin-module/internal/database"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/rbac"
	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/submission"
	"github.com/bigkaa/goartstore/user-admin-module/internal/i18n"
	"github.com/bigkaa/goartstore/user-admin-module/internal/keycloak"
	"github.com/bigkaa/goartstore/user-admin-module/internal/mediastore"
	"github.com/bigkaa/goartstore/user-admin-module/internal/repository"
	"github.com/bigkaa/goartstore/user-admin-module/internal/server"
	"github.com/bigkaa/goartstore/user-admin-module/internal/service"
	uihandlers "github.com/bigkaa/goartstore/user-admin-module/internal/ui/handlers"
	"github.com/bigkaa/goartstore/user-admin-module/internal/validation"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения (.env подхватывается)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("User Admin Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Sentry (если задан DSN)
	var reporter service.ErrorReporter = service.NopReporter{}
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: config.Version,
		}); err != nil {
			logger.Warn("Sentry недоступен, отчёты об ошибках отключены", slog.String("error", err.Error()))
		} else {
			defer sentry.Flush(2 * time.Second)
			reporter = service.NewSentryReporter(logger)
			logger.Info("Sentry инициализирован")
		}
	}

	// 4. Каталоги переводов
	bundle, err := i18n.LoadEmbedded(logger)
	if err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Миграции и подключение к PostgreSQL
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// Адаптер pgxpool → *sql.DB для topologymetrics
	pgDB := database.OpenStdDB(pool)
	defer pgDB.Close()

	// 6. Keycloak (client credentials) и backend API
	kcClient := keycloak.New(
		cfg.KeycloakURL,
		cfg.KeycloakRealm,
		cfg.KeycloakClientID,
		cfg.KeycloakClientSecret,
		nil,
		logger,
	)

	backend, err := backendclient.New(
		cfg.BackendURL,
		cfg.BackendCACertPath,
		cfg.BackendTimeout,
		kcClient.TokenProvider(),
		logger,
		backendclient.WithUnauthorizedHook(kcClient.Invalidate),
	)
	if err != nil {
		logger.Error("Ошибка создания клиента backend API", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Хранилище аватаров
	media, err := mediastore.New(mediastore.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	}, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента MinIO", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := media.EnsureBucket(ctx); err != nil {
		logger.Warn("Bucket аватаров недоступен, загрузка будет отклоняться",
			slog.String("bucket", cfg.MinioBucket),
			slog.String("error", err.Error()),
		)
	}

	// 8. Repositories
	tabRepo := repository.NewTabRepository(pool)
	paramsRepo := repository.NewUserListParamsRepository(pool)

	// 9. Services
	draftSvc := service.NewDraftService(tabRepo, logger)
	tabSvc := service.NewTabService(tabRepo, logger)
	userListSvc := service.NewUserListService(paramsRepo, backend, logger)
	shopSvc := service.NewShopLookupService(backend, cfg.ShopCacheSize, cfg.ShopCacheTTL, logger)
	avatarSvc := service.NewAvatarService(media, cfg.AvatarMaxSize, logger)
	submissionSvc := service.NewSubmissionService(
		validation.New(),
		submission.NewRegistry(),
		backend,
		tabRepo,
		userListSvc,
		bundle,
		reporter,
		cfg.UserListMenu,
		logger,
	)

	// 10. topologymetrics — мониторинг зависимостей
	dephealthSvc, err := service.NewDephealthService(service.DephealthConfig{
		ServiceID:       "user-admin-module",
		Group:           cfg.DephealthGroup,
		DB:              pgDB,
		PostgresURL:     cfg.DatabaseURL(),
		BackendURL:      cfg.BackendURL,
		KeycloakJWKSURL: cfg.JWTJWKSURL,
		CheckInterval:   cfg.DephealthCheckInterval,
	}, logger)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
	} else if err := dephealthSvc.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
	}

	// 11. OpenAPI-контракт и JWT middleware
	doc, err := openapi.Load(ctx)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI-контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}
	validator, err := middleware.NewRequestValidator(doc)
	if err != nil {
		logger.Error("Ошибка создания валидатора запросов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWTJWKSURL,
		cfg.JWTIssuer,
		rbac.GroupMapping{
			AdminGroups:    cfg.RoleAdminGroups,
			ManagerGroups:  cfg.RoleManagerGroups,
			ReadonlyGroups: cfg.RoleReadonlyGroups,
		},
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	// 12. Handlers и HTTP-сервер
	apiHandler := handlers.NewAPIHandler(handlers.Deps{
		Drafts:     draftSvc,
		Tabs:       tabSvc,
		Shops:      shopSvc,
		Submitter:  submissionSvc,
		Users:      userListSvc,
		Avatars:    avatarSvc,
		Translator: bundle,
	}, logger)
	var backendReady handlers.ReadinessChecker
	if dephealthSvc != nil {
		backendReady = dephealthSvc
	}
	healthHandler := handlers.NewHealthHandler(
		database.NewReadinessChecker(pool),
		kcClient,
		media,
		backendReady,
	)

	srv := server.New(cfg, logger, server.Routes{
		API:       apiHandler,
		Health:    healthHandler,
		UI:        uihandlers.NewUserFormHandler(draftSvc, bundle, logger),
		JWTAuth:   jwtAuth,
		Validator: validator,
	})
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	logger.Info("User Admin Module остановлен")
}
