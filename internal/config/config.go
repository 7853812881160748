// Пакет config — загрузка и валидация конфигурации User Admin Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации User Admin Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (диапазон 8000-8009)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Keycloak ---

	// URL Keycloak (например, https://keycloak.kryukov.lan)
	KeycloakURL string
	// Имя realm в Keycloak
	KeycloakRealm string
	// Client ID для Client Credentials flow (токен к backend API)
	KeycloakClientID string
	// Client Secret для Client Credentials flow
	KeycloakClientSecret string

	// --- JWT операторов ---

	// Issuer JWT (авто-вычисляется из KeycloakURL, если не задан)
	JWTIssuer string
	// URL JWKS endpoint (авто-вычисляется из KeycloakURL, если не задан)
	JWTJWKSURL string
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration

	// --- Backend API (пользователи, магазины) ---

	// Базовый URL backend API
	BackendURL string
	// Таймаут HTTP-запросов к backend API
	BackendTimeout time.Duration
	// Путь к CA-сертификату для TLS (опционально)
	BackendCACertPath string

	// --- MinIO (аватары) ---

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	// Максимальная сторона аватара после ресайза (px)
	AvatarMaxSize int

	// --- Поиск магазинов ---

	// Размер LRU-кэша результатов поиска
	ShopCacheSize int
	// Время жизни записи в кэше поиска
	ShopCacheTTL time.Duration

	// --- Список пользователей ---

	// Меню списка пользователей, куда возвращается оболочка после создания
	UserListMenu string

	// --- Маппинг групп → ролей операторов ---

	RoleAdminGroups    []string
	RoleManagerGroups  []string
	RoleReadonlyGroups []string

	// --- Наблюдаемость ---

	// DSN Sentry (пустой — отчёты отключены)
	SentryDSN string
	// Группа topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
// Если рядом лежит файл .env, его значения подставляются в окружение
// (уже заданные переменные не перезаписываются).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// UA_PORT — порт HTTP-сервера (по умолчанию 8000)
	cfg.Port, err = getEnvInt("UA_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("UA_PORT: %w", err)
	}
	if cfg.Port < 8000 || cfg.Port > 8009 {
		return nil, fmt.Errorf("UA_PORT: значение %d вне допустимого диапазона 8000-8009", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("UA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("UA_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("UA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("UA_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	if cfg.DBHost, err = getEnvRequired("UA_DB_HOST"); err != nil {
		return nil, err
	}
	cfg.DBPort, err = getEnvInt("UA_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("UA_DB_PORT: %w", err)
	}
	if cfg.DBName, err = getEnvRequired("UA_DB_NAME"); err != nil {
		return nil, err
	}
	if cfg.DBUser, err = getEnvRequired("UA_DB_USER"); err != nil {
		return nil, err
	}
	if cfg.DBPassword, err = getEnvRequired("UA_DB_PASSWORD"); err != nil {
		return nil, err
	}

	cfg.DBSSLMode = getEnvDefault("UA_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("UA_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Keycloak ---

	if cfg.KeycloakURL, err = getEnvRequired("UA_KEYCLOAK_URL"); err != nil {
		return nil, err
	}
	cfg.KeycloakURL = strings.TrimRight(cfg.KeycloakURL, "/")
	cfg.KeycloakRealm = getEnvDefault("UA_KEYCLOAK_REALM", "artsore")
	if cfg.KeycloakClientID, err = getEnvRequired("UA_KEYCLOAK_CLIENT_ID"); err != nil {
		return nil, err
	}
	if cfg.KeycloakClientSecret, err = getEnvRequired("UA_KEYCLOAK_CLIENT_SECRET"); err != nil {
		return nil, err
	}

	// --- JWT ---

	cfg.JWTIssuer = getEnvDefault("UA_JWT_ISSUER",
		fmt.Sprintf("%s/realms/%s", cfg.KeycloakURL, cfg.KeycloakRealm))
	cfg.JWTJWKSURL = getEnvDefault("UA_JWT_JWKS_URL",
		fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", cfg.KeycloakURL, cfg.KeycloakRealm))

	cfg.JWKSRefreshInterval, err = getEnvDuration("UA_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("UA_JWKS_REFRESH_INTERVAL: %w", err)
	}
	cfg.JWTLeeway, err = getEnvDuration("UA_JWT_LEEWAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UA_JWT_LEEWAY: %w", err)
	}

	// --- Backend API ---

	if cfg.BackendURL, err = getEnvRequired("UA_BACKEND_URL"); err != nil {
		return nil, err
	}
	if _, parseErr := url.ParseRequestURI(cfg.BackendURL); parseErr != nil {
		return nil, fmt.Errorf("UA_BACKEND_URL: некорректный URL %q", cfg.BackendURL)
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	cfg.BackendTimeout, err = getEnvDuration("UA_BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UA_BACKEND_TIMEOUT: %w", err)
	}
	cfg.BackendCACertPath = getEnvDefault("UA_BACKEND_CA_CERT_PATH", "")

	// --- MinIO ---

	cfg.MinioEndpoint = getEnvDefault("UA_MINIO_ENDPOINT", "localhost:9000")
	cfg.MinioAccessKey = getEnvDefault("UA_MINIO_ACCESS_KEY", "minioadmin")
	cfg.MinioSecretKey = getEnvDefault("UA_MINIO_SECRET_KEY", "minioadmin")
	cfg.MinioBucket = getEnvDefault("UA_MINIO_BUCKET", "user-avatars")
	cfg.MinioUseSSL, err = getEnvBool("UA_MINIO_USE_SSL", false)
	if err != nil {
		return nil, fmt.Errorf("UA_MINIO_USE_SSL: %w", err)
	}
	cfg.AvatarMaxSize, err = getEnvInt("UA_AVATAR_MAX_SIZE", 512)
	if err != nil {
		return nil, fmt.Errorf("UA_AVATAR_MAX_SIZE: %w", err)
	}
	if cfg.AvatarMaxSize < 32 || cfg.AvatarMaxSize > 4096 {
		return nil, fmt.Errorf("UA_AVATAR_MAX_SIZE: значение %d вне допустимого диапазона 32-4096", cfg.AvatarMaxSize)
	}

	// --- Поиск магазинов ---

	cfg.ShopCacheSize, err = getEnvInt("UA_SHOP_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("UA_SHOP_CACHE_SIZE: %w", err)
	}
	if cfg.ShopCacheSize < 1 {
		return nil, fmt.Errorf("UA_SHOP_CACHE_SIZE: значение %d должно быть положительным", cfg.ShopCacheSize)
	}
	cfg.ShopCacheTTL, err = getEnvDuration("UA_SHOP_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("UA_SHOP_CACHE_TTL: %w", err)
	}

	// --- Список пользователей ---

	cfg.UserListMenu = strings.Trim(getEnvDefault("UA_USER_LIST_MENU", "users/admin"), "/")

	// --- Роли операторов ---

	cfg.RoleAdminGroups = parseCSV(getEnvDefault("UA_ROLE_ADMIN_GROUPS", "artsore-admins"))
	cfg.RoleManagerGroups = parseCSV(getEnvDefault("UA_ROLE_MANAGER_GROUPS", "artsore-managers"))
	cfg.RoleReadonlyGroups = parseCSV(getEnvDefault("UA_ROLE_READONLY_GROUPS", "artsore-viewers"))

	// --- Наблюдаемость ---

	cfg.SentryDSN = getEnvDefault("UA_SENTRY_DSN", "")
	cfg.DephealthGroup = getEnvDefault("UA_DEPHEALTH_GROUP", "artstore")
	cfg.DephealthCheckInterval, err = getEnvDuration("UA_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UA_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("UA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UA_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL без пароля (для лейблов dephealth).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
