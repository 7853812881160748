// Пакет backendclient — HTTP-клиент к backend API магазина
// (создание пользователей, поиск магазинов, список пользователей).
// Авторизация — сервисный токен Keycloak (Bearer). Поддерживает TLS
// с кастомным CA (UA_BACKEND_CA_CERT_PATH).
package backendclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/user-admin-module/internal/domain/model"
)

// Пути backend API.
const (
	pathUsers       = "/api/v1/dashboard/admin/users"
	pathShopsSearch = "/api/v1/dashboard/admin/shops/search"
)

// StatusApproved — фильтр поиска: только одобренные магазины.
const StatusApproved = "approved"

// maxErrorBody — сколько байт тела ошибки читать.
const maxErrorBody = 64 << 10

// TokenProvider — функция, возвращающая сервисный токен для backend.
type TokenProvider func(ctx context.Context) (string, error)

// Shop — магазин из ответа поиска.
type Shop struct {
	ID          int64            `json:"id"`
	Translation *ShopTranslation `json:"translation"`
}

// ShopTranslation — перевод названия магазина.
type ShopTranslation struct {
	Title  string `json:"title"`
	Locale string `json:"locale,omitempty"`
}

// Client — HTTP-клиент backend API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenProvider  TokenProvider
	onUnauthorized func()
	logger         *slog.Logger
}

// Option — опция клиента.
type Option func(*Client)

// WithUnauthorizedHook задаёт функцию, вызываемую при ответе 401
// (сброс кэша сервисного токена).
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New создаёт клиент backend API.
// caCertPath — путь к CA-сертификату (пустая строка — системный пул).
// tokenProvider — может быть nil (запросы без авторизации).
func New(baseURL, caCertPath string, timeout time.Duration, tokenProvider TokenProvider, logger *slog.Logger, opts ...Option) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата backend: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат backend добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    httpClient,
		tokenProvider: tokenProvider,
		logger:        logger.With(slog.String("component", "backend_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("файл %s не содержит PEM-сертификатов", caCertPath)
	}

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}

// CreateUser создаёт пользователя.
// POST /api/v1/dashboard/admin/users, ответ {"data": {...}}.
// Ошибка backend со статусом — *APIError (Params заполнен при ошибках полей).
func (c *Client) CreateUser(ctx context.Context, payload *model.SubmissionPayload) (*model.CreatedUser, error) {
	var resp struct {
		Data model.CreatedUser `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, pathUsers, nil, payload, &resp); err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	return &resp.Data, nil
}

// SearchShops ищет магазины по тексту.
// GET /api/v1/dashboard/admin/shops/search?search=...&status=...
func (c *Client) SearchShops(ctx context.Context, search, status string) ([]Shop, error) {
	query := url.Values{}
	query.Set("search", search)
	if status != "" {
		query.Set("status", status)
	}

	var resp struct {
		Data []Shop `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, pathShopsSearch, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("SearchShops: %w", err)
	}
	return resp.Data, nil
}

// ListUsers запрашивает страницу списка пользователей с параметрами фильтра.
// GET /api/v1/dashboard/admin/users?role=...&page=...
func (c *Client) ListUsers(ctx context.Context, params map[string]string) (*model.UserList, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	var resp model.UserList
	if err := c.do(ctx, http.MethodGet, pathUsers, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return &resp, nil
}

// do выполняет запрос к backend и декодирует JSON-ответ в target.
// Транспортные ошибки оборачиваются в ErrUnavailable, ответы не-2xx — в *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, target any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("сериализация тела запроса: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokenProvider != nil {
		token, err := c.tokenProvider(ctx)
		if err != nil {
			return fmt.Errorf("%w: получение токена: %v", ErrUnavailable, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Запрос к backend",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseAPIError(resp.StatusCode, raw)
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("декодирование ответа backend: %w", err)
	}
	return nil
}
