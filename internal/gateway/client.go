// Package gateway реализует клиент удаленного API полисов: по одной
// функции на операцию, один HTTP запрос на вызов, без повторов и кэширования
// (повторы - ответственность транспорта).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/frontandrew/insura/internal/pkg/logger"
)

// CredentialProvider предоставляет bearer-токен текущей сессии.
// Пустая строка означает отсутствие сессии
type CredentialProvider interface {
	Token() string
}

// SessionInvalidator вызывается при ответе 401: любой такой ответ
// глобально инвалидирует сессию (сквозная ответственность шлюза)
type SessionInvalidator interface {
	Invalidate()
}

// apiErrorResponse - тело ответа сервера при ошибке
type apiErrorResponse struct {
	Message string             `json:"message"`
	Errors  domain.FieldErrors `json:"errors,omitempty"`
}

// Client - HTTP клиент API полисов
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialProvider
	invalidator SessionInvalidator
	logger      logger.Logger
}

// Option настраивает Client при создании
type Option func(*Client)

// WithSessionInvalidator задает обработчик глобальной инвалидации сессии
func WithSessionInvalidator(inv SessionInvalidator) Option {
	return func(c *Client) {
		c.invalidator = inv
	}
}

// WithHTTPClient подменяет http.Client (для тестов)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient создает новый клиент API
func NewClient(baseURL string, timeout time.Duration, credentials CredentialProvider, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		credentials: credentials,
		logger:      log,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do выполняет один HTTP запрос и декодирует ответ в out (если out != nil)
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Прикрепляем учетные данные сессии к каждому запросу
	if token := c.credentials.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.handleErrorResponse(method, path, resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// handleErrorResponse преобразует ошибочный HTTP статус в доменную ошибку
func (c *Client) handleErrorResponse(method, path string, status int, body []byte) error {
	var apiErr apiErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	switch status {
	case http.StatusUnauthorized:
		// 401 глобально инвалидирует сессию, затем ошибка идет наверх
		if c.invalidator != nil {
			c.invalidator.Invalidate()
		}
		return domain.ErrUnauthorized

	case http.StatusNotFound:
		return domain.ErrNotFound

	case http.StatusUnprocessableEntity:
		// Серверное отклонение неотличимо для вызывающего от локального
		return domain.NewValidationError(apiErr.Message, apiErr.Errors)
	}

	c.logger.Error("API request failed", map[string]interface{}{
		"method": method,
		"path":   path,
		"status": status,
	})

	message := apiErr.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("api returned status %d: %s", status, message)
}
