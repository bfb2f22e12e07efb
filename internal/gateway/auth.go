package gateway

import (
	"context"
	"net/http"

	"github.com/frontandrew/insura/internal/domain"
)

// AuthGateway - интерфейс удаленных операций аутентификации
type AuthGateway interface {
	// Login выполняет вход и возвращает токен с данными пользователя
	Login(ctx context.Context, credentials domain.Credentials) (*domain.AuthResponse, error)

	// Register регистрирует нового пользователя
	Register(ctx context.Context, registration domain.Registration) (*domain.AuthResponse, error)

	// CurrentUser возвращает пользователя текущей сессии
	CurrentUser(ctx context.Context) (*domain.User, error)

	// Logout завершает сессию на сервере
	Logout(ctx context.Context) error
}

// Login выполняет вход
// POST /login
func (c *Client) Login(ctx context.Context, credentials domain.Credentials) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/login", nil, credentials, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register регистрирует нового пользователя
// POST /register
func (c *Client) Register(ctx context.Context, registration domain.Registration) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/register", nil, registration, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser возвращает пользователя текущей сессии
// GET /user
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/user", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout завершает сессию на сервере
// POST /logout
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, nil)
}
