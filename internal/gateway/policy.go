package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/frontandrew/insura/internal/wire"
)

// PolicyGateway - интерфейс удаленных операций над полисами
type PolicyGateway interface {
	// List возвращает страницу полисов по активным фильтрам
	List(ctx context.Context, filters domain.ListFilters) (*domain.PolicyPage, error)

	// Get возвращает полис по ID
	Get(ctx context.Context, id int64) (*domain.Policy, error)

	// Create создает новый полис из записи в формате API
	Create(ctx context.Context, record wire.Record) (*domain.Policy, error)

	// Update частично обновляет полис: меняются только переданные поля
	Update(ctx context.Context, id int64, record wire.Record) (*domain.Policy, error)

	// Delete удаляет полис
	Delete(ctx context.Context, id int64) error

	// GenerateDocument запускает генерацию PDF и возвращает ссылку на скачивание
	GenerateDocument(ctx context.Context, id int64) (*domain.DocumentLink, error)
}

// policyResponse - конверт ответа сервера с одним полисом
type policyResponse struct {
	Data domain.Policy `json:"data"`
}

// List возвращает страницу полисов
// GET /policies?search=&status=&page=&per_page=
func (c *Client) List(ctx context.Context, filters domain.ListFilters) (*domain.PolicyPage, error) {
	query := url.Values{}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}
	if filters.Status != "" {
		query.Set("status", filters.Status)
	}
	if filters.Page > 0 {
		query.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(filters.PerPage))
	}

	var page domain.PolicyPage
	if err := c.do(ctx, http.MethodGet, "/policies", query, nil, &page); err != nil {
		return nil, err
	}

	if page.Data == nil {
		page.Data = []domain.Policy{}
	}
	return &page, nil
}

// Get возвращает полис по ID
// GET /policies/{id}
func (c *Client) Get(ctx context.Context, id int64) (*domain.Policy, error) {
	var resp policyResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/policies/%d", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Create создает новый полис
// POST /policies
func (c *Client) Create(ctx context.Context, record wire.Record) (*domain.Policy, error) {
	var resp policyResponse
	if err := c.do(ctx, http.MethodPost, "/policies", nil, record, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Update частично обновляет полис
// PUT /policies/{id}
func (c *Client) Update(ctx context.Context, id int64, record wire.Record) (*domain.Policy, error) {
	var resp policyResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/policies/%d", id), nil, record, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Delete удаляет полис
// DELETE /policies/{id}
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/policies/%d", id), nil, nil, nil)
}

// GenerateDocument запускает генерацию PDF документа полиса
// POST /policies/{id}/pdf
func (c *Client) GenerateDocument(ctx context.Context, id int64) (*domain.DocumentLink, error) {
	var link domain.DocumentLink
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/policies/%d/pdf", id), nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}
