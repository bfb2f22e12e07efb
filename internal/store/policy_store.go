// Package store содержит единственное разделяемое изменяемое состояние
// клиента: текущую страницу полисов, открытый полис, флаги загрузки и
// активные фильтры. Источник истины - удаленный сервис; store применяет
// подтвержденные мутации к своим коллекциям оптимистично, без повторной
// загрузки списка.
package store

import (
	"context"
	"sync"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/frontandrew/insura/internal/gateway"
	"github.com/frontandrew/insura/internal/pkg/logger"
	"github.com/frontandrew/insura/internal/wire"
)

// PolicyStore - изменяемое состояние списка и текущего полиса
//
// Коллекции items и current - независимо закэшированные представления
// одних и тех же сущностей: обновление по id отражается в обоих, и оба
// меняются атомарно относительно читателей (под одним мьютексом).
// Параллельные операции не сериализуются: выигрывает последний
// полученный ответ
type PolicyStore struct {
	mu      sync.Mutex
	gateway gateway.PolicyGateway
	logger  logger.Logger

	items     []domain.Policy
	current   *domain.Policy
	pageInfo  domain.PageInfo
	filters   domain.ListFilters
	isLoading bool
	lastError string
}

// New создает store с фильтрами по умолчанию (страница 1, 15 на страницу)
func New(gw gateway.PolicyGateway, log logger.Logger) *PolicyStore {
	return &PolicyStore{
		gateway: gw,
		logger:  log,
		items:   []domain.Policy{},
		pageInfo: domain.PageInfo{
			CurrentPage: 1,
			LastPage:    1,
			PerPage:     15,
		},
		filters: domain.ListFilters{
			Page:    1,
			PerPage: 15,
		},
	}
}

// RefreshList загружает страницу полисов по активным фильтрам
// При успехе items и pageInfo заменяются атомарно; при ошибке
// остаются прежними, выставляется только lastError
func (s *PolicyStore) RefreshList(ctx context.Context) error {
	filters := s.beginOperation()

	page, err := s.gateway.List(ctx, filters)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false

	if err != nil {
		s.lastError = err.Error()
		s.logger.Error("Failed to fetch policies", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	s.items = page.Data
	s.pageInfo = page.Meta
	return nil
}

// LoadOne загружает один полис и делает его текущим
// При ошибке current остается прежним
func (s *PolicyStore) LoadOne(ctx context.Context, id int64) (*domain.Policy, error) {
	s.beginOperation()

	policy, err := s.gateway.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false

	if err != nil {
		s.lastError = err.Error()
		return nil, err
	}

	s.current = policy
	result := *policy
	return &result, nil
}

// Create валидирует форму, создает полис на сервере и добавляет его
// в начало списка (новые - первыми)
//
// Локально невалидная форма отклоняется до любого сетевого вызова и не
// трогает ни isLoading, ни items. Счетчики пагинации после успешного
// создания устаревают до следующего RefreshList - осознанный компромисс
func (s *PolicyStore) Create(ctx context.Context, form *domain.PolicyForm) (*domain.Policy, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	s.beginOperation()

	policy, err := s.gateway.Create(ctx, wire.FromForm(form))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false

	if err != nil {
		s.lastError = err.Error()
		s.logger.Error("Failed to create policy", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.items = append([]domain.Policy{*policy}, s.items...)

	s.logger.Info("Policy created", map[string]interface{}{
		"policy_id": policy.ID,
		"policy_no": policy.PolicyNo,
	})

	result := *policy
	return &result, nil
}

// Update валидирует и применяет частичное обновление полиса
// При успехе запись в items заменяется на той же позиции, и current
// (если открыт тот же полис) обновляется вместе с ней атомарно
func (s *PolicyStore) Update(ctx context.Context, id int64, patch *domain.PolicyPatch) (*domain.Policy, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.beginOperation()

	policy, err := s.gateway.Update(ctx, id, wire.FromPatch(patch))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false

	if err != nil {
		s.lastError = err.Error()
		s.logger.Error("Failed to update policy", map[string]interface{}{
			"policy_id": id,
			"error":     err.Error(),
		})
		return nil, err
	}

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = *policy
			break
		}
	}
	if s.current != nil && s.current.ID == id {
		updated := *policy
		s.current = &updated
	}

	result := *policy
	return &result, nil
}

// Delete удаляет полис на сервере и из обоих локальных представлений
// При ошибке items и current остаются нетронутыми
func (s *PolicyStore) Delete(ctx context.Context, id int64) error {
	s.beginOperation()

	err := s.gateway.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false

	if err != nil {
		s.lastError = err.Error()
		s.logger.Error("Failed to delete policy", map[string]interface{}{
			"policy_id": id,
			"error":     err.Error(),
		})
		return err
	}

	filtered := s.items[:0]
	for _, policy := range s.items {
		if policy.ID != id {
			filtered = append(filtered, policy)
		}
	}
	s.items = filtered

	if s.current != nil && s.current.ID == id {
		s.current = nil
	}

	return nil
}

// GenerateDocument запускает генерацию PDF и возвращает ссылку на скачивание
// Не трогает items/current и не переключает isLoading; ошибка
// записывается в lastError, но не блокирует последующие операции
func (s *PolicyStore) GenerateDocument(ctx context.Context, id int64) (string, error) {
	link, err := s.gateway.GenerateDocument(ctx, id)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		return "", err
	}
	return link.DownloadURL, nil
}

// SetFilters вливает частичное изменение в активные фильтры
// Перезагрузку списка вызывающий код выполняет сам; при смене
// search/status он же сбрасывает страницу на 1
func (s *PolicyStore) SetFilters(patch domain.ListFilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Search != nil {
		s.filters.Search = *patch.Search
	}
	if patch.Status != nil {
		s.filters.Status = *patch.Status
	}
	if patch.Page != nil {
		s.filters.Page = *patch.Page
	}
	if patch.PerPage != nil {
		s.filters.PerPage = *patch.PerPage
	}
}

// ClearError сбрасывает lastError
func (s *PolicyStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

// ClearCurrent сбрасывает текущий полис
func (s *PolicyStore) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Items возвращает копию текущей страницы полисов
func (s *PolicyStore) Items() []domain.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Policy, len(s.items))
	copy(items, s.items)
	return items
}

// Current возвращает копию текущего полиса (nil если не открыт)
func (s *PolicyStore) Current() *domain.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	current := *s.current
	return &current
}

// PageInfo возвращает метаданные пагинации
func (s *PolicyStore) PageInfo() domain.PageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageInfo
}

// Filters возвращает активные фильтры
func (s *PolicyStore) Filters() domain.ListFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// IsLoading сообщает, выполняется ли операция
func (s *PolicyStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// LastError возвращает сообщение последней ошибки ("" если ее нет)
func (s *PolicyStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// beginOperation выставляет флаг загрузки, сбрасывает ошибку и
// возвращает снимок фильтров для исходящего вызова
func (s *PolicyStore) beginOperation() domain.ListFilters {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isLoading = true
	s.lastError = ""
	return s.filters
}
