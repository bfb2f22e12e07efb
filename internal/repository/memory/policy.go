// Package memory содержит реализации хранилищ в памяти: бэкенд по
// умолчанию для локальной разработки и тестов
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/google/uuid"
)

// PolicyRepository хранит полисы в памяти
type PolicyRepository struct {
	mu       sync.RWMutex
	policies map[int64]domain.Policy
	nextID   int64
}

// NewPolicyRepository создает хранилище полисов в памяти
func NewPolicyRepository() *PolicyRepository {
	return &PolicyRepository{
		policies: make(map[int64]domain.Policy),
		nextID:   1,
	}
}

// Create сохраняет новый полис, назначая ID, номер и метки времени
func (r *PolicyRepository) Create(_ context.Context, policy *domain.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)

	policy.ID = r.nextID
	r.nextID++

	if policy.PolicyNo == "" {
		policy.PolicyNo = generatePolicyNo()
	}
	policy.CreatedAt = now
	policy.UpdatedAt = now

	r.policies[policy.ID] = *policy
	return nil
}

// GetByID возвращает полис по ID
func (r *PolicyRepository) GetByID(_ context.Context, id int64) (*domain.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, ok := r.policies[id]
	if !ok {
		return nil, domain.ErrPolicyNotFound
	}
	return &policy, nil
}

// List возвращает страницу полисов по фильтрам, новые - первыми
func (r *PolicyRepository) List(_ context.Context, filters domain.ListFilters) ([]domain.Policy, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Policy, 0, len(r.policies))
	for _, policy := range r.policies {
		if matchesFilters(&policy, filters) {
			matched = append(matched, policy)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)

	page := filters.Page
	if page < 1 {
		page = 1
	}
	perPage := filters.PerPage
	if perPage < 1 {
		perPage = 15
	}

	start := (page - 1) * perPage
	if start >= total {
		return []domain.Policy{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

// Update заменяет сохраненный полис, обновляя метку времени
func (r *PolicyRepository) Update(_ context.Context, policy *domain.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.policies[policy.ID]
	if !ok {
		return domain.ErrPolicyNotFound
	}

	policy.PolicyNo = existing.PolicyNo
	policy.CreatedAt = existing.CreatedAt
	policy.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	r.policies[policy.ID] = *policy
	return nil
}

// Delete удаляет полис
func (r *PolicyRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.policies[id]; !ok {
		return domain.ErrPolicyNotFound
	}
	delete(r.policies, id)
	return nil
}

// matchesFilters проверяет полис против поискового запроса и статуса.
// Поиск - по подстроке номера полиса или имени страхователя без
// учета регистра
func matchesFilters(policy *domain.Policy, filters domain.ListFilters) bool {
	if filters.Status != "" && string(policy.PolicyStatus) != filters.Status {
		return false
	}

	if filters.Search != "" {
		search := strings.ToLower(filters.Search)
		if !strings.Contains(strings.ToLower(policy.PolicyNo), search) &&
			!strings.Contains(strings.ToLower(policy.PolicyHolderName), search) {
			return false
		}
	}

	return true
}

// generatePolicyNo выдает номер полиса вида POL-2026-1A2B3C
func generatePolicyNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return "POL-" + time.Now().UTC().Format("2006") + "-" + suffix
}
