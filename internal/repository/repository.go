// Package repository определяет контракты хранения справочного сервера
package repository

import (
	"context"
	"time"

	"github.com/frontandrew/insura/internal/domain"
)

// PolicyRepository определяет методы работы с хранилищем полисов
type PolicyRepository interface {
	// Create сохраняет новый полис, назначая ему ID, номер и метки времени
	Create(ctx context.Context, policy *domain.Policy) error

	// GetByID возвращает полис по ID
	GetByID(ctx context.Context, id int64) (*domain.Policy, error)

	// List возвращает страницу полисов по фильтрам и общее число совпадений
	List(ctx context.Context, filters domain.ListFilters) ([]domain.Policy, int, error)

	// Update заменяет сохраненный полис
	Update(ctx context.Context, policy *domain.Policy) error

	// Delete удаляет полис
	Delete(ctx context.Context, id int64) error
}

// UserRepository определяет методы работы с пользователями
type UserRepository interface {
	// Create сохраняет нового пользователя, назначая ему ID
	Create(ctx context.Context, user *domain.User) error

	// GetByID возвращает пользователя по ID
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail возвращает пользователя по email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenBlacklist хранит отозванные токены до истечения их срока
type TokenBlacklist interface {
	// Add помещает токен в черный список на указанный срок
	Add(ctx context.Context, token string, ttl time.Duration) error

	// Contains проверяет, отозван ли токен
	Contains(ctx context.Context, token string) (bool, error)
}
