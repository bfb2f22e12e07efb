package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/frontandrew/insura/internal/domain"
)

// UserRepository хранит пользователей в памяти
type UserRepository struct {
	mu      sync.RWMutex
	users   map[int64]domain.User
	byEmail map[string]int64
	nextID  int64
}

// NewUserRepository создает хранилище пользователей в памяти
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[int64]domain.User),
		byEmail: make(map[string]int64),
		nextID:  1,
	}
}

// Create сохраняет нового пользователя, назначая ему ID
// Email уникален без учета регистра
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return domain.ErrUserAlreadyExists
	}

	user.ID = r.nextID
	r.nextID++

	r.users[user.ID] = *user
	r.byEmail[email] = user.ID
	return nil
}

// GetByID возвращает пользователя по ID
func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := r.users[id]
	return &user, nil
}
