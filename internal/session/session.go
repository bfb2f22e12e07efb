// Package session хранит состояние аутентификации клиента: токен и
// снимок пользователя, переживающие перезапуск через Storage.
package session

import (
	"sync"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/frontandrew/insura/internal/pkg/logger"
)

// Snapshot - сохраняемое состояние сессии
type Snapshot struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

// Storage абстрагирует долговременное хранилище сессии
type Storage interface {
	// Load читает сохраненную сессию; (nil, nil) если сессии нет
	Load() (*Snapshot, error)

	// Save сохраняет сессию
	Save(snapshot *Snapshot) error

	// Clear удаляет сохраненную сессию
	Clear() error
}

// Session - текущая сессия пользователя
// Выступает поставщиком учетных данных для шлюза API
type Session struct {
	mu      sync.Mutex
	storage Storage
	logger  logger.Logger
	token   string
	user    *domain.User
}

// New создает сессию, восстанавливая сохраненное состояние.
// Поврежденное или отсутствующее хранилище дает пустую сессию
func New(storage Storage, log logger.Logger) *Session {
	s := &Session{
		storage: storage,
		logger:  log,
	}

	snapshot, err := storage.Load()
	if err != nil {
		log.Warn("Failed to load persisted session", map[string]interface{}{
			"error": err.Error(),
		})
		return s
	}
	if snapshot != nil {
		s.token = snapshot.Token
		s.user = snapshot.User
	}

	return s
}

// Token возвращает bearer-токен текущей сессии ("" если сессии нет)
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User возвращает снимок текущего пользователя (nil если сессии нет)
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// IsAuthenticated сообщает, есть ли у сессии токен
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Establish устанавливает новую сессию и сохраняет ее
func (s *Session) Establish(token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = user

	return s.storage.Save(&Snapshot{Token: token, User: user})
}

// SetUser обновляет снимок пользователя (после GET /user)
func (s *Session) SetUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user

	if s.token == "" {
		return nil
	}
	return s.storage.Save(&Snapshot{Token: s.token, User: s.user})
}

// Invalidate сбрасывает сессию: вызывается шлюзом при любом ответе 401
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" && s.user == nil {
		return
	}

	s.token = ""
	s.user = nil

	if err := s.storage.Clear(); err != nil {
		s.logger.Warn("Failed to clear persisted session", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
