package memory

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist хранит отозванные токены в памяти.
// Истекшие записи вычищаются лениво при проверке
type TokenBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewTokenBlacklist создает черный список токенов в памяти
func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{
		tokens: make(map[string]time.Time),
	}
}

// Add помещает токен в черный список на указанный срок
func (b *TokenBlacklist) Add(_ context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens[token] = time.Now().Add(ttl)
	return nil
}

// Contains проверяет, отозван ли токен
func (b *TokenBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.tokens[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(b.tokens, token)
		return false, nil
	}
	return true, nil
}
