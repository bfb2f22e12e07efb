// Package cached содержит реализации хранилищ на Redis
package cached

import (
	"context"
	"time"

	"github.com/frontandrew/insura/internal/pkg/jwt"
	"github.com/frontandrew/insura/internal/pkg/redis"
	"github.com/frontandrew/insura/internal/repository"
)

const blacklistPrefix = "blacklist:"

type tokenBlacklist struct {
	redis *redis.Client
}

// NewTokenBlacklist создает черный список токенов на Redis.
// Токен хранится хешированным, TTL записи совпадает с остатком
// срока действия токена
func NewTokenBlacklist(client *redis.Client) repository.TokenBlacklist {
	return &tokenBlacklist{redis: client}
}

func (b *tokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := blacklistPrefix + jwt.HashToken(token)
	return b.redis.Set(ctx, key, "1", ttl)
}

func (b *tokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	key := blacklistPrefix + jwt.HashToken(token)
	count, err := b.redis.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
