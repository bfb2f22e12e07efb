package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenBlacklist тестирует отзыв токенов и истечение срока
func TestTokenBlacklist(t *testing.T) {
	blacklist := NewTokenBlacklist()
	ctx := context.Background()

	revoked, err := blacklist.Contains(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.Add(ctx, "token-abc", time.Hour))

	revoked, err = blacklist.Contains(ctx, "token-abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	t.Run("истекшая запись перестает действовать", func(t *testing.T) {
		require.NoError(t, blacklist.Add(ctx, "short-lived", -time.Second))

		revoked, err := blacklist.Contains(ctx, "short-lived")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
