package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/frontandrew/insura/internal/pkg/jwt"
	"github.com/frontandrew/insura/internal/pkg/logger"
	"github.com/frontandrew/insura/internal/repository"
)

// contextKey - тип для ключей контекста
type contextKey string

const (
	// UserClaimsKey - ключ для сохранения claims пользователя в контексте
	UserClaimsKey contextKey = "user_claims"

	// RawTokenKey - ключ для исходного токена (нужен для отзыва при logout)
	RawTokenKey contextKey = "raw_token"
)

// AuthMiddleware проверяет наличие и валидность JWT токена.
// Отозванные через черный список токены отклоняются как невалидные.
// Любой отказ отвечает единообразным телом 401
func AuthMiddleware(tokenService *jwt.TokenService, blacklist repository.TokenBlacklist, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthenticated(w)
				return
			}

			// Проверяем формат: "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondUnauthenticated(w)
				return
			}

			tokenString := parts[1]

			// Валидируем токен
			claims, err := tokenService.ValidateToken(tokenString)
			if err != nil {
				respondUnauthenticated(w)
				return
			}

			// Проверяем черный список
			revoked, err := blacklist.Contains(r.Context(), tokenString)
			if err != nil {
				log.Error("Failed to check token blacklist", map[string]interface{}{
					"error": err.Error(),
				})
				respondUnauthenticated(w)
				return
			}
			if revoked {
				respondUnauthenticated(w)
				return
			}

			// Добавляем claims и исходный токен в контекст
			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			ctx = context.WithValue(ctx, RawTokenKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserClaims извлекает claims пользователя из контекста
func GetUserClaims(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*jwt.Claims)
	return claims, ok
}

// GetRawToken извлекает исходный токен запроса из контекста
func GetRawToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(RawTokenKey).(string)
	return token, ok
}

// respondUnauthenticated отправляет единообразный ответ 401
func respondUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
}
