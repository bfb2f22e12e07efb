package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/frontandrew/insura/internal/delivery/http/middleware"
	"github.com/frontandrew/insura/internal/domain"
	"github.com/frontandrew/insura/internal/pkg/hash"
	"github.com/frontandrew/insura/internal/pkg/jwt"
	"github.com/frontandrew/insura/internal/pkg/logger"
	"github.com/frontandrew/insura/internal/repository"
)

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	users     repository.UserRepository
	blacklist repository.TokenBlacklist
	tokens    *jwt.TokenService
	logger    logger.Logger
}

// NewAuthHandler создает новый handler
func NewAuthHandler(users repository.UserRepository, blacklist repository.TokenBlacklist, tokens *jwt.TokenService, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		blacklist: blacklist,
		tokens:    tokens,
		logger:    log,
	}
}

// Register обрабатывает регистрацию нового пользователя
// POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		if vErr, ok := domain.AsValidationError(err); ok {
			respondValidationError(w, vErr)
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			respondValidationError(w, domain.NewValidationError(
				"The given data was invalid.",
				domain.FieldErrors{"email": {"The email has already been taken."}},
			))
			return
		}
		h.logger.Error("Failed to register user", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		h.logger.Error("Failed to generate token", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	h.logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	respondJSON(w, http.StatusCreated, domain.AuthResponse{Token: token, User: *user})
}

// Login обрабатывает вход пользователя
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		if vErr, ok := domain.AsValidationError(err); ok {
			respondValidationError(w, vErr)
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		h.logger.Error("Failed to look up user", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	// Неизвестный email и неверный пароль неразличимы в ответе
	if user == nil || !hash.CheckPassword(user.PasswordHash, req.Password) {
		respondValidationError(w, domain.NewValidationError(
			"The given data was invalid.",
			domain.FieldErrors{"email": {"These credentials do not match our records."}},
		))
		return
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		h.logger.Error("Failed to generate token", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	h.logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})

	respondJSON(w, http.StatusOK, domain.AuthResponse{Token: token, User: *user})
}

// CurrentUser возвращает пользователя текущей сессии
// GET /api/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		h.logger.Error("Failed to get user", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Logout отзывает токен текущей сессии
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	token, okToken := middleware.GetRawToken(r.Context())
	if !ok || !okToken {
		respondError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	// Токен попадает в черный список на остаток своего срока
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := h.blacklist.Add(r.Context(), token, ttl); err != nil {
		h.logger.Error("Failed to blacklist token", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	h.logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully logged out",
	})
}
