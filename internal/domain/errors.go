package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Доменные ошибки - используются во всех слоях приложения

// Policy errors
var (
	ErrPolicyNotFound    = errors.New("policy not found")
	ErrInvalidPolicyData = errors.New("invalid policy data")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// General errors
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal server error")
)

// FieldErrors - сообщения о нарушениях, сгруппированные по пути поля
// Путь использует точечную нотацию с индексами массивов,
// например "vehicles[0].coverages[1].limit"
type FieldErrors map[string][]string

// Add добавляет сообщение к указанному пути поля
func (fe FieldErrors) Add(path, message string) {
	fe[path] = append(fe[path], message)
}

// Merge добавляет все сообщения из other с опциональным префиксом пути
func (fe FieldErrors) Merge(prefix string, other FieldErrors) {
	for path, messages := range other {
		key := path
		if prefix != "" {
			key = prefix + "." + path
		}
		fe[key] = append(fe[key], messages...)
	}
}

// ValidationError - ошибка валидации с сообщениями по полям
// Возвращается как локальной схемой валидации, так и при ответе 422
// от сервера: вызывающий код не различает источник отклонения
type ValidationError struct {
	Message string
	Errors  FieldErrors
}

// Error реализует интерфейс error
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}

	paths := make([]string, 0, len(e.Errors))
	for path := range e.Errors {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var parts []string
	for _, path := range paths {
		parts = append(parts, fmt.Sprintf("%s: %s", path, strings.Join(e.Errors[path], ", ")))
	}

	msg := e.Message
	if msg == "" {
		msg = "validation failed"
	}
	return msg + ": " + strings.Join(parts, "; ")
}

// NewValidationError создает ошибку валидации
func NewValidationError(message string, errors FieldErrors) *ValidationError {
	if errors == nil {
		errors = FieldErrors{}
	}
	return &ValidationError{Message: message, Errors: errors}
}

// AsValidationError возвращает *ValidationError, если err им является
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
