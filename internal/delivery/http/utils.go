package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/go-chi/chi/v5"
)

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondError отправляет JSON ответ с ошибкой
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{
		"message": message,
	})
}

// respondValidationError отправляет ответ 422 с ошибками по полям
func respondValidationError(w http.ResponseWriter, vErr *domain.ValidationError) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"message": vErr.Message,
		"errors":  vErr.Errors,
	})
}

// parseIDParam извлекает числовой параметр id из пути запроса
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
