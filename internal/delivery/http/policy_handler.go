package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/frontandrew/insura/internal/pkg/logger"
	"github.com/frontandrew/insura/internal/repository"
	"github.com/frontandrew/insura/internal/wire"
	"github.com/go-chi/chi/v5"
)

// PolicyHandler обрабатывает запросы к полисам
type PolicyHandler struct {
	policies  repository.PolicyRepository
	documents *DocumentVault
	logger    logger.Logger
	publicURL string
}

// NewPolicyHandler создает новый handler
func NewPolicyHandler(policies repository.PolicyRepository, documents *DocumentVault, publicURL string, log logger.Logger) *PolicyHandler {
	return &PolicyHandler{
		policies:  policies,
		documents: documents,
		logger:    log,
		publicURL: publicURL,
	}
}

// List возвращает страницу полисов
// GET /api/policies?search=&status=&page=&per_page=
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := domain.ListFilters{
		Search:  r.URL.Query().Get("search"),
		Status:  r.URL.Query().Get("status"),
		Page:    1,
		PerPage: 15,
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		filters.Page = page
	}
	if perPage, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && perPage > 0 {
		filters.PerPage = perPage
	}

	items, total, err := h.policies.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list policies", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	respondJSON(w, http.StatusOK, domain.PolicyPage{
		Data: items,
		Meta: buildPageInfo(filters, total, len(items)),
	})
}

// Get возвращает полис по ID
// GET /api/policies/{id}
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Policy not found")
		return
	}

	policy, err := h.policies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			respondError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("Failed to get policy", map[string]interface{}{
			"policy_id": id,
			"error":     err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": policy})
}

// Create создает новый полис
// POST /api/policies
func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var record wire.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	form := formFromRecord(&record)
	if err := form.Validate(); err != nil {
		if vErr, ok := domain.AsValidationError(err); ok {
			respondValidationError(w, vErr)
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	policy := &domain.Policy{
		PolicyStatus:         form.PolicyStatus,
		PolicyType:           form.PolicyType,
		PolicyEffectiveDate:  form.PolicyEffectiveDate,
		PolicyExpirationDate: form.PolicyExpirationDate,
		PolicyHolder:         form.PolicyHolder,
		Drivers:              form.Drivers,
		Vehicles:             form.Vehicles,
		PolicyHolderName:     form.PolicyHolder.FullName(),
	}

	if err := h.policies.Create(r.Context(), policy); err != nil {
		h.logger.Error("Failed to create policy", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	h.logger.Info("Policy created", map[string]interface{}{
		"policy_id": policy.ID,
		"policy_no": policy.PolicyNo,
	})

	respondJSON(w, http.StatusCreated, map[string]interface{}{"data": policy})
}

// Update частично обновляет полис: меняются только переданные поля
// PUT /api/policies/{id}
func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Policy not found")
		return
	}

	var record wire.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	policy, err := h.policies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			respondError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("Failed to get policy", map[string]interface{}{
			"policy_id": id,
			"error":     err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	applyRecord(policy, &record)

	if err := policy.Validate(); err != nil {
		if vErr, ok := domain.AsValidationError(err); ok {
			respondValidationError(w, vErr)
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	policy.PolicyHolderName = policy.PolicyHolder.FullName()

	if err := h.policies.Update(r.Context(), policy); err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			respondError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("Failed to update policy", map[string]interface{}{
			"policy_id": id,
			"error":     err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": policy})
}

// Delete удаляет полис
// DELETE /api/policies/{id}
func (h *PolicyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Policy not found")
		return
	}

	if err := h.policies.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			respondError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("Failed to delete policy", map[string]interface{}{
			"policy_id": id,
			"error":     err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	h.logger.Info("Policy deleted", map[string]interface{}{
		"policy_id": id,
	})

	w.WriteHeader(http.StatusNoContent)
}

// GeneratePDF выпускает одноразовую ссылку на PDF документ полиса
// POST /api/policies/{id}/pdf
func (h *PolicyHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Policy not found")
		return
	}

	policy, err := h.policies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			respondError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("Failed to get policy", map[string]interface{}{
			"policy_id": id,
			"error":     err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	token := h.documents.Issue(policy.ID)

	h.logger.Info("Policy document issued", map[string]interface{}{
		"policy_id": policy.ID,
		"policy_no": policy.PolicyNo,
	})

	respondJSON(w, http.StatusOK, domain.DocumentLink{
		DownloadURL: h.publicURL + "/api/documents/" + token,
		Message:     "Document generated successfully",
	})
}

// DownloadDocument отдает PDF по одноразовому токену
// GET /api/documents/{token} (публичный)
func (h *PolicyHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	policyID, ok := h.documents.Redeem(token)
	if !ok {
		respondError(w, http.StatusNotFound, "Document not found")
		return
	}

	policy, err := h.policies.GetByID(r.Context(), policyID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Document not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="policy_`+policy.PolicyNo+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderPolicyPDF(policy))
}

// buildPageInfo собирает метаданные пагинации
// При пустой странице from и to равны нулю
func buildPageInfo(filters domain.ListFilters, total, count int) domain.PageInfo {
	lastPage := (total + filters.PerPage - 1) / filters.PerPage
	if lastPage < 1 {
		lastPage = 1
	}

	info := domain.PageInfo{
		CurrentPage: filters.Page,
		LastPage:    lastPage,
		PerPage:     filters.PerPage,
		Total:       total,
	}
	if count > 0 {
		info.From = (filters.Page-1)*filters.PerPage + 1
		info.To = info.From + count - 1
	}
	return info
}

// formFromRecord собирает форму полиса из записи формата API
func formFromRecord(record *wire.Record) *domain.PolicyForm {
	form := &domain.PolicyForm{
		Drivers:  record.Drivers,
		Vehicles: record.Vehicles,
	}
	if record.PolicyStatus != nil {
		form.PolicyStatus = *record.PolicyStatus
	}
	if record.PolicyType != nil {
		form.PolicyType = *record.PolicyType
	}
	if record.PolicyEffectiveDate != nil {
		form.PolicyEffectiveDate = *record.PolicyEffectiveDate
	}
	if record.PolicyExpirationDate != nil {
		form.PolicyExpirationDate = *record.PolicyExpirationDate
	}
	if record.PolicyHolder != nil {
		form.PolicyHolder = *record.PolicyHolder
	}
	return form
}

// applyRecord накладывает присутствующие поля записи на полис
func applyRecord(policy *domain.Policy, record *wire.Record) {
	if record.PolicyStatus != nil {
		policy.PolicyStatus = *record.PolicyStatus
	}
	if record.PolicyType != nil {
		policy.PolicyType = *record.PolicyType
	}
	if record.PolicyEffectiveDate != nil {
		policy.PolicyEffectiveDate = *record.PolicyEffectiveDate
	}
	if record.PolicyExpirationDate != nil {
		policy.PolicyExpirationDate = *record.PolicyExpirationDate
	}
	if record.PolicyHolder != nil {
		policy.PolicyHolder = *record.PolicyHolder
	}
	if len(record.Drivers) > 0 {
		policy.Drivers = record.Drivers
	}
	if len(record.Vehicles) > 0 {
		policy.Vehicles = record.Vehicles
	}
}
