package http

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPolicy создает полис и возвращает его data-объект
func createPolicy(ts *testServer, token string, body map[string]interface{}) map[string]interface{} {
	ts.t.Helper()

	status, resp := ts.request(http.MethodPost, "/api/policies", token, body)
	require.Equal(ts.t, http.StatusCreated, status)

	data, ok := resp["data"].(map[string]interface{})
	require.True(ts.t, ok)
	return data
}

// TestPolicies_Create тестирует создание полиса
func TestPolicies_Create(t *testing.T) {
	t.Run("сервер назначает id, номер и имя страхователя", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.registerUser("john@example.com")

		data := createPolicy(ts, token, validPolicyBody("John", "Smith", "Active"))

		assert.Equal(t, float64(1), data["id"])
		assert.Regexp(t, `^POL-\d{4}-[0-9A-F]{6}$`, data["policyNo"])
		assert.Equal(t, "John Smith", data["policyHolderName"])
		assert.NotEmpty(t, data["createdAt"])
	})

	t.Run("невалидное тело отклоняется с путями ошибок", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.registerUser("john@example.com")

		body := validPolicyBody("John", "Smith", "Active")
		body["drivers"] = []map[string]interface{}{}

		status, resp := ts.request(http.MethodPost, "/api/policies", token, body)

		require.Equal(t, http.StatusUnprocessableEntity, status)
		errs, ok := resp["errors"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, errs, "drivers")
	})

	t.Run("без токена приходит 401", func(t *testing.T) {
		ts := newTestServer(t)

		status, _ := ts.request(http.MethodPost, "/api/policies", "", validPolicyBody("John", "Smith", "Active"))
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

// TestPolicies_Get тестирует чтение полиса
func TestPolicies_Get(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser("john@example.com")
	created := createPolicy(ts, token, validPolicyBody("John", "Smith", "Active"))

	t.Run("полис возвращается в camelCase", func(t *testing.T) {
		status, resp := ts.request(http.MethodGet, fmt.Sprintf("/api/policies/%v", created["id"]), token, nil)

		require.Equal(t, http.StatusOK, status)
		data, ok := resp["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Active", data["policyStatus"])
		assert.NotContains(t, data, "policy_status")

		vehicles, ok := data["vehicles"].([]interface{})
		require.True(t, ok)
		require.Len(t, vehicles, 1)
		vehicle := vehicles[0].(map[string]interface{})
		assert.Equal(t, "1HGBH41JXMN109186", vehicle["vin"])
	})

	t.Run("отсутствующий полис дает 404", func(t *testing.T) {
		status, resp := ts.request(http.MethodGet, "/api/policies/999", token, nil)

		require.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Policy not found", resp["message"])
	})
}

// TestPolicies_Update тестирует частичное обновление
func TestPolicies_Update(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser("john@example.com")
	created := createPolicy(ts, token, validPolicyBody("John", "Smith", "Active"))
	id := fmt.Sprintf("%v", created["id"])

	t.Run("меняются только переданные поля", func(t *testing.T) {
		status, resp := ts.request(http.MethodPut, "/api/policies/"+id, token, map[string]interface{}{
			"policy_status": "Cancelled",
		})

		require.Equal(t, http.StatusOK, status)
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "Cancelled", data["policyStatus"])
		assert.Equal(t, "Auto", data["policyType"], "untouched fields must keep their values")
		assert.Equal(t, created["policyNo"], data["policyNo"])

		drivers, ok := data["drivers"].([]interface{})
		require.True(t, ok)
		assert.Len(t, drivers, 1)
	})

	t.Run("недопустимый статус отклоняется", func(t *testing.T) {
		status, resp := ts.request(http.MethodPut, "/api/policies/"+id, token, map[string]interface{}{
			"policy_status": "Bogus",
		})

		require.Equal(t, http.StatusUnprocessableEntity, status)
		errs := resp["errors"].(map[string]interface{})
		assert.Contains(t, errs, "policyStatus")
	})

	t.Run("обновление страхователя пересчитывает имя", func(t *testing.T) {
		status, resp := ts.request(http.MethodPut, "/api/policies/"+id, token, map[string]interface{}{
			"policy_holder": map[string]interface{}{
				"firstName": "Jane",
				"lastName":  "Doe",
				"address": map[string]interface{}{
					"street": "9 Oak Ave", "city": "Chicago", "state": "IL", "zip": "60601",
				},
			},
		})

		require.Equal(t, http.StatusOK, status)
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "Jane Doe", data["policyHolderName"])
	})
}

// TestPolicies_Delete тестирует удаление
func TestPolicies_Delete(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser("john@example.com")
	created := createPolicy(ts, token, validPolicyBody("John", "Smith", "Active"))
	id := fmt.Sprintf("%v", created["id"])

	status, _ := ts.request(http.MethodDelete, "/api/policies/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	// Повторное удаление сообщает об отсутствии
	status, resp := ts.request(http.MethodDelete, "/api/policies/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Policy not found", resp["message"])
}

// TestPolicies_List тестирует список с фильтрами и пагинацией
func TestPolicies_List(t *testing.T) {
	t.Run("фильтр по статусу со второй страницей", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.registerUser("john@example.com")

		for i := 0; i < 18; i++ {
			createPolicy(ts, token, validPolicyBody("Holder", fmt.Sprintf("Num%02d", i), "Active"))
		}
		for i := 0; i < 2; i++ {
			createPolicy(ts, token, validPolicyBody("Other", fmt.Sprintf("Num%02d", i), "Cancelled"))
		}

		status, resp := ts.request(http.MethodGet, "/api/policies/?status=Active&page=2&per_page=15", token, nil)

		require.Equal(t, http.StatusOK, status)
		data := resp["data"].([]interface{})
		assert.Len(t, data, 3)

		meta := resp["meta"].(map[string]interface{})
		assert.Equal(t, float64(18), meta["total"])
		assert.Equal(t, float64(2), meta["current_page"])
		assert.Equal(t, float64(2), meta["last_page"])
		assert.Equal(t, float64(16), meta["from"])
		assert.Equal(t, float64(18), meta["to"])
	})

	t.Run("поиск по имени страхователя", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.registerUser("john@example.com")
		createPolicy(ts, token, validPolicyBody("John", "Smith", "Active"))
		createPolicy(ts, token, validPolicyBody("Jane", "Doe", "Active"))

		status, resp := ts.request(http.MethodGet, "/api/policies/?search=doe", token, nil)

		require.Equal(t, http.StatusOK, status)
		data := resp["data"].([]interface{})
		require.Len(t, data, 1)
		policy := data[0].(map[string]interface{})
		assert.Equal(t, "Jane Doe", policy["policyHolderName"])
	})

	t.Run("пустой результат дает нулевой диапазон", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.registerUser("john@example.com")

		status, resp := ts.request(http.MethodGet, "/api/policies/", token, nil)

		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, resp["data"])

		meta := resp["meta"].(map[string]interface{})
		assert.Equal(t, float64(0), meta["total"])
		assert.Equal(t, float64(0), meta["from"])
		assert.Equal(t, float64(0), meta["to"])
		assert.Equal(t, float64(1), meta["last_page"])
	})
}

// TestPolicies_GeneratePDF тестирует одноразовую ссылку на документ
func TestPolicies_GeneratePDF(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser("john@example.com")
	created := createPolicy(ts, token, validPolicyBody("John", "Smith", "Active"))
	id := fmt.Sprintf("%v", created["id"])

	status, resp := ts.request(http.MethodPost, "/api/policies/"+id+"/pdf", token, nil)
	require.Equal(t, http.StatusOK, status)

	downloadURL, ok := resp["download_url"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(downloadURL, ts.server.URL+"/api/documents/"))

	// Ссылка публичная и работает ровно один раз
	httpResp, err := ts.client.Get(downloadURL)
	require.NoError(t, err)
	defer func() { _ = httpResp.Body.Close() }()
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)
	assert.Equal(t, "application/pdf", httpResp.Header.Get("Content-Type"))

	second, err := ts.client.Get(downloadURL)
	require.NoError(t, err)
	defer func() { _ = second.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, second.StatusCode)
}
