package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontandrew/insura/internal/pkg/config"
	"github.com/frontandrew/insura/internal/pkg/jwt"
	"github.com/frontandrew/insura/internal/pkg/logger"
	"github.com/frontandrew/insura/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

// testServer - поднятый на httptest сервер с хранилищами в памяти
type testServer struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

// newTestServer собирает сервер с хранилищами в памяти
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.NewNoop()
	cfg := &config.Config{}
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.CORS.AllowedHeaders = []string{"Accept", "Authorization", "Content-Type"}

	tokenService := jwt.NewTokenService("test-secret", time.Hour)
	users := memory.NewUserRepository()
	policies := memory.NewPolicyRepository()
	blacklist := memory.NewTokenBlacklist()
	vault := NewDocumentVault()

	server := httptest.NewServer(nil)
	t.Cleanup(server.Close)

	authHandler := NewAuthHandler(users, blacklist, tokenService, log)
	policyHandler := NewPolicyHandler(policies, vault, server.URL, log)
	router := NewRouter(authHandler, policyHandler, tokenService, blacklist, cfg, log)
	server.Config.Handler = router.Setup()

	return &testServer{
		t:      t,
		server: server,
		client: server.Client(),
	}
}

// request выполняет запрос и возвращает статус с разобранным JSON телом
func (ts *testServer) request(method, path, token string, body interface{}) (int, map[string]interface{}) {
	ts.t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reqBody)
	require.NoError(ts.t, err)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.client.Do(req)
	require.NoError(ts.t, err)
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)

	var parsed map[string]interface{}
	if len(respBody) > 0 {
		require.NoError(ts.t, json.Unmarshal(respBody, &parsed), "body: %s", respBody)
	}
	return resp.StatusCode, parsed
}

// registerUser регистрирует пользователя и возвращает его токен
func (ts *testServer) registerUser(email string) string {
	ts.t.Helper()

	status, body := ts.request(http.MethodPost, "/api/register", "", map[string]string{
		"name":                  "Test User",
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(ts.t, http.StatusCreated, status)

	token, _ := body["token"].(string)
	require.NotEmpty(ts.t, token)
	return token
}

// validPolicyBody возвращает тело создания полиса в формате API
func validPolicyBody(holderFirst, holderLast string, status string) map[string]interface{} {
	address := map[string]interface{}{
		"street": "123 Main St",
		"city":   "Springfield",
		"state":  "IL",
		"zip":    "62704",
	}
	return map[string]interface{}{
		"policy_status":          status,
		"policy_type":            "Auto",
		"policy_effective_date":  "2026-01-01",
		"policy_expiration_date": "2027-01-01",
		"policy_holder": map[string]interface{}{
			"firstName": holderFirst,
			"lastName":  holderLast,
			"address":   address,
		},
		"drivers": []map[string]interface{}{{
			"firstName":             holderFirst,
			"lastName":              holderLast,
			"age":                   35,
			"gender":                "Male",
			"maritalStatus":         "Married",
			"licenseNumber":         "D1234567",
			"licenseState":          "IL",
			"licenseStatus":         "Valid",
			"licenseEffectiveDate":  "2020-05-01",
			"licenseExpirationDate": "2028-05-01",
			"licenseClass":          "C",
		}},
		"vehicles": []map[string]interface{}{{
			"year":            2022,
			"make":            "Toyota",
			"model":           "Camry",
			"vin":             "1HGBH41JXMN109186",
			"usage":           "Commuting",
			"primaryUse":      "Commute to work",
			"annualMileage":   12000,
			"ownership":       "Owned",
			"garagingAddress": address,
			"coverages": []map[string]interface{}{{
				"type":       "Liability",
				"limit":      100000,
				"deductible": 500,
			}},
		}},
	}
}
