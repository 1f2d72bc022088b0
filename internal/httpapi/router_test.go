package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenantd/internal/auth"
	"github.com/wolfeidau/tenantd/internal/store/memory"
	"github.com/wolfeidau/tenantd/internal/usecase"
)

const testSigningSecret = "router-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	_, uow := memory.NewStores()
	svc, err := usecase.New(uow, usecase.Config{})
	require.NoError(t, err)

	authn, err := auth.NewJWTAuthenticator(testSigningSecret)
	require.NoError(t, err)

	return NewRouter(&RouterDeps{
		Service:       svc,
		Authenticator: authn,
		CORSOrigins:   []string{"http://localhost:3000"},
		Logger:        zerolog.Nop(),
	})
}

func bearerFor(t *testing.T, subject string) string {
	t.Helper()
	token, err := auth.IssueToken(testSigningSecret, subject, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

// do issues a JSON request against the router and decodes the response body.
func do(t *testing.T, h http.Handler, method, path, subject string, body map[string]any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("Authorization", bearerFor(t, subject))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec, body := do(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", body["status"])
}

func TestCreateUserEndpoint(t *testing.T) {
	h := newTestRouter(t)

	t.Run("registers the caller", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/v1/users", "auth0|alice", map[string]any{"username": "alice"})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "alice", body["username"])
		require.NotEmpty(t, body["id"])
	})

	t.Run("anonymous caller is refused", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/v1/users", "", map[string]any{"username": "ghost"})
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "forbidden", body["code"])
		require.NotEmpty(t, body["requestId"])
	})

	t.Run("validation failures carry field details", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/v1/users", "auth0|bob", map[string]any{"username": "ab"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "validation_failed", body["code"])
		details, ok := body["details"].([]any)
		require.True(t, ok)
		require.NotEmpty(t, details)
		first, ok := details[0].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "username", first["field"])
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/v1/users", "auth0|alice", map[string]any{"username": "alice2"})
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "conflict", body["code"])
	})

	t.Run("malformed body is a validation error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("{nope"))
		req.Header.Set("Authorization", bearerFor(t, "auth0|carol"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRequestIDPropagation(t *testing.T) {
	h := newTestRouter(t)

	t.Run("inbound id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-Id", "req-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	})

	t.Run("generated when absent", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodGet, "/health", "", nil)
		require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("error bodies carry the id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("{}"))
		req.Header.Set("X-Request-Id", "req-456")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		body := map[string]any{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "req-456", body["requestId"])
	})
}

func TestOrganizationEndpoints(t *testing.T) {
	h := newTestRouter(t)

	_, _ = do(t, h, http.MethodPost, "/v1/users", "auth0|alice", map[string]any{"username": "alice"})
	_, bobBody := do(t, h, http.MethodPost, "/v1/users", "auth0|bob", map[string]any{"username": "bob"})
	bobID := bobBody["id"].(string)

	rec, orgBody := do(t, h, http.MethodPost, "/v1/organizations", "auth0|alice", map[string]any{"name": "acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	orgID := orgBody["id"].(string)

	t.Run("owner reads the organization", func(t *testing.T) {
		rec, body := do(t, h, http.MethodGet, "/v1/organizations/"+orgID, "auth0|alice", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "acme", body["name"])
	})

	t.Run("non-member is refused", func(t *testing.T) {
		rec, body := do(t, h, http.MethodGet, "/v1/organizations/"+orgID, "auth0|bob", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "forbidden", body["code"])
	})

	t.Run("invite accept and list members", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodPost, "/v1/organizations/"+orgID+"/members", "auth0|alice", map[string]any{
			"userId": bobID,
			"role":   "member",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, _ = do(t, h, http.MethodPost, "/v1/organizations/"+orgID+"/invitations/accept", "auth0|bob", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, body := do(t, h, http.MethodGet, "/v1/organizations/"+orgID+"/members?page=1&page_size=10", "auth0|bob", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.EqualValues(t, 2, body["total"])
		items := body["items"].([]any)
		require.Len(t, items, 2)
	})

	t.Run("member role changed through the path param", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPatch, "/v1/organizations/"+orgID+"/members/"+bobID, "auth0|alice", map[string]any{
			"role": "admin",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "admin", body["role"])
	})

	t.Run("bad query parameter", func(t *testing.T) {
		rec, body := do(t, h, http.MethodGet, "/v1/organizations/"+orgID+"/members?page=two", "auth0|alice", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "validation_failed", body["code"])
	})

	t.Run("unknown organization", func(t *testing.T) {
		missing := "0198f3a0-0000-7000-8000-000000000000"
		rec, body := do(t, h, http.MethodGet, "/v1/organizations/"+missing, "auth0|alice", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "not_found", body["code"])
	})

	t.Run("member removed via delete", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodDelete, fmt.Sprintf("/v1/organizations/%s/members/%s", orgID, bobID), "auth0|alice", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
