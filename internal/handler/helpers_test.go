package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/peseat/api/internal/auth"
	"github.com/peseat/api/internal/middleware"
)

const testJWTSecret = "test-secret-for-handlers"

// authedRouter returns a router that authenticates every request.
func authedRouter(mount func(r chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	mount(r)
	return r
}

func tokenFor(t *testing.T, id uuid.UUID, role auth.Role) string {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, id, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// doRequest sends body (nil for none) as JSON, with a bearer token when token != "".
func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// expectError asserts status and machine code of an error response.
func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, status, rr.Body.String())
	}
	var body errorBody
	decodeBody(t, rr, &body)
	if body.Code != code {
		t.Errorf("code: got %q, want %q", body.Code, code)
	}
	if body.Error == "" {
		t.Error("error message should not be empty")
	}
}
