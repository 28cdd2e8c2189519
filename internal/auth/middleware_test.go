package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func protected(t *testing.T, m *JWTManager) (http.Handler, *string) {
	t.Helper()
	var gotUserID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Middleware(m)(inner), &gotUserID
}

func TestMiddlewareMissingHeader(t *testing.T) {
	h, _ := protected(t, NewJWTManager("secret"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareBadFormat(t *testing.T) {
	h, _ := protected(t, NewJWTManager("secret"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareValidToken(t *testing.T) {
	m := NewJWTManager("secret")
	h, gotUserID := protected(t, m)

	token, err := m.GenerateAccessToken("user-42")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *gotUserID != "user-42" {
		t.Errorf("user ID in context = %q, want user-42", *gotUserID)
	}
}

func TestMiddlewareRejectsGuestTokens(t *testing.T) {
	m := NewJWTManager("secret")
	h, _ := protected(t, m)

	guest, err := m.GenerateGuestToken()
	if err != nil {
		t.Fatalf("generate guest: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+guest)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for guest token, got %d", rec.Code)
	}
}
