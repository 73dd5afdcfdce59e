package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	testSecret   = "unit-test-secret"
	testIssuer   = "marketgate"
	testAudience = "marketnet"
)

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator(testSecret, testIssuer, testAudience, 30*time.Second, nil)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["iss"]; !ok {
		claims["iss"] = testIssuer
	}
	if _, ok := claims["aud"]; !ok {
		claims["aud"] = testAudience
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func serveWithAuth(auth *Authenticator, token string, scopes ...string) *httptest.ResponseRecorder {
	handler := auth.Middleware(scopes...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/v1/purchases", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	auth := newTestAuthenticator()
	token := signToken(t, jwt.MapClaims{"sub": "svc-checkout", "scope": "trade read"})

	if rec := serveWithAuth(auth, token, "trade"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	// Multiple required scopes must all be present.
	if rec := serveWithAuth(auth, token, "trade", "read"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	auth := newTestAuthenticator()
	if rec := serveWithAuth(auth, "", "trade"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareRejectsInsufficientScope(t *testing.T) {
	auth := newTestAuthenticator()
	token := signToken(t, jwt.MapClaims{"sub": "svc-reader", "scope": "read"})
	if rec := serveWithAuth(auth, token, "market:write"); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestMiddlewareRejectsWrongSignature(t *testing.T) {
	auth := newTestAuthenticator()
	claims := jwt.MapClaims{
		"sub":   "svc-checkout",
		"scope": "trade",
		"iss":   testIssuer,
		"aud":   testAudience,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if rec := serveWithAuth(auth, signed, "trade"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	auth := newTestAuthenticator()
	token := signToken(t, jwt.MapClaims{
		"sub":   "svc-checkout",
		"scope": "trade",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})
	if rec := serveWithAuth(auth, token, "trade"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareRejectsWrongIssuerOrAudience(t *testing.T) {
	auth := newTestAuthenticator()
	token := signToken(t, jwt.MapClaims{"sub": "x", "scope": "trade", "iss": "someone-else"})
	if rec := serveWithAuth(auth, token, "trade"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong issuer status = %d, want 401", rec.Code)
	}
	token = signToken(t, jwt.MapClaims{"sub": "x", "scope": "trade", "aud": "other-audience"})
	if rec := serveWithAuth(auth, token, "trade"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong audience status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareWithoutSecret(t *testing.T) {
	auth := NewAuthenticator("", testIssuer, testAudience, 0, nil)
	token := signToken(t, jwt.MapClaims{"sub": "x", "scope": "trade"})
	if rec := serveWithAuth(auth, token, "trade"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestExtractScopes(t *testing.T) {
	if got := extractScopes(jwt.MapClaims{"scope": "trade read"}); len(got) != 2 {
		t.Fatalf("space-separated scopes = %v, want 2", got)
	}
	if got := extractScopes(jwt.MapClaims{"scope": []interface{}{"trade", "read"}}); len(got) != 2 {
		t.Fatalf("array scopes = %v, want 2", got)
	}
	if got := extractScopes(jwt.MapClaims{}); got != nil {
		t.Fatalf("missing claim scopes = %v, want nil", got)
	}
}
