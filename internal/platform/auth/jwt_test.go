package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret-key-for-jwt-signing")

func issueTestToken(t *testing.T, subject string, roles []string, expiry time.Duration) string {
	t.Helper()
	token, err := IssueToken(testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
		Roles: roles,
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func runProtected(token string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, UserIDFromContext(c.Request().Context()))
	}
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	e.GET("/protected", handler)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token := issueTestToken(t, "user-1", []string{"admin"}, time.Hour)
	rec := runProtected(token, JWTMiddleware(testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "user-1" {
		t.Errorf("subject = %q, want user-1", rec.Body.String())
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	rec := runProtected("", JWTMiddleware(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := issueTestToken(t, "user-1", []string{"admin"}, -time.Hour)
	rec := runProtected(token, JWTMiddleware(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	token := issueTestToken(t, "user-1", []string{"admin"}, time.Hour)
	rec := runProtected(token, JWTMiddleware([]byte("a-different-secret")))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		roles    []string
		required string
		want     int
	}{
		{"exact match", []string{"customer"}, "customer", http.StatusOK},
		{"admin passes any check", []string{"admin"}, "customer", http.StatusOK},
		{"missing role", []string{"customer"}, "auditor", http.StatusForbidden},
		{"no roles", nil, "customer", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := issueTestToken(t, "user-1", tc.roles, time.Hour)
			rec := runProtected(token, JWTMiddleware(testSecret), RequireRole(tc.required))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
