package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type stubKeyLookup struct {
	hashes map[string]uuid.UUID
}

func (s *stubKeyLookup) FindActiveByAPIKeyHash(_ context.Context, keyHash string) (uuid.UUID, error) {
	if id, ok := s.hashes[keyHash]; ok {
		return id, nil
	}
	return uuid.Nil, errors.New("not found")
}

func runAPIKeyRequest(t *testing.T, lookup PartnerKeyLookup, key string) (*httptest.ResponseRecorder, uuid.UUID) {
	t.Helper()
	e := echo.New()
	var gotID uuid.UUID
	handler := APIKeyMiddleware(lookup)(func(c echo.Context) error {
		gotID = PartnerIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	e.GET("/partner", handler)

	req := httptest.NewRequest(http.MethodGet, "/partner", nil)
	if key != "" {
		req.Header.Set(APIKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, gotID
}

func TestAPIKeyMiddleware_ValidKey(t *testing.T) {
	partnerID := uuid.New()
	lookup := &stubKeyLookup{hashes: map[string]uuid.UUID{
		HashAPIKey("sk_live_abc123"): partnerID,
	}}

	rec, gotID := runAPIKeyRequest(t, lookup, "sk_live_abc123")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotID != partnerID {
		t.Errorf("partner ID = %s, want %s", gotID, partnerID)
	}
}

func TestAPIKeyMiddleware_UnknownKey(t *testing.T) {
	lookup := &stubKeyLookup{hashes: map[string]uuid.UUID{}}
	rec, _ := runAPIKeyRequest(t, lookup, "sk_live_unknown")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAPIKeyMiddleware_MissingKey(t *testing.T) {
	lookup := &stubKeyLookup{hashes: map[string]uuid.UUID{}}
	rec, _ := runAPIKeyRequest(t, lookup, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHashAPIKey_Deterministic(t *testing.T) {
	if HashAPIKey("k1") != HashAPIKey("k1") {
		t.Error("same key produced different hashes")
	}
	if HashAPIKey("k1") == HashAPIKey("k2") {
		t.Error("different keys produced the same hash")
	}
	if len(HashAPIKey("k1")) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(HashAPIKey("k1")))
	}
}
