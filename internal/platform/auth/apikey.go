package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	APIKeyHeader = "X-API-Key"

	PartnerIDKey contextKey = "partner_id"
)

// PartnerKeyLookup resolves a hashed API key to the active partner it
// belongs to. Suspended and pending partners must not resolve.
type PartnerKeyLookup interface {
	FindActiveByAPIKeyHash(ctx context.Context, keyHash string) (uuid.UUID, error)
}

// HashAPIKey returns the hex SHA-256 of a raw API key. Only this hash is
// ever stored or compared; the raw key is shown once at issuance.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// APIKeyMiddleware authenticates partner requests by the X-API-Key header
// and places the partner ID on the request context.
func APIKeyMiddleware(lookup PartnerKeyLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(APIKeyHeader)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing API key")
			}

			partnerID, err := lookup.FindActiveByAPIKeyHash(c.Request().Context(), HashAPIKey(raw))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid API key")
			}

			ctx := context.WithValue(c.Request().Context(), PartnerIDKey, partnerID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// PartnerIDFromContext returns the authenticated partner ID, or uuid.Nil
// when the request did not pass partner authentication.
func PartnerIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(PartnerIDKey).(uuid.UUID)
	return id
}
