package disclosure

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/auth"
	"github.com/Brijeshthummar02/SecureShare-Eagles/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the partner-facing disclosure routes (API-key
// authenticated) and the admin review route.
func (h *Handler) RegisterRoutes(api *echo.Group, partnerAPI *echo.Group) {
	partnerAPI.POST("/data-requests", h.RequestData)
	partnerAPI.GET("/data-requests", h.ListRequests)
	partnerAPI.GET("/data-requests/:id", h.GetRequest)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/data-requests/:id", h.GetRequestAdmin)
}

type dataRequestBody struct {
	ConsentID uuid.UUID `json:"consentId"`
	Fields    []string  `json:"fields"`
	Signature string    `json:"signature"`
	// SignedPayload is the exact bytes the partner signed, base64-free
	// JSON as sent.
	SignedPayload string `json:"signedPayload"`
}

func (h *Handler) RequestData(c echo.Context) error {
	partnerID := auth.PartnerIDFromContext(c.Request().Context())
	if partnerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "partner authentication required")
	}

	var body dataRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(body.Fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "fields is required")
	}

	result, err := h.svc.RequestData(c.Request().Context(), partnerID, body.ConsentID,
		body.Fields, []byte(body.SignedPayload), body.Signature)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}

	if result.Encrypted {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "success",
			"encrypted": true,
			"requestId": result.Request.ID,
			"data":      result.Envelope,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "success",
		"encrypted": false,
		"requestId": result.Request.ID,
		"data":      result.Plaintext,
	})
}

func (h *Handler) GetRequest(c echo.Context) error {
	partnerID := auth.PartnerIDFromContext(c.Request().Context())
	if partnerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "partner authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetRequest(c.Request().Context(), id, partnerID, false)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) GetRequestAdmin(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetRequest(c.Request().Context(), id, uuid.Nil, true)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListRequests(c echo.Context) error {
	partnerID := auth.PartnerIDFromContext(c.Request().Context())
	if partnerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "partner authentication required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPartner(c.Request().Context(), partnerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
