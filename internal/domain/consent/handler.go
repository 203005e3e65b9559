package consent

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/audit"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/auth"
	"github.com/Brijeshthummar02/SecureShare-Eagles/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	grp := api.Group("", auth.RequireRole("admin", "customer"))
	grp.POST("/consents", h.CreateConsent)
	grp.GET("/consents/:id", h.GetConsent)
	grp.POST("/consents/:id/revoke", h.RevokeConsent)
	grp.GET("/customers/:id/consents", h.ListByCustomer)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/partners/:id/consents", h.ListByPartner)
}

func actor(c echo.Context) (actorType, actorID string) {
	actorID = auth.UserIDFromContext(c.Request().Context())
	if auth.HasRole(auth.RolesFromContext(c.Request().Context()), "admin") {
		return audit.ActorAdmin, actorID
	}
	return audit.ActorCustomer, actorID
}

type createRequest struct {
	CustomerID uuid.UUID `json:"customerId"`
	PartnerID  uuid.UUID `json:"partnerId"`
	Fields     []string  `json:"fields"`
	DurationMS int64     `json:"durationMs"`
	DeviceInfo string    `json:"deviceInfo"`
}

func (h *Handler) CreateConsent(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actorType, actorID := actor(c)
	if actorType == audit.ActorCustomer && actorID != req.CustomerID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "customers may only grant consent for themselves")
	}

	created, err := h.svc.CreateConsent(c.Request().Context(), req.CustomerID, req.PartnerID,
		req.Fields, req.DurationMS, req.DeviceInfo, actorType, actorID)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetConsent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	consent, err := h.svc.GetConsent(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}

	actorType, actorID := actor(c)
	if actorType == audit.ActorCustomer && actorID != consent.CustomerID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "not your consent")
	}
	return c.JSON(http.StatusOK, consent)
}

func (h *Handler) RevokeConsent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actorType, actorID := actor(c)
	revoked, err := h.svc.Revoke(c.Request().Context(), id, actorType, actorID)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, revoked)
}

func (h *Handler) ListByCustomer(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actorType, actorID := actor(c)
	if actorType == audit.ActorCustomer && actorID != customerID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "not your consents")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByCustomer(c.Request().Context(), customerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPartner(c echo.Context) error {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPartner(c.Request().Context(), partnerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
