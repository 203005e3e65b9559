package customer

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
	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/customers", h.CreateCustomer)
	admin.GET("/customers", h.ListCustomers)
	admin.PUT("/customers/:id", h.UpdateCustomer)

	owner := api.Group("", auth.RequireRole("admin", "customer"))
	owner.GET("/customers/:id", h.GetCustomer)
	owner.GET("/customers/:id/profile", h.GetProfile)
}

func actor(c echo.Context) (actorType, actorID string) {
	actorID = auth.UserIDFromContext(c.Request().Context())
	if auth.HasRole(auth.RolesFromContext(c.Request().Context()), "admin") {
		return audit.ActorAdmin, actorID
	}
	return audit.ActorCustomer, actorID
}

// ownsRecord enforces that a customer-role caller only touches their own
// record. Admin bypasses.
func ownsRecord(c echo.Context, id uuid.UUID) bool {
	ctx := c.Request().Context()
	if auth.HasRole(auth.RolesFromContext(ctx), "admin") {
		return true
	}
	return auth.UserIDFromContext(ctx) == id.String()
}

func (h *Handler) CreateCustomer(c echo.Context) error {
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actorType, actorID := actor(c)
	created, err := h.svc.CreateCustomer(c.Request().Context(), &p, actorType, actorID)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !ownsRecord(c, id) {
		return echo.NewHTTPError(http.StatusForbidden, "not your record")
	}
	cust, err := h.svc.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *Handler) GetProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !ownsRecord(c, id) {
		return echo.NewHTTPError(http.StatusForbidden, "not your record")
	}
	actorType, actorID := actor(c)
	p, err := h.svc.GetProfile(c.Request().Context(), id, actorType, actorID)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actorType, actorID := actor(c)
	updated, err := h.svc.UpdateCustomer(c.Request().Context(), id, &p, actorType, actorID)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) ListCustomers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCustomers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
