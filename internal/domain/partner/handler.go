package partner

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

// RegisterRoutes wires admin management routes onto api and the partner's
// own contract submission onto partnerAPI (API-key authenticated).
func (h *Handler) RegisterRoutes(api *echo.Group, partnerAPI *echo.Group) {
	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/partners", h.RegisterPartner)
	admin.GET("/partners", h.ListPartners)
	admin.GET("/partners/:id", h.GetPartner)
	admin.POST("/partners/:id/contract", h.SubmitContractAdmin)
	admin.POST("/partners/:id/contract/approve", h.ApproveContract)
	admin.POST("/partners/:id/contract/reject", h.RejectContract)
	admin.POST("/partners/:id/suspend", h.SuspendPartner)

	partnerAPI.POST("/contract", h.SubmitContract)
}

type registerRequest struct {
	Name        string `json:"name"`
	CallbackURL string `json:"callbackUrl"`
	PublicKey   string `json:"publicKey"`
}

type registerResponse struct {
	Partner *Partner `json:"partner"`
	// APIKey is shown exactly once.
	APIKey string `json:"apiKey"`
}

func (h *Handler) RegisterPartner(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actorID := auth.UserIDFromContext(c.Request().Context())
	p, rawKey, err := h.svc.RegisterPartner(c.Request().Context(), req.Name, req.CallbackURL, req.PublicKey, actorID)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, registerResponse{Partner: p, APIKey: rawKey})
}

func (h *Handler) GetPartner(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPartner(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPartners(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPartners(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SubmitContract(c echo.Context) error {
	partnerID := auth.PartnerIDFromContext(c.Request().Context())
	if partnerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "partner authentication required")
	}
	var draft Contract
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.SubmitContract(c.Request().Context(), partnerID, &draft)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusAccepted, p)
}

// SubmitContractAdmin lets an admin file a contract draft on a partner's
// behalf. Pending partners cannot authenticate against the partner API yet,
// so their first draft arrives through this route.
func (h *Handler) SubmitContractAdmin(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var draft Contract
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.SubmitContract(c.Request().Context(), id, &draft)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusAccepted, p)
}

func (h *Handler) ApproveContract(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actorID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.ApproveContract(c.Request().Context(), id, actorID)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, p)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) RejectContract(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actorID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.RejectContract(c.Request().Context(), id, actorID, req.Reason)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SuspendPartner(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actorID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.SuspendPartner(c.Request().Context(), id, actorID)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, p)
}
