package audit

import (
	"net/http"
	"time"

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireRole("admin", "auditor"))
	admin.GET("/audit", h.SearchEntries)
	admin.GET("/audit/verify", h.VerifyChain)
	admin.GET("/audit/:id", h.GetEntry)
}

// SearchEntries returns a filtered, paginated page of the audit log along
// with the integrity verdict for the returned entries.
func (h *Handler) SearchEntries(c echo.Context) error {
	pg := pagination.FromContext(c)

	f := Filter{
		EventType: c.QueryParam("eventType"),
		ActorType: c.QueryParam("actorType"),
		ActorID:   c.QueryParam("actorId"),
	}
	if v := c.QueryParam("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from timestamp")
		}
		f.From = ts
	}
	if v := c.QueryParam("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to timestamp")
		}
		f.To = ts
	}

	entries, total, integrity, err := h.svc.Search(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}

	resp := pagination.NewResponse(entries, total, pg.Limit, pg.Offset)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":      resp.Data,
		"total":     resp.Total,
		"limit":     resp.Limit,
		"offset":    resp.Offset,
		"has_more":  resp.HasMore,
		"integrity": integrity,
	})
}

func (h *Handler) GetEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetEntry(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, e)
}

// VerifyChain checks linkage and signatures for the inclusive range between
// startId and endId.
func (h *Handler) VerifyChain(c echo.Context) error {
	startID, err := uuid.Parse(c.QueryParam("startId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid startId")
	}
	endID, err := uuid.Parse(c.QueryParam("endId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid endId")
	}

	result, err := h.svc.VerifyChainIntegrity(c.Request().Context(), startID, endID)
	if err != nil {
		return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.ClientMessage(err))
	}
	return c.JSON(http.StatusOK, result)
}
