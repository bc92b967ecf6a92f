package audit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebook/carebook/internal/domain/apperr"
	"github.com/carebook/carebook/internal/platform/auth"
	"github.com/carebook/carebook/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the audit trail read endpoints. The wiring layer
// gates the group to administrators.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit/users/:userId", h.HandleListByUser)
	g.GET("/audit/:resource/:resourceId", h.HandleListByResource)
}

func (h *Handler) HandleListByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	p := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())

	entries, total, err := h.service.ListByUser(c.Request().Context(), actor, userID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, p.Limit, p.Offset))
}

func (h *Handler) HandleListByResource(c echo.Context) error {
	resourceID, err := uuid.Parse(c.Param("resourceId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resource id")
	}

	p := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())

	entries, total, err := h.service.ListByResource(c.Request().Context(), actor, c.Param("resource"), resourceID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, p.Limit, p.Offset))
}
