package analytics

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carebook/carebook/internal/domain/apperr"
	"github.com/carebook/carebook/internal/platform/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/analytics/overview", h.HandleOverview)
	g.GET("/analytics/appointments", h.HandleAppointments)
	g.GET("/analytics/patients", h.HandlePatients)
}

func (h *Handler) HandleOverview(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())

	o, err := h.service.Overview(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) HandleAppointments(c echo.Context) error {
	var r DateRange
	if raw := c.QueryParam("startDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid startDate, want YYYY-MM-DD")
		}
		r.Start = t
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid endDate, want YYYY-MM-DD")
		}
		r.End = t
	}

	actor := auth.ActorFromContext(c.Request().Context())
	b, err := h.service.AppointmentBreakdown(c.Request().Context(), actor, r)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) HandlePatients(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())

	stats, err := h.service.PatientStats(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
