package appointment

import (
	"net/http"
	"time"

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

// RegisterRoutes registers the appointment endpoints. Authorization happens
// in the service, not at the route level.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/appointments", h.HandleList)
	g.POST("/appointments", h.HandleCreate)
	g.GET("/appointments/:id", h.HandleGet)
	g.PUT("/appointments/:id", h.HandleUpdate)
	g.PATCH("/appointments/:id/status", h.HandleTransitionStatus)
	g.DELETE("/appointments/:id", h.HandleDelete)
	g.GET("/appointments/doctor/:doctorId", h.HandleListForDoctor)
	g.GET("/appointments/patient/:patientId", h.HandleListForPatient)
}

func meta(c echo.Context) RequestMeta {
	return RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func filterFromQuery(c echo.Context) (Filter, error) {
	var f Filter
	f.Status = c.QueryParam("status")
	if f.Status != "" && !ValidStatus(f.Status) {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
	}
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid date filter, want YYYY-MM-DD")
		}
		f.Date = &d
	}
	if raw := c.QueryParam("doctor"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid doctor filter")
		}
		f.DoctorID = &id
	}
	if raw := c.QueryParam("patient"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid patient filter")
		}
		f.PatientID = &id
	}
	return f, nil
}

func (h *Handler) HandleList(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	p := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())

	items, total, err := h.service.List(c.Request().Context(), actor, f, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) HandleCreate(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	a, err := h.service.Create(c.Request().Context(), actor, in, meta(c))
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) HandleGet(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	actor := auth.ActorFromContext(c.Request().Context())
	a, err := h.service.Get(c.Request().Context(), actor, id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleUpdate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	a, err := h.service.Update(c.Request().Context(), actor, id, in, meta(c))
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleTransitionStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	a, err := h.service.TransitionStatus(c.Request().Context(), actor, id, body.Status, meta(c))
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleDelete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	actor := auth.ActorFromContext(c.Request().Context())
	if err := h.service.Delete(c.Request().Context(), actor, id, meta(c)); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleListForDoctor(c echo.Context) error {
	doctorID, err := pathID(c, "doctorId")
	if err != nil {
		return err
	}

	p := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())

	items, total, err := h.service.ListForDoctor(c.Request().Context(), actor, doctorID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) HandleListForPatient(c echo.Context) error {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		return err
	}

	p := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())

	items, total, err := h.service.ListForPatient(c.Request().Context(), actor, patientID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}
