package patient

import (
	"net/http"

	"github.com/google/uuid"
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
	g.GET("/patients/summary/:patientId", h.HandleGet)
	g.POST("/patients/summary/:patientId", h.HandleCreate)
	g.PUT("/patients/summary/:patientId", h.HandleUpdate)
	g.POST("/patients/summary/:patientId/medical-record", h.HandleAddMedicalRecord)
}

func meta(c echo.Context) RequestMeta {
	return RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func patientID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return id, nil
}

func (h *Handler) HandleGet(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}

	actor := auth.ActorFromContext(c.Request().Context())
	summary, err := h.service.Get(c.Request().Context(), actor, id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) HandleCreate(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}

	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	summary, err := h.service.Create(c.Request().Context(), actor, id, in, meta(c))
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, summary)
}

func (h *Handler) HandleUpdate(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}

	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	summary, err := h.service.Update(c.Request().Context(), actor, id, in, meta(c))
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) HandleAddMedicalRecord(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}

	var in MedicalRecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	summary, err := h.service.AddMedicalRecord(c.Request().Context(), actor, id, in, meta(c))
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}
