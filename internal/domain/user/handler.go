package user

import (
	"net/http"

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

// RegisterPublicRoutes registers the endpoints reachable without a session.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/register", h.HandleRegister)
	g.POST("/auth/login", h.HandleLogin)
}

// RegisterRoutes registers the endpoints that require authentication.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/auth/me", h.HandleMe)
	g.POST("/auth/logout", h.HandleLogout)
	g.GET("/doctors", h.HandleListDoctors)
}

func meta(c echo.Context) RequestMeta {
	return RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func (h *Handler) HandleRegister(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Register(c.Request().Context(), in, meta(c))
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *Handler) HandleLogin(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Login(c.Request().Context(), in, meta(c))
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) HandleMe(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())

	u, err := h.service.Me(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) HandleLogout(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	h.service.Logout(c.Request().Context(), actor, meta(c))
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) HandleListDoctors(c echo.Context) error {
	p := pagination.FromContext(c)

	doctors, total, err := h.service.ListDoctors(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, p.Limit, p.Offset))
}
