package sla

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/telecare/riskcore/internal/platform/auth"
	"github.com/telecare/riskcore/pkg/pagination"
)

type Handler struct {
	monitor *Monitor
}

func NewHandler(monitor *Monitor) *Handler {
	return &Handler{monitor: monitor}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/sla")

	check := g.Group("", auth.RequireRole("system", "provider"))
	check.POST("/check", h.Check)
	check.POST("/track", h.Track)

	reporting := g.Group("", auth.RequireRole("supervisor", "system"))
	reporting.GET("/metrics", h.Metrics)
	reporting.GET("/violations", h.ListViolations)
	reporting.POST("/violations/:id/resolve", h.ResolveViolation)
}

func (h *Handler) Check(c echo.Context) error {
	var consult Consultation
	if err := c.Bind(&consult); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	check, err := h.monitor.CheckSLACompliance(c.Request().Context(), &consult)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, check)
}

// TrackRequest carries a status-change event.
type TrackRequest struct {
	Consultation Consultation `json:"consultation"`
	NewStatus    string       `json:"new_status"`
}

func (h *Handler) Track(c echo.Context) error {
	var req TrackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	check, err := h.monitor.TrackResponseTime(c.Request().Context(), &req.Consultation, req.NewStatus)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"compliance":   check,
		"consultation": req.Consultation,
	})
}

func (h *Handler) Metrics(c echo.Context) error {
	var filter MetricsFilter
	var from, to time.Time
	if err := echo.QueryParamsBinder(c).
		Time("from", &from, "2006-01-02").
		Time("to", &to, "2006-01-02").
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date filter")
	}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		filter.To = &to
	}
	filter.Urgency = c.QueryParam("urgency")
	if pid := c.QueryParam("provider_id"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid provider_id")
		}
		filter.ProviderID = &id
	}

	metrics, err := h.monitor.GetSLAMetrics(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, metrics)
}

func (h *Handler) ListViolations(c echo.Context) error {
	pg := pagination.FromContext(c)
	records, total, err := h.monitor.GetUnresolvedViolations(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg.Limit, pg.Offset))
}

// ResolveRequest carries resolution notes.
type ResolveRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) ResolveViolation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	switch err := h.monitor.ResolveSLAViolation(c.Request().Context(), id, req.Notes); {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "sla record not found")
	case errors.Is(err, ErrAlreadyResolved):
		return echo.NewHTTPError(http.StatusConflict, "sla record already resolved")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
