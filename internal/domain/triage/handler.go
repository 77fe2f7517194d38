package triage

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telecare/riskcore/internal/platform/auth"
)

type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{analyzer: analyzer}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/triage", auth.RequireRole("provider", "nurse", "system"))
	g.POST("/analyze", h.Analyze)
}

// Analyze scores a consultation intake payload. It never fails the request:
// triage errors degrade to a high-risk manual-review result inside the
// analyzer, so submission is never blocked.
func (h *Handler) Analyze(c echo.Context) error {
	var input ConsultationInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result := h.analyzer.Analyze(input)
	return c.JSON(http.StatusOK, result)
}
