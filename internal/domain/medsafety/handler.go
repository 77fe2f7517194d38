package medsafety

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telecare/riskcore/internal/platform/auth"
)

type Handler struct {
	checker *Checker
}

func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/safety", auth.RequireRole("provider", "pharmacist", "system"))
	g.POST("/check", h.Check)
}

// CheckRequest is the comprehensive safety check payload. Medications accept
// both the object form and legacy bare strings.
type CheckRequest struct {
	Medications []Medication `json:"medications"`
	Patient     *PatientData `json:"patient"`
}

// Check runs the comprehensive safety check. Failures are hard: a check that
// could not complete returns an error status, never a fabricated verdict.
func (h *Handler) Check(c echo.Context) error {
	var req CheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	verdict, err := h.checker.PerformComprehensiveSafetyCheck(c.Request().Context(), req.Medications, req.Patient)
	if err != nil {
		if errors.Is(err, ErrNilPatient) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError,
			"safety check could not complete; prescribing is blocked until resolved")
	}
	return c.JSON(http.StatusOK, verdict)
}
