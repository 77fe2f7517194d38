package triage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/telecare/riskcore/internal/refdata"
)

func newTestHandler() (*Handler, *echo.Echo) {
	a := NewAnalyzer(refdata.Default(), zerolog.Nop())
	return NewHandler(a), echo.New()
}

func TestHandler_Analyze(t *testing.T) {
	h, e := newTestHandler()
	body := `{"symptoms":"crushing chest pain","age":55}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Analyze(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var result TriageResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Urgency != UrgencyUrgent {
		t.Errorf("expected urgent, got %s", result.Urgency)
	}
	if !result.RequiresSynchronousVisit {
		t.Error("expected synchronous visit requirement")
	}
}

func TestHandler_Analyze_EmptyInput(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Analyze(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result TriageResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.RiskLevel != RiskLow {
		t.Errorf("expected low risk for empty input, got %s", result.RiskLevel)
	}
}

func TestHandler_Analyze_BadJSON(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Analyze(c); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
