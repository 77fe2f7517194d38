package sla

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/riskcore/internal/refdata"
)

// -- Mock Collaborators --

type mockConsultationReader struct {
	consults []*Consultation
}

func (m *mockConsultationReader) List(_ context.Context, _ MetricsFilter) ([]*Consultation, error) {
	return m.consults, nil
}

type mockNotifier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockNotifier) NotifySupervisor(_ context.Context, _, _ uuid.UUID, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func (m *mockNotifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestMonitor(notifier SupervisorNotifier, consults ...*Consultation) (*Monitor, SLARecordRepository) {
	repo := NewMemoryRepo()
	reader := &mockConsultationReader{consults: consults}
	m := NewMonitor(repo, reader, notifier, refdata.Default(), zerolog.Nop())
	return m, repo
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrUUID(u uuid.UUID) *uuid.UUID { return &u }

func overdueConsultation(urgency string, overdueBy time.Duration) *Consultation {
	threshold := time.Duration(refdata.Default().SLAThresholdMinutes(urgency)) * time.Minute
	submitted := time.Now().Add(-threshold - overdueBy)
	return &Consultation{
		ID:          uuid.New(),
		Urgency:     urgency,
		Status:      "pending",
		SubmittedAt: submitted,
	}
}

func TestCheckSLACompliance_Compliant(t *testing.T) {
	m, _ := newTestMonitor(nil)

	submitted := time.Now().Add(-10 * time.Minute)
	c := &Consultation{ID: uuid.New(), Urgency: "urgent", SubmittedAt: submitted}

	check, err := m.CheckSLACompliance(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !check.Compliant {
		t.Error("10 minutes against a 30-minute threshold should be compliant")
	}
	if check.ThresholdMinutes != 30 {
		t.Errorf("threshold = %d, want 30", check.ThresholdMinutes)
	}
	if check.ViolationMinutes != 0 {
		t.Errorf("violation minutes = %d, want 0", check.ViolationMinutes)
	}
}

func TestCheckSLACompliance_UsesAssignmentTimestamp(t *testing.T) {
	m, repo := newTestMonitor(nil)

	// Submitted long ago but assigned within threshold: compliant.
	submitted := time.Now().Add(-48 * time.Hour)
	assigned := submitted.Add(20 * time.Minute)
	c := &Consultation{
		ID:          uuid.New(),
		Urgency:     "urgent",
		SubmittedAt: submitted,
		AssignedAt:  ptrTime(assigned),
	}

	check, err := m.CheckSLACompliance(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !check.Compliant {
		t.Errorf("response time %d should be within threshold", check.ResponseTimeMinutes)
	}
	if _, _, err := repo.ListUnresolved(context.Background(), 10, 0); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestCheckSLACompliance_FlagCreationIdempotent(t *testing.T) {
	notifier := &mockNotifier{}
	m, repo := newTestMonitor(notifier)

	c := overdueConsultation("urgent", time.Hour)
	c.ProviderID = ptrUUID(uuid.New())

	for i := 0; i < 3; i++ {
		check, err := m.CheckSLACompliance(context.Background(), c)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if check.Compliant {
			t.Fatalf("check %d: expected violation", i)
		}
	}

	_, total, err := repo.ListUnresolved(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Errorf("unresolved records = %d, want exactly 1", total)
	}
	if notifier.callCount() != 1 {
		t.Errorf("notifier calls = %d, want 1 (only the creating call notifies)", notifier.callCount())
	}
}

func TestCheckSLACompliance_ConcurrentFlaggingCreatesOneRecord(t *testing.T) {
	m, repo := newTestMonitor(&mockNotifier{})

	c := overdueConsultation("high", 30*time.Minute)
	c.ProviderID = ptrUUID(uuid.New())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each goroutine gets its own copy, as concurrent status-change
			// events would.
			cc := *c
			if _, err := m.CheckSLACompliance(context.Background(), &cc); err != nil {
				t.Errorf("concurrent check: %v", err)
			}
		}()
	}
	wg.Wait()

	_, total, err := repo.ListUnresolved(context.Background(), 100, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Errorf("unresolved records = %d, want exactly 1", total)
	}
}

func TestCheckSLACompliance_NoNotificationWithoutProvider(t *testing.T) {
	notifier := &mockNotifier{}
	m, _ := newTestMonitor(notifier)

	if _, err := m.CheckSLACompliance(context.Background(), overdueConsultation("urgent", time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notifier.callCount() != 0 {
		t.Errorf("notifier calls = %d, want 0 when no provider is assigned", notifier.callCount())
	}
}

func TestCheckSLACompliance_NotifierFailureDoesNotAbortFlag(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("smtp unavailable")}
	m, repo := newTestMonitor(notifier)

	c := overdueConsultation("urgent", time.Hour)
	c.ProviderID = ptrUUID(uuid.New())

	check, err := m.CheckSLACompliance(context.Background(), c)
	if err != nil {
		t.Fatalf("notification failure must not surface: %v", err)
	}
	if check.Compliant {
		t.Fatal("expected violation")
	}

	_, total, _ := repo.ListUnresolved(context.Background(), 10, 0)
	if total != 1 {
		t.Errorf("flag must be committed despite notification failure, got %d records", total)
	}
}

func TestTrackResponseTime_UpdatesConsultation(t *testing.T) {
	m, repo := newTestMonitor(nil)

	c := overdueConsultation("medium", 15*time.Minute)

	for _, status := range []string{"assigned", "in_progress", "completed"} {
		if _, err := m.TrackResponseTime(context.Background(), c, status); err != nil {
			t.Fatalf("track %s: %v", status, err)
		}
		if c.Status != status {
			t.Errorf("status = %s, want %s", c.Status, status)
		}
	}
	if c.ResponseTimeMinutes == nil || *c.ResponseTimeMinutes <= 0 {
		t.Error("response time should be populated for the caller to persist")
	}

	_, total, _ := repo.ListUnresolved(context.Background(), 10, 0)
	if total != 1 {
		t.Errorf("repeated tracking created %d records, want 1", total)
	}
}

func TestGetSLAMetrics_TotalsAndRates(t *testing.T) {
	now := time.Now()
	consults := []*Consultation{
		// urgent: one compliant, one violation
		{ID: uuid.New(), Urgency: "urgent", SubmittedAt: now.Add(-40 * time.Minute), AssignedAt: ptrTime(now.Add(-30 * time.Minute))},
		{ID: uuid.New(), Urgency: "urgent", SubmittedAt: now.Add(-2 * time.Hour), AssignedAt: ptrTime(now)},
		// routine: compliant
		{ID: uuid.New(), Urgency: "routine", SubmittedAt: now.Add(-3 * time.Hour), AssignedAt: ptrTime(now)},
	}
	m, _ := newTestMonitor(nil, consults...)

	metrics, err := m.GetSLAMetrics(context.Background(), MetricsFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metrics.Overall.Total != 3 {
		t.Errorf("overall total = %d, want 3", metrics.Overall.Total)
	}

	sumTotals, sumCompliant, sumViolations := 0, 0, 0
	for _, um := range metrics.ByUrgency {
		sumTotals += um.Total
		sumCompliant += um.Compliant
		sumViolations += um.Violations
	}
	if sumTotals != metrics.Overall.Total {
		t.Errorf("per-urgency totals %d != overall %d", sumTotals, metrics.Overall.Total)
	}
	if sumCompliant != metrics.Overall.Compliant {
		t.Errorf("per-urgency compliant %d != overall %d", sumCompliant, metrics.Overall.Compliant)
	}
	if sumViolations != metrics.Overall.Violations {
		t.Errorf("per-urgency violations %d != overall %d", sumViolations, metrics.Overall.Violations)
	}

	urgent := metrics.ByUrgency["urgent"]
	if urgent.Total != 2 || urgent.Compliant != 1 {
		t.Errorf("urgent bucket = %+v, want total 2 compliant 1", urgent)
	}
	if urgent.ComplianceRate != 50.0 {
		t.Errorf("urgent compliance rate = %.2f, want 50.00", urgent.ComplianceRate)
	}
	if urgent.MinResponseMinutes != 10 || urgent.MaxResponseMinutes != 120 {
		t.Errorf("urgent min/max = %d/%d, want 10/120", urgent.MinResponseMinutes, urgent.MaxResponseMinutes)
	}
	if urgent.AvgResponseMinutes != 65.0 {
		t.Errorf("urgent avg = %.2f, want 65.00", urgent.AvgResponseMinutes)
	}
}

func TestGetSLAMetrics_RateRoundedTwoDecimals(t *testing.T) {
	now := time.Now()
	var consults []*Consultation
	// 3 consultations, 2 compliant: 66.666... -> 66.67
	consults = append(consults,
		&Consultation{ID: uuid.New(), Urgency: "high", SubmittedAt: now.Add(-30 * time.Minute), AssignedAt: ptrTime(now)},
		&Consultation{ID: uuid.New(), Urgency: "high", SubmittedAt: now.Add(-60 * time.Minute), AssignedAt: ptrTime(now)},
		&Consultation{ID: uuid.New(), Urgency: "high", SubmittedAt: now.Add(-5 * time.Hour), AssignedAt: ptrTime(now)},
	)
	m, _ := newTestMonitor(nil, consults...)

	metrics, err := m.GetSLAMetrics(context.Background(), MetricsFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.Overall.ComplianceRate != 66.67 {
		t.Errorf("compliance rate = %v, want 66.67", metrics.Overall.ComplianceRate)
	}
}

func TestResolveSLAViolation_OneWay(t *testing.T) {
	m, repo := newTestMonitor(nil)

	c := overdueConsultation("urgent", time.Hour)
	if _, err := m.CheckSLACompliance(context.Background(), c); err != nil {
		t.Fatalf("check: %v", err)
	}

	recs, _, err := repo.ListUnresolved(context.Background(), 10, 0)
	if err != nil || len(recs) != 1 {
		t.Fatalf("expected one unresolved record, got %d (err %v)", len(recs), err)
	}
	id := recs[0].ID

	if err := m.ResolveSLAViolation(context.Background(), id, "provider responded, patient contacted"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Excluded from the unresolved listing afterwards.
	_, total, _ := repo.ListUnresolved(context.Background(), 10, 0)
	if total != 0 {
		t.Errorf("unresolved after resolution = %d, want 0", total)
	}

	// Terminal: resolving again fails.
	if err := m.ResolveSLAViolation(context.Background(), id, "again"); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("second resolve err = %v, want ErrAlreadyResolved", err)
	}

	rec, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ResolvedAt == nil || rec.ResolutionNotes == nil {
		t.Error("resolution timestamp and notes should be recorded")
	}
}

func TestResolveSLAViolation_UnknownRecord(t *testing.T) {
	m, _ := newTestMonitor(nil)

	if err := m.ResolveSLAViolation(context.Background(), uuid.New(), "notes"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetSLAMetrics_ResolvedViolationsStillCount(t *testing.T) {
	c := overdueConsultation("urgent", time.Hour)
	m, repo := newTestMonitor(nil, c)

	if _, err := m.CheckSLACompliance(context.Background(), c); err != nil {
		t.Fatalf("check: %v", err)
	}
	recs, _, _ := repo.ListUnresolved(context.Background(), 10, 0)
	if err := m.ResolveSLAViolation(context.Background(), recs[0].ID, "handled"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	metrics, err := m.GetSLAMetrics(context.Background(), MetricsFilter{})
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if metrics.Overall.Violations != 1 {
		t.Errorf("violations = %d, want 1 (resolution does not erase the violation)", metrics.Overall.Violations)
	}
}

func TestCheckSLACompliance_MissingSubmissionTimestamp(t *testing.T) {
	m, _ := newTestMonitor(nil)

	if _, err := m.CheckSLACompliance(context.Background(), &Consultation{ID: uuid.New(), Urgency: "high"}); err == nil {
		t.Fatal("expected hard error for missing submission timestamp")
	}
}
