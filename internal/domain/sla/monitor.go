// Package sla tracks consultation response times against the urgency
// threshold table, flags violations exactly once, and aggregates compliance
// metrics. Flag creation is delegated to the repository as an atomic
// check-and-set so that concurrent status-change events cannot create
// duplicate records.
package sla

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/riskcore/internal/refdata"
)

// Monitor evaluates SLA compliance for consultations.
type Monitor struct {
	records  SLARecordRepository
	consults ConsultationReader
	notifier SupervisorNotifier
	tables   *refdata.Tables
	logger   zerolog.Logger
	now      func() time.Time
}

func NewMonitor(records SLARecordRepository, consults ConsultationReader, notifier SupervisorNotifier, tables *refdata.Tables, logger zerolog.Logger) *Monitor {
	return &Monitor{
		records:  records,
		consults: consults,
		notifier: notifier,
		tables:   tables,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckSLACompliance computes the consultation's response time against its
// urgency threshold and, when non-compliant, flags the violation. Safe to
// call repeatedly: the underlying conditional write makes flag creation
// idempotent.
func (m *Monitor) CheckSLACompliance(ctx context.Context, c *Consultation) (*ComplianceCheck, error) {
	if c == nil {
		return nil, fmt.Errorf("sla: consultation is required")
	}
	if c.SubmittedAt.IsZero() {
		return nil, fmt.Errorf("sla: consultation %s has no submission timestamp", c.ID)
	}

	threshold := m.tables.SLAThresholdMinutes(c.Urgency)

	end := m.now()
	if c.AssignedAt != nil {
		end = *c.AssignedAt
	}
	actual := int(end.Sub(c.SubmittedAt).Minutes())
	if actual < 0 {
		actual = 0
	}

	check := &ComplianceCheck{
		Compliant:           actual <= threshold,
		ResponseTimeMinutes: actual,
		ThresholdMinutes:    threshold,
		Urgency:             c.Urgency,
		ViolationMinutes:    max(0, actual-threshold),
	}

	if !check.Compliant {
		if err := m.flagSLAViolation(ctx, c, check); err != nil {
			return nil, err
		}
	}
	return check, nil
}

// flagSLAViolation performs the unflagged → flagged transition through the
// repository's atomic check-and-set. Only the call that actually created the
// record notifies the supervisor, and only when a provider is assigned.
func (m *Monitor) flagSLAViolation(ctx context.Context, c *Consultation, check *ComplianceCheck) error {
	rec := &SLARecord{
		ID:                    uuid.New(),
		ConsultationID:        c.ID,
		ProviderID:            c.ProviderID,
		UrgencyLevel:          c.Urgency,
		ThresholdMinutes:      check.ThresholdMinutes,
		ActualResponseMinutes: check.ResponseTimeMinutes,
		ViolationMinutes:      check.ViolationMinutes,
		FlaggedAt:             m.now(),
	}

	created, err := m.records.CreateIfAbsent(ctx, rec)
	if err != nil {
		return fmt.Errorf("flag sla violation for consultation %s: %w", c.ID, err)
	}
	if !created {
		return nil
	}

	m.logger.Warn().
		Str("consultation_id", c.ID.String()).
		Str("urgency", c.Urgency).
		Int("violation_minutes", check.ViolationMinutes).
		Msg("sla violation flagged")

	if m.notifier != nil && c.ProviderID != nil {
		if nerr := m.notifier.NotifySupervisor(ctx, *c.ProviderID, c.ID, check.ViolationMinutes); nerr != nil {
			// Notification delivery must never abort an already-committed flag.
			m.logger.Error().Err(nerr).
				Str("consultation_id", c.ID.String()).
				Msg("supervisor notification failed")
		}
	}
	return nil
}

// TrackResponseTime is invoked on every workflow status change. It updates
// the consultation's response time and re-checks compliance; calling it any
// number of times creates at most one violation record.
func (m *Monitor) TrackResponseTime(ctx context.Context, c *Consultation, newStatus string) (*ComplianceCheck, error) {
	if c == nil {
		return nil, fmt.Errorf("sla: consultation is required")
	}
	c.Status = newStatus

	check, err := m.CheckSLACompliance(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ResponseTimeMinutes = &check.ResponseTimeMinutes
	return check, nil
}

// GetSLAMetrics aggregates compliance over the filtered consultation window,
// grouped by urgency and overall. A consultation counts as a violation
// whenever its response time exceeded the threshold, whether or not the
// violation record has since been resolved.
func (m *Monitor) GetSLAMetrics(ctx context.Context, filter MetricsFilter) (*Metrics, error) {
	if m.consults == nil {
		return nil, fmt.Errorf("sla metrics: no consultation source configured")
	}
	consults, err := m.consults.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("sla metrics: %w", err)
	}

	type bucket struct {
		total, compliant int
		responseTimes    []int
	}
	buckets := make(map[string]*bucket)
	overall := &bucket{}

	for _, c := range consults {
		threshold := m.tables.SLAThresholdMinutes(c.Urgency)

		end := m.now()
		if c.AssignedAt != nil {
			end = *c.AssignedAt
		}
		actual := int(end.Sub(c.SubmittedAt).Minutes())
		if actual < 0 {
			actual = 0
		}

		key := c.Urgency
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		for _, target := range []*bucket{b, overall} {
			target.total++
			if actual <= threshold {
				target.compliant++
			}
			target.responseTimes = append(target.responseTimes, actual)
		}
	}

	finish := func(b *bucket) UrgencyMetrics {
		um := UrgencyMetrics{
			Total:      b.total,
			Compliant:  b.compliant,
			Violations: b.total - b.compliant,
		}
		if b.total > 0 {
			um.ComplianceRate = round2(float64(b.compliant) / float64(b.total) * 100)
			sum := 0
			um.MinResponseMinutes = b.responseTimes[0]
			um.MaxResponseMinutes = b.responseTimes[0]
			for _, rt := range b.responseTimes {
				sum += rt
				if rt < um.MinResponseMinutes {
					um.MinResponseMinutes = rt
				}
				if rt > um.MaxResponseMinutes {
					um.MaxResponseMinutes = rt
				}
			}
			um.AvgResponseMinutes = round2(float64(sum) / float64(b.total))
		}
		return um
	}

	metrics := &Metrics{
		Overall:   finish(overall),
		ByUrgency: make(map[string]UrgencyMetrics, len(buckets)),
	}
	for urgency, b := range buckets {
		metrics.ByUrgency[urgency] = finish(b)
	}
	return metrics, nil
}

// ResolveSLAViolation performs the one-way flagged → resolved transition.
func (m *Monitor) ResolveSLAViolation(ctx context.Context, id uuid.UUID, notes string) error {
	if err := m.records.Resolve(ctx, id, notes); err != nil {
		return err
	}
	m.logger.Info().Str("record_id", id.String()).Msg("sla violation resolved")
	return nil
}

// GetUnresolvedViolations lists records still awaiting resolution.
func (m *Monitor) GetUnresolvedViolations(ctx context.Context, limit, offset int) ([]*SLARecord, int, error) {
	return m.records.ListUnresolved(ctx, limit, offset)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
