package sla

import (
	"time"

	"github.com/google/uuid"
)

// Consultation is the read-only projection of a consultation record the
// monitor consumes. The consultation itself is owned by the surrounding
// platform; the monitor only reads timestamps, urgency, and assignment.
type Consultation struct {
	ID          uuid.UUID  `json:"id"`
	Urgency     string     `json:"urgency"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	ProviderID  *uuid.UUID `json:"provider_id,omitempty"`

	// ResponseTimeMinutes is populated by TrackResponseTime for the caller
	// to persist.
	ResponseTimeMinutes *int `json:"response_time_minutes,omitempty"`
}

// SLARecord maps to the sla_record table. Created exactly once when a
// violation is first detected; mutated only by resolution.
type SLARecord struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	ConsultationID        uuid.UUID  `db:"consultation_id" json:"consultation_id"`
	ProviderID            *uuid.UUID `db:"provider_id" json:"provider_id,omitempty"`
	UrgencyLevel          string     `db:"urgency_level" json:"urgency_level"`
	ThresholdMinutes      int        `db:"threshold_minutes" json:"threshold_minutes"`
	ActualResponseMinutes int        `db:"actual_response_minutes" json:"actual_response_minutes"`
	ViolationMinutes      int        `db:"violation_minutes" json:"violation_minutes"`
	FlaggedAt             time.Time  `db:"flagged_at" json:"flagged_at"`
	ResolvedAt            *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolutionNotes       *string    `db:"resolution_notes" json:"resolution_notes,omitempty"`
}

// Resolved reports whether the record has reached its terminal state.
func (r *SLARecord) Resolved() bool { return r.ResolvedAt != nil }

// ComplianceCheck is the outcome of one compliance evaluation.
type ComplianceCheck struct {
	Compliant           bool   `json:"compliant"`
	ResponseTimeMinutes int    `json:"response_time_minutes"`
	ThresholdMinutes    int    `json:"threshold_minutes"`
	Urgency             string `json:"urgency"`
	ViolationMinutes    int    `json:"violation_minutes"`
}

// MetricsFilter narrows a metrics aggregation window.
type MetricsFilter struct {
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	Urgency    string     `json:"urgency,omitempty"`
	ProviderID *uuid.UUID `json:"provider_id,omitempty"`
}

// UrgencyMetrics aggregates compliance figures for one urgency tier.
type UrgencyMetrics struct {
	Total              int     `json:"total"`
	Compliant          int     `json:"compliant"`
	Violations         int     `json:"violations"`
	ComplianceRate     float64 `json:"compliance_rate"`
	AvgResponseMinutes float64 `json:"avg_response_minutes"`
	MinResponseMinutes int     `json:"min_response_minutes"`
	MaxResponseMinutes int     `json:"max_response_minutes"`
}

// Metrics is the full aggregation returned by GetSLAMetrics.
type Metrics struct {
	Overall   UrgencyMetrics            `json:"overall"`
	ByUrgency map[string]UrgencyMetrics `json:"by_urgency"`
}
