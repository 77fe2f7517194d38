package sla

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates an unknown SLA record or consultation id.
	ErrNotFound = errors.New("sla: record not found")
	// ErrAlreadyResolved indicates an attempt to resolve a terminal record.
	ErrAlreadyResolved = errors.New("sla: record already resolved")
)

// SLARecordRepository persists violation records. CreateIfAbsent is the
// atomic check-and-set that guards flag creation: implementations must
// guarantee at most one unresolved record per consultation even under
// concurrent callers, and must report whether this call created the record.
type SLARecordRepository interface {
	CreateIfAbsent(ctx context.Context, rec *SLARecord) (created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*SLARecord, error)
	GetByConsultation(ctx context.Context, consultationID uuid.UUID) (*SLARecord, error)
	Resolve(ctx context.Context, id uuid.UUID, notes string) error
	ListUnresolved(ctx context.Context, limit, offset int) ([]*SLARecord, int, error)
}

// ConsultationReader supplies the consultation window a metrics aggregation
// runs over. The surrounding platform owns consultation storage; the monitor
// only reads through this interface.
type ConsultationReader interface {
	List(ctx context.Context, filter MetricsFilter) ([]*Consultation, error)
}

// SupervisorNotifier alerts a provider's supervisor about an SLA violation.
// Delivery is fire-and-forget: a failure is logged by the monitor and never
// rolls back an already-committed flag.
type SupervisorNotifier interface {
	NotifySupervisor(ctx context.Context, providerID, consultationID uuid.UUID, violationMinutes int) error
}
