package sla

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryRepo is the in-memory SLARecordRepository. It backs tests and
// database-less development runs, and provides the same check-and-set
// semantics as the Postgres implementation under a mutex.
type memoryRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*SLARecord
	records []*SLARecord
}

func NewMemoryRepo() SLARecordRepository {
	return &memoryRepo{byID: make(map[uuid.UUID]*SLARecord)}
}

func (r *memoryRepo) CreateIfAbsent(_ context.Context, rec *SLARecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.ConsultationID == rec.ConsultationID && !existing.Resolved() {
			return false, nil
		}
	}
	cp := *rec
	r.byID[cp.ID] = &cp
	r.records = append(r.records, &cp)
	return true, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*SLARecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memoryRepo) GetByConsultation(_ context.Context, consultationID uuid.UUID) (*SLARecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.ConsultationID == consultationID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) Resolve(_ context.Context, id uuid.UUID, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if rec.Resolved() {
		return ErrAlreadyResolved
	}
	now := time.Now()
	rec.ResolvedAt = &now
	rec.ResolutionNotes = &notes
	return nil
}

func (r *memoryRepo) ListUnresolved(_ context.Context, limit, offset int) ([]*SLARecord, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var unresolved []*SLARecord
	for _, rec := range r.records {
		if !rec.Resolved() {
			cp := *rec
			unresolved = append(unresolved, &cp)
		}
	}
	total := len(unresolved)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return unresolved[offset:end], total, nil
}
