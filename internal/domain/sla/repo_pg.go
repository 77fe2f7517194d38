package sla

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) SLARecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordCols = `id, consultation_id, provider_id, urgency_level, threshold_minutes,
	actual_response_minutes, violation_minutes, flagged_at, resolved_at, resolution_notes`

func (r *recordRepoPG) scanRecord(row pgx.Row) (*SLARecord, error) {
	var rec SLARecord
	err := row.Scan(&rec.ID, &rec.ConsultationID, &rec.ProviderID, &rec.UrgencyLevel,
		&rec.ThresholdMinutes, &rec.ActualResponseMinutes, &rec.ViolationMinutes,
		&rec.FlaggedAt, &rec.ResolvedAt, &rec.ResolutionNotes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateIfAbsent relies on the partial unique index on (consultation_id)
// WHERE resolved_at IS NULL: the insert and the "already flagged" check are
// a single atomic statement, so concurrent status-change events cannot
// create duplicate unresolved records.
func (r *recordRepoPG) CreateIfAbsent(ctx context.Context, rec *SLARecord) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO sla_record (id, consultation_id, provider_id, urgency_level,
			threshold_minutes, actual_response_minutes, violation_minutes, flagged_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (consultation_id) WHERE resolved_at IS NULL DO NOTHING`,
		rec.ID, rec.ConsultationID, rec.ProviderID, rec.UrgencyLevel,
		rec.ThresholdMinutes, rec.ActualResponseMinutes, rec.ViolationMinutes, rec.FlaggedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SLARecord, error) {
	return r.scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM sla_record WHERE id = $1`, id))
}

func (r *recordRepoPG) GetByConsultation(ctx context.Context, consultationID uuid.UUID) (*SLARecord, error) {
	return r.scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM sla_record WHERE consultation_id = $1 ORDER BY flagged_at DESC LIMIT 1`,
		consultationID))
}

// Resolve is guarded by resolved_at IS NULL so the transition is one-way: a
// second resolution attempt affects zero rows.
func (r *recordRepoPG) Resolve(ctx context.Context, id uuid.UUID, notes string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sla_record SET resolved_at = NOW(), resolution_notes = $2
		WHERE id = $1 AND resolved_at IS NULL`, id, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return ErrAlreadyResolved
	}
	return nil
}

func (r *recordRepoPG) ListUnresolved(ctx context.Context, limit, offset int) ([]*SLARecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sla_record WHERE resolved_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM sla_record
		WHERE resolved_at IS NULL
		ORDER BY flagged_at ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*SLARecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}
