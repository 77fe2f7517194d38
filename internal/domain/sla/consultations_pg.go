package sla

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type consultationReaderPG struct{ pool *pgxpool.Pool }

// NewConsultationReaderPG reads the consultation projection the metrics
// aggregation runs over.
func NewConsultationReaderPG(pool *pgxpool.Pool) ConsultationReader {
	return &consultationReaderPG{pool: pool}
}

func (r *consultationReaderPG) List(ctx context.Context, filter MetricsFilter) ([]*Consultation, error) {
	query := `SELECT id, urgency, status, submitted_at, assigned_at, provider_id, response_time_minutes
		FROM consultation`

	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.From != nil {
		conds = append(conds, "submitted_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "submitted_at <= "+arg(*filter.To))
	}
	if filter.Urgency != "" {
		conds = append(conds, "urgency = "+arg(filter.Urgency))
	}
	if filter.ProviderID != nil {
		conds = append(conds, "provider_id = "+arg(*filter.ProviderID))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY submitted_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consults []*Consultation
	for rows.Next() {
		var c Consultation
		if err := rows.Scan(&c.ID, &c.Urgency, &c.Status, &c.SubmittedAt,
			&c.AssignedAt, &c.ProviderID, &c.ResponseTimeMinutes); err != nil {
			return nil, err
		}
		consults = append(consults, &c)
	}
	return consults, rows.Err()
}
