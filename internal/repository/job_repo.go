package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"airportride/internal/db"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// ListRetryable returns pending reconciliations and abandoned claims, oldest first.
func (r *JobRepository) ListRetryable(ctx context.Context, limit int) ([]db.Reconciliation, error) {
	query := `SELECT ` + reconciliationColumns + `
	FROM booking_reconciliations
	WHERE status = 'pending'
		OR (status = 'retrying' AND updated_at < NOW() - INTERVAL '` + claimStaleAfter + `')
	ORDER BY created_at
	LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying pending reconciliations: %w", err)
	}
	defer rows.Close()

	var recs []db.Reconciliation
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reconciliation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return recs, nil
}

// DeleteFinishedBefore removes reconciliations in one of statuses last touched before cutoff.
func (r *JobRepository) DeleteFinishedBefore(ctx context.Context, statuses []string, cutoff time.Time) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	query := `DELETE FROM booking_reconciliations WHERE status = ANY($1) AND updated_at < $2`
	result, err := r.DB.ExecContext(ctx, query, pq.Array(statuses), cutoff)
	if err != nil {
		return 0, fmt.Errorf("error purging reconciliations: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("[JOB] could not get rows affected: %v", err)
		return 0, nil
	}
	return rowsAffected, nil
}
