package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"airportride/internal/db"
)

type AdminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

// ListReconciliations returns the newest rows, optionally filtered by status, and the
// total number of matching rows.
func (r *AdminRepository) ListReconciliations(ctx context.Context, status string, limit int) ([]db.Reconciliation, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if status != "" {
		where += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM booking_reconciliations`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting reconciliations: %w", err)
	}

	query := `SELECT ` + reconciliationColumns + ` FROM booking_reconciliations` + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(idx)
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing reconciliations: %w", err)
	}
	defer rows.Close()

	recs := []db.Reconciliation{}
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning reconciliation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
