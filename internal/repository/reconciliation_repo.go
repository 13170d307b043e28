package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"airportride/internal/db"
	apperrors "airportride/internal/errors"
)

const reconciliationColumns = `id, session_id, payment_intent_id, booking_request, notice, customer_email,
	amount, currency, status, attempts, last_error, booking_reference, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReconciliation(s rowScanner) (db.Reconciliation, error) {
	var (
		rec       db.Reconciliation
		lastError sql.NullString
		reference sql.NullString
	)
	err := s.Scan(
		&rec.ID, &rec.SessionID, &rec.PaymentIntentID, &rec.BookingRequest, &rec.Notice, &rec.CustomerEmail,
		&rec.Amount, &rec.Currency, &rec.Status, &rec.Attempts, &lastError, &reference, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return db.Reconciliation{}, err
	}
	rec.LastError = lastError.String
	rec.BookingReference = reference.String
	return rec, nil
}

type ReconciliationRepository struct {
	DB *sql.DB
}

func NewReconciliationRepository(db *sql.DB) *ReconciliationRepository {
	return &ReconciliationRepository{DB: db}
}

// Create stores a paid booking awaiting confirmation. A second row for the same payment
// intent is not created; the existing id is returned.
func (r *ReconciliationRepository) Create(ctx context.Context, rec db.Reconciliation) (int64, error) {
	query := `
	INSERT INTO booking_reconciliations
		(session_id, payment_intent_id, booking_request, notice, customer_email, amount, currency, status, last_error)
	VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
	ON CONFLICT (payment_intent_id) DO UPDATE SET updated_at = NOW()
	RETURNING id`

	var id int64
	err := r.DB.QueryRowContext(ctx, query,
		rec.SessionID,
		rec.PaymentIntentID,
		rec.BookingRequest,
		rec.Notice,
		rec.CustomerEmail,
		rec.Amount,
		rec.Currency,
		rec.LastError,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error creating reconciliation for %s: %w", rec.PaymentIntentID, err)
	}
	return id, nil
}

func (r *ReconciliationRepository) GetByID(ctx context.Context, id int64) (db.Reconciliation, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+reconciliationColumns+` FROM booking_reconciliations WHERE id = $1`, id)
	rec, err := scanReconciliation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Reconciliation{}, apperrors.ErrReconciliationNotFound
	}
	if err != nil {
		return db.Reconciliation{}, fmt.Errorf("error loading reconciliation %d: %w", id, err)
	}
	return rec, nil
}

// claimStaleAfter lets a row held by a crashed worker be picked up again.
const claimStaleAfter = "10 minutes"

// Claim moves a pending reconciliation to retrying and returns it. Only one caller wins;
// the others get ErrInvalidTransition.
func (r *ReconciliationRepository) Claim(ctx context.Context, id int64) (db.Reconciliation, error) {
	query := `
	UPDATE booking_reconciliations
	SET status = 'retrying', updated_at = NOW()
	WHERE id = $1
		AND (status = 'pending' OR (status = 'retrying' AND updated_at < NOW() - INTERVAL '` + claimStaleAfter + `'))
	RETURNING ` + reconciliationColumns
	rec, err := scanReconciliation(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return db.Reconciliation{}, fmt.Errorf("%w: reconciliation %d is not pending", apperrors.ErrInvalidTransition, id)
	}
	if err != nil {
		return db.Reconciliation{}, fmt.Errorf("error claiming reconciliation %d: %w", id, err)
	}
	return rec, nil
}

// Release hands a claimed reconciliation back to the retry queue.
func (r *ReconciliationRepository) Release(ctx context.Context, id int64) error {
	query := `
	UPDATE booking_reconciliations
	SET status = 'pending', updated_at = NOW()
	WHERE id = $1 AND status = 'retrying'`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error releasing reconciliation %d: %w", id, err)
	}
	return requireClaimed(result, id)
}

func (r *ReconciliationRepository) MarkResolved(ctx context.Context, id int64, reference string) error {
	query := `
	UPDATE booking_reconciliations
	SET status = 'resolved', booking_reference = $2, attempts = attempts + 1, updated_at = NOW()
	WHERE id = $1 AND status = 'retrying'`
	result, err := r.DB.ExecContext(ctx, query, id, reference)
	if err != nil {
		return fmt.Errorf("error resolving reconciliation %d: %w", id, err)
	}
	return requireClaimed(result, id)
}

// RecordFailure bumps the attempt counter of a claimed row and returns its new value.
func (r *ReconciliationRepository) RecordFailure(ctx context.Context, id int64, msg string) (int, error) {
	query := `
	UPDATE booking_reconciliations
	SET attempts = attempts + 1, last_error = $2, updated_at = NOW()
	WHERE id = $1 AND status = 'retrying'
	RETURNING attempts`
	var attempts int
	err := r.DB.QueryRowContext(ctx, query, id, msg).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: reconciliation %d is not claimed", apperrors.ErrInvalidTransition, id)
	}
	if err != nil {
		return 0, fmt.Errorf("error recording failure for reconciliation %d: %w", id, err)
	}
	return attempts, nil
}

func (r *ReconciliationRepository) MarkRefunded(ctx context.Context, id int64) error {
	query := `UPDATE booking_reconciliations SET status = 'refunded', updated_at = NOW() WHERE id = $1 AND status = 'retrying'`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error marking reconciliation %d refunded: %w", id, err)
	}
	return requireClaimed(result, id)
}

func requireClaimed(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected for reconciliation %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: reconciliation %d is not claimed", apperrors.ErrInvalidTransition, id)
	}
	return nil
}
