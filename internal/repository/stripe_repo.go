package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type StripeRepository struct {
	DB *sql.DB
}

func NewStripeRepository(db *sql.DB) *StripeRepository {
	return &StripeRepository{DB: db}
}

// MarkRefundedByPaymentIntent flags every unfinished reconciliation of a refunded payment.
func (r *StripeRepository) MarkRefundedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error) {
	query := `
		UPDATE booking_reconciliations
		SET status = 'refunded', updated_at = NOW()
		WHERE payment_intent_id = $1 AND status <> 'refunded'`

	result, err := r.DB.ExecContext(ctx, query, paymentIntentID)
	if err != nil {
		return 0, fmt.Errorf("error marking payment %s refunded: %w", paymentIntentID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
