package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"airportride/internal/db"
	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
	"airportride/internal/gateway"
)

const retryBatchSize = 50

type JobStore interface {
	ListRetryable(ctx context.Context, limit int) ([]db.Reconciliation, error)
	DeleteFinishedBefore(ctx context.Context, statuses []string, cutoff time.Time) (int64, error)
}

// ReconciliationStore settles reconciliations. Claim must hand a row to one caller only;
// the other writes apply to claimed rows and fail with ErrInvalidTransition otherwise.
type ReconciliationStore interface {
	GetByID(ctx context.Context, id int64) (db.Reconciliation, error)
	Claim(ctx context.Context, id int64) (db.Reconciliation, error)
	Release(ctx context.Context, id int64) error
	MarkResolved(ctx context.Context, id int64, reference string) error
	RecordFailure(ctx context.Context, id int64, msg string) (int, error)
	MarkRefunded(ctx context.Context, id int64) error
}

type Refunder interface {
	RefundPaymentIntent(ctx context.Context, paymentIntentID string) error
}

// JobService retries bookings whose payment went through but whose booking call failed.
type JobService struct {
	Repo            JobStore
	Reconciliations ReconciliationStore
	Bookings        BookingGateway
	Refunds         Refunder
	Notifier        Notifier
	MaxAttempts     int
}

func NewJobService(repo JobStore, recs ReconciliationStore, bookings BookingGateway, refunds Refunder, notifier Notifier, maxAttempts int) *JobService {
	return &JobService{
		Repo:            repo,
		Reconciliations: recs,
		Bookings:        bookings,
		Refunds:         refunds,
		Notifier:        notifier,
		MaxAttempts:     maxAttempts,
	}
}

// RetryPendingBookings retries every pending reconciliation once. Rows claimed by another
// worker are skipped.
func (s *JobService) RetryPendingBookings(ctx context.Context) error {
	recs, err := s.Repo.ListRetryable(ctx, retryBatchSize)
	if err != nil {
		return fmt.Errorf("cron job: failed to list pending bookings: %w", err)
	}
	if len(recs) == 0 {
		return nil
	}
	log.Printf("[JOB] retrying %d pending bookings", len(recs))

	for _, rec := range recs {
		_, err := s.retry(ctx, rec.ID)
		switch {
		case errors.Is(err, apperrors.ErrInvalidTransition):
			log.Printf("[JOB] reconciliation id=%d skipped: %v", rec.ID, err)
		case err != nil:
			log.Printf("[JOB] reconciliation id=%d: %v", rec.ID, err)
		}
	}
	return nil
}

// RetryOne retries a single pending reconciliation and returns its new state.
func (s *JobService) RetryOne(ctx context.Context, id int64) (db.Reconciliation, error) {
	if _, err := s.Reconciliations.GetByID(ctx, id); err != nil {
		return db.Reconciliation{}, err
	}
	if _, err := s.retry(ctx, id); err != nil {
		return db.Reconciliation{}, err
	}
	return s.Reconciliations.GetByID(ctx, id)
}

func (s *JobService) retry(ctx context.Context, id int64) (string, error) {
	rec, err := s.Reconciliations.Claim(ctx, id)
	if err != nil {
		return "", err
	}

	var notice entities.BookingNotice
	if err := json.Unmarshal(rec.Notice, &notice); err != nil {
		log.Printf("[JOB] reconciliation id=%d has unreadable notice: %v", rec.ID, err)
	}

	var bookErr error
	var req gateway.BookingRequest
	if err := json.Unmarshal(rec.BookingRequest, &req); err != nil {
		bookErr = fmt.Errorf("decode booking request: %w", err)
	} else {
		booking, err := s.Bookings.CreateBooking(ctx, req, rec.PaymentIntentID)
		if err == nil {
			ref := booking.Reference()
			if err := s.Reconciliations.MarkResolved(ctx, rec.ID, ref); err != nil {
				return "", err
			}
			notice.Reference = ref
			s.Notifier.BookingConfirmed(notice)
			log.Printf("[JOB] reconciliation id=%d resolved reference=%s", rec.ID, ref)
			return db.ReconciliationResolved, nil
		}
		bookErr = err
	}

	attempts, err := s.Reconciliations.RecordFailure(ctx, rec.ID, bookErr.Error())
	if err != nil {
		return "", err
	}
	if attempts < s.MaxAttempts {
		log.Printf("[JOB] reconciliation id=%d attempt %d/%d failed: %v", rec.ID, attempts, s.MaxAttempts, bookErr)
		if err := s.release(ctx, rec.ID); err != nil {
			return "", err
		}
		return db.ReconciliationPending, nil
	}

	if err := s.Refunds.RefundPaymentIntent(ctx, rec.PaymentIntentID); err != nil {
		s.Notifier.OpsAlert(
			"Refund failed for unbooked payment",
			fmt.Sprintf("Payment %s (%.2f %s, %s) could not be booked after %d attempts and the refund failed: %v",
				rec.PaymentIntentID, rec.Amount, rec.Currency, rec.CustomerEmail, attempts, err),
		)
		if relErr := s.release(ctx, rec.ID); relErr != nil {
			log.Printf("[JOB] reconciliation id=%d: %v", rec.ID, relErr)
		}
		return "", err
	}
	if err := s.Reconciliations.MarkRefunded(ctx, rec.ID); err != nil {
		return "", err
	}
	s.Notifier.BookingRefunded(notice)
	s.Notifier.OpsAlert(
		"Booking refunded after failed confirmation",
		fmt.Sprintf("Payment %s (%.2f %s, %s) was refunded after %d failed booking attempts. Last error: %v",
			rec.PaymentIntentID, rec.Amount, rec.Currency, rec.CustomerEmail, attempts, bookErr),
	)
	log.Printf("[JOB] reconciliation id=%d refunded after %d attempts", rec.ID, attempts)
	return db.ReconciliationRefunded, nil
}

// release puts a claimed row back in the queue even when the caller's context is done.
func (s *JobService) release(ctx context.Context, id int64) error {
	return s.Reconciliations.Release(context.WithoutCancel(ctx), id)
}

// PurgeResolved deletes finished reconciliations last updated before the given time.
func (s *JobService) PurgeResolved(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.Repo.DeleteFinishedBefore(ctx, []string{db.ReconciliationResolved, db.ReconciliationRefunded}, before)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to purge reconciliations: %w", err)
	}
	if n > 0 {
		log.Printf("[JOB] purged %d finished reconciliations", n)
	}
	return n, nil
}
