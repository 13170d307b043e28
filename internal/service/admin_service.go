package service

import (
	"context"
	"log"

	"airportride/internal/db"
	"airportride/internal/entities"
)

type ReconciliationLister interface {
	ListReconciliations(ctx context.Context, status string, limit int) ([]db.Reconciliation, int, error)
}

type RefundMarker interface {
	MarkRefundedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error)
}

type AdminService struct {
	adminRepo ReconciliationLister
	stripe    RefundMarker
	jobs      *JobService
}

func NewAdminService(adminRepo ReconciliationLister, stripeRepo RefundMarker, jobs *JobService) *AdminService {
	return &AdminService{adminRepo: adminRepo, stripe: stripeRepo, jobs: jobs}
}

func toResponse(r db.Reconciliation) entities.ReconciliationResponse {
	return entities.ReconciliationResponse{
		ID:               r.ID,
		SessionID:        r.SessionID,
		PaymentIntentID:  r.PaymentIntentID,
		CustomerEmail:    r.CustomerEmail,
		Amount:           r.Amount,
		Currency:         r.Currency,
		Status:           r.Status,
		Attempts:         r.Attempts,
		LastError:        r.LastError,
		BookingReference: r.BookingReference,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (s *AdminService) ListReconciliations(ctx context.Context, status string, limit int) (entities.ReconciliationsList, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	recs, total, err := s.adminRepo.ListReconciliations(ctx, status, limit)
	if err != nil {
		return entities.ReconciliationsList{}, err
	}
	out := entities.ReconciliationsList{Total: total, Limit: limit, Reconciliations: make([]entities.ReconciliationResponse, 0, len(recs))}
	for _, r := range recs {
		out.Reconciliations = append(out.Reconciliations, toResponse(r))
	}
	return out, nil
}

func (s *AdminService) RetryReconciliation(ctx context.Context, id int64) (entities.ReconciliationResponse, error) {
	rec, err := s.jobs.RetryOne(ctx, id)
	if err != nil {
		return entities.ReconciliationResponse{}, err
	}
	return toResponse(rec), nil
}

// PaymentRefunded records a refund reported by the payment processor.
func (s *AdminService) PaymentRefunded(ctx context.Context, paymentIntentID string) error {
	n, err := s.stripe.MarkRefundedByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("[PAYMENT] intent=%s refunded, %d reconciliation(s) closed", paymentIntentID, n)
	}
	return nil
}
