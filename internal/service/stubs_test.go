package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"airportride/internal/catalog"
	"airportride/internal/db"
	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
	"airportride/internal/gateway"
	"airportride/internal/repository"
)

func newTestStore() *repository.MemoryDraftStore {
	return repository.NewMemoryDraftStore(time.Hour)
}

type stubPricing struct {
	quote *entities.Quote
	err   error
	calls int
}

func (s *stubPricing) Quote(_ context.Context, _ gateway.QuoteRequest) (*entities.Quote, error) {
	s.calls++
	return s.quote, s.err
}

type stubInventory struct {
	cars []entities.Vehicle
	err  error
}

func (s *stubInventory) ListCars(_ context.Context, _, _ string) ([]entities.Vehicle, error) {
	return s.cars, s.err
}

type stubAirports map[string]catalog.Airport

func (s stubAirports) Lookup(placeID string) (catalog.Airport, bool) {
	a, ok := s[placeID]
	return a, ok
}

type stubPayments struct {
	secret string
	err    error
	calls  int
}

func (s *stubPayments) CreatePaymentIntent(_ context.Context, _ float64, _ string) (string, error) {
	s.calls++
	return s.secret, s.err
}

type stubProcessor struct {
	result PaymentResult
	err    error
	calls  int
}

func (s *stubProcessor) ConfirmCardPayment(_ context.Context, _, _ string) (PaymentResult, error) {
	s.calls++
	return s.result, s.err
}

type stubBookings struct {
	mu       sync.Mutex
	conf     gateway.BookingConfirmation
	err      error
	requests []gateway.BookingRequest
	keys     []string
}

func (s *stubBookings) CreateBooking(_ context.Context, r gateway.BookingRequest, key string) (gateway.BookingConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r)
	s.keys = append(s.keys, key)
	return s.conf, s.err
}

type stubRecorder struct {
	recs []db.Reconciliation
	err  error
}

func (s *stubRecorder) Create(_ context.Context, rec db.Reconciliation) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.recs = append(s.recs, rec)
	return int64(len(s.recs)), nil
}

type stubNotifier struct {
	mu        sync.Mutex
	confirmed []entities.BookingNotice
	pending   []entities.BookingNotice
	refunded  []entities.BookingNotice
	alerts    []string
}

func (s *stubNotifier) BookingConfirmed(n entities.BookingNotice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = append(s.confirmed, n)
}

func (s *stubNotifier) BookingPending(n entities.BookingNotice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, n)
}

func (s *stubNotifier) BookingRefunded(n entities.BookingNotice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refunded = append(s.refunded, n)
}

func (s *stubNotifier) OpsAlert(subject, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, subject)
}

type stubRefunder struct {
	mu      sync.Mutex
	err     error
	refunds []string
}

func (s *stubRefunder) RefundPaymentIntent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.refunds = append(s.refunds, id)
	return nil
}

// stubReconciliations is an in-memory ReconciliationStore and JobStore.
type stubReconciliations struct {
	mu   sync.Mutex
	rows map[int64]*db.Reconciliation
}

func newStubReconciliations(recs ...db.Reconciliation) *stubReconciliations {
	s := &stubReconciliations{rows: map[int64]*db.Reconciliation{}}
	for i := range recs {
		r := recs[i]
		s.rows[r.ID] = &r
	}
	return s
}

func (s *stubReconciliations) GetByID(_ context.Context, id int64) (db.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return db.Reconciliation{}, errors.New("not found")
	}
	return *r, nil
}

func (s *stubReconciliations) Claim(_ context.Context, id int64) (db.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok || r.Status != db.ReconciliationPending {
		return db.Reconciliation{}, fmt.Errorf("%w: reconciliation %d is not pending", apperrors.ErrInvalidTransition, id)
	}
	r.Status = db.ReconciliationRetrying
	return *r, nil
}

// claimed returns the row when it is held by a worker.
func (s *stubReconciliations) claimed(id int64) (*db.Reconciliation, error) {
	r, ok := s.rows[id]
	if !ok || r.Status != db.ReconciliationRetrying {
		return nil, fmt.Errorf("%w: reconciliation %d is not claimed", apperrors.ErrInvalidTransition, id)
	}
	return r, nil
}

func (s *stubReconciliations) Release(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.claimed(id)
	if err != nil {
		return err
	}
	r.Status = db.ReconciliationPending
	return nil
}

func (s *stubReconciliations) MarkResolved(_ context.Context, id int64, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.claimed(id)
	if err != nil {
		return err
	}
	r.Status = db.ReconciliationResolved
	r.BookingReference = ref
	r.Attempts++
	return nil
}

func (s *stubReconciliations) RecordFailure(_ context.Context, id int64, msg string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.claimed(id)
	if err != nil {
		return 0, err
	}
	r.Attempts++
	r.LastError = msg
	return r.Attempts, nil
}

func (s *stubReconciliations) MarkRefunded(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.claimed(id)
	if err != nil {
		return err
	}
	r.Status = db.ReconciliationRefunded
	return nil
}

func (s *stubReconciliations) ListRetryable(_ context.Context, _ int) ([]db.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Reconciliation
	for _, r := range s.rows {
		if r.Status == db.ReconciliationPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubReconciliations) DeleteFinishedBefore(_ context.Context, _ []string, _ time.Time) (int64, error) {
	return 0, nil
}
