package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"airportride/internal/db"
	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
	"airportride/internal/flow"
	"airportride/internal/gateway"
)

const (
	paymentStatusSucceeded = "succeeded"
	// paymentClaimTTL outlasts intent creation, card confirmation and the booking call.
	paymentClaimTTL = 2 * time.Minute
)

// PaymentDraftStore is a DraftStore that lets one caller at a time work on a session's
// payment step.
type PaymentDraftStore interface {
	DraftStore
	ClaimPayment(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleasePayment(ctx context.Context, sessionID string) error
}

type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount float64, currency string) (string, error)
}

type BookingGateway interface {
	CreateBooking(ctx context.Context, r gateway.BookingRequest, idempotencyKey string) (gateway.BookingConfirmation, error)
}

// PaymentResult is the processor's verdict on a confirmed payment intent.
type PaymentResult struct {
	IntentID string
	Status   string
}

// CardProcessor confirms a payment intent with the customer's card.
type CardProcessor interface {
	ConfirmCardPayment(ctx context.Context, clientSecret, paymentMethodID string) (PaymentResult, error)
}

type ReconciliationRecorder interface {
	Create(ctx context.Context, rec db.Reconciliation) (int64, error)
}

// Notifier tells customers and operators about finished bookings. Implementations must
// not block.
type Notifier interface {
	BookingConfirmed(n entities.BookingNotice)
	BookingPending(n entities.BookingNotice)
	BookingRefunded(n entities.BookingNotice)
	OpsAlert(subject, body string)
}

type PaymentService struct {
	drafts          PaymentDraftStore
	payments        PaymentGateway
	processor       CardProcessor
	bookings        BookingGateway
	reconciliations ReconciliationRecorder
	notifier        Notifier
	currency        string
	clearDelay      time.Duration
	afterFunc       func(time.Duration, func())
}

func NewPaymentService(
	drafts PaymentDraftStore,
	payments PaymentGateway,
	processor CardProcessor,
	bookings BookingGateway,
	reconciliations ReconciliationRecorder,
	notifier Notifier,
	currency string,
	clearDelay time.Duration,
) *PaymentService {
	return &PaymentService{
		drafts:          drafts,
		payments:        payments,
		processor:       processor,
		bookings:        bookings,
		reconciliations: reconciliations,
		notifier:        notifier,
		currency:        currency,
		clearDelay:      clearDelay,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// BookingRequestFromDraft builds the booking API body for a paid draft.
func BookingRequestFromDraft(d entities.BookingDraft) gateway.BookingRequest {
	r := gateway.BookingRequest{
		PickupLocation:  d.FromLocation,
		DropoffLocation: d.ToLocation,
		IsReturnTrip:    d.TripType == entities.TripReturn,
	}
	if d.User != nil {
		r.CustomerName = d.User.FullName
		r.CustomerEmail = d.User.Email
		r.CustomerPhone = d.User.Mobile
	}
	if d.SelectedCar != nil {
		r.CarID = d.SelectedCar.ID
	}
	if d.Pricing != nil {
		r.DistanceMiles = d.Pricing.DistanceMiles
	}
	return r
}

// Pay charges the locked fare and books the trip. Until the processor reports success the
// draft is left exactly as it was, so the customer can retry from the payment step.
// Only one Pay per session runs at a time; a concurrent call gets ErrPaymentInProgress.
func (s *PaymentService) Pay(ctx context.Context, sessionID string, form entities.PaymentForm) (entities.Confirmation, error) {
	if err := flow.ValidatePayment(form).Err(); err != nil {
		return entities.Confirmation{}, err
	}

	claimed, err := s.drafts.ClaimPayment(ctx, sessionID, paymentClaimTTL)
	if err != nil {
		return entities.Confirmation{}, err
	}
	if !claimed {
		log.Printf("[PAYMENT] session=%s payment already in progress", sessionID)
		return entities.Confirmation{}, apperrors.ErrPaymentInProgress
	}
	keepClaim := false
	defer func() {
		if keepClaim {
			return
		}
		if err := s.drafts.ReleasePayment(context.WithoutCancel(ctx), sessionID); err != nil {
			log.Printf("[PAYMENT] session=%s release payment claim: %v", sessionID, err)
		}
	}()

	d, err := loadDraft(ctx, s.drafts, sessionID)
	if err != nil {
		return entities.Confirmation{}, err
	}
	if err := requireState(entities.StatePayment, d); err != nil {
		return entities.Confirmation{}, err
	}
	amount, _ := d.LockedFare()
	if amount <= 0 {
		return entities.Confirmation{}, &apperrors.PaymentError{Message: "This trip has no fare to pay. Please choose your vehicle again."}
	}

	secret, err := s.payments.CreatePaymentIntent(ctx, amount, s.currency)
	if err != nil {
		log.Printf("[PAYMENT] session=%s create intent failed: %v", sessionID, err)
		return entities.Confirmation{}, &apperrors.PaymentError{Message: "Payment failed. Please try again.", Err: err}
	}

	result, err := s.processor.ConfirmCardPayment(ctx, secret, form.PaymentMethodID)
	if err != nil {
		log.Printf("[PAYMENT] session=%s confirm failed: %v", sessionID, err)
		return entities.Confirmation{}, err
	}
	if result.Status != paymentStatusSucceeded {
		log.Printf("[PAYMENT] session=%s intent=%s status=%s", sessionID, result.IntentID, result.Status)
		return entities.Confirmation{}, &apperrors.PaymentError{
			Message: "Your payment was not completed. Please try again.",
			Err:     fmt.Errorf("%w: status %s", apperrors.ErrPaymentNotCompleted, result.Status),
		}
	}
	log.Printf("[PAYMENT] session=%s intent=%s succeeded amount=%.2f %s", sessionID, result.IntentID, amount, s.currency)

	cf := s.finalize(ctx, sessionID, *d, result.IntentID, amount)

	completed, err := advance(d.WithConfirmation(cf), entities.StatePayment)
	if err != nil {
		// the card is charged: keep the claim so the step cannot be paid again
		keepClaim = true
		log.Printf("[PAYMENT] session=%s intent=%s: %v", sessionID, cf.PaymentIntentID, err)
		return cf, nil
	}
	if err := s.drafts.Save(context.WithoutCancel(ctx), sessionID, completed); err != nil {
		keepClaim = true
		log.Printf("[PAYMENT] session=%s could not save completed draft, payment step stays claimed: %v", sessionID, err)
		return cf, nil
	}
	s.scheduleClear(sessionID, cf.PaymentIntentID)
	return cf, nil
}

// finalize books a paid trip. A booking API failure is parked for reconciliation; the
// customer has paid, so the flow still completes.
func (s *PaymentService) finalize(ctx context.Context, sessionID string, d entities.BookingDraft, intentID string, amount float64) entities.Confirmation {
	req := BookingRequestFromDraft(d)
	notice := entities.NoticeFromDraft(d, amount, s.currency)
	cf := entities.Confirmation{
		PaymentIntentID: intentID,
		Amount:          amount,
		Currency:        s.currency,
	}

	booking, err := s.bookings.CreateBooking(ctx, req, intentID)
	if err == nil {
		cf.Status = entities.ConfirmationConfirmed
		cf.Reference = booking.Reference()
		cf.Message = "Your booking is confirmed."
		notice.Reference = cf.Reference
		s.notifier.BookingConfirmed(notice)
		log.Printf("[PAYMENT] session=%s intent=%s booked reference=%s", sessionID, intentID, cf.Reference)
		return cf
	}

	log.Printf("[PAYMENT] session=%s intent=%s booking failed after payment: %v", sessionID, intentID, err)
	cf.Status = entities.ConfirmationPending
	cf.Message = "Your payment was received. We will email your booking confirmation shortly."

	if id, recErr := s.recordReconciliation(ctx, sessionID, intentID, amount, req, notice, err); recErr != nil {
		log.Printf("[PAYMENT] ALERT session=%s intent=%s paid but not booked and not recorded: %v", sessionID, intentID, recErr)
		s.notifier.OpsAlert(
			"Paid booking could not be recorded",
			fmt.Sprintf("Payment %s (%.2f %s) for %s succeeded but the booking failed (%v) and could not be queued for retry (%v).",
				intentID, amount, s.currency, notice.CustomerEmail, err, recErr),
		)
	} else {
		log.Printf("[PAYMENT] session=%s intent=%s queued for reconciliation id=%d", sessionID, intentID, id)
	}
	s.notifier.BookingPending(notice)
	return cf
}

func (s *PaymentService) recordReconciliation(ctx context.Context, sessionID, intentID string, amount float64, req gateway.BookingRequest, notice entities.BookingNotice, cause error) (int64, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}
	noticeJSON, err := json.Marshal(notice)
	if err != nil {
		return 0, err
	}
	// the request context may already be gone; the row must still be written
	ctx = context.WithoutCancel(ctx)
	return s.reconciliations.Create(ctx, db.Reconciliation{
		SessionID:       sessionID,
		PaymentIntentID: intentID,
		BookingRequest:  body,
		Notice:          noticeJSON,
		CustomerEmail:   notice.CustomerEmail,
		Amount:          amount,
		Currency:        s.currency,
		LastError:       cause.Error(),
	})
}

// scheduleClear drops the completed draft after the confirmation has been shown, unless
// the session has started another booking meanwhile.
func (s *PaymentService) scheduleClear(sessionID, intentID string) {
	s.afterFunc(s.clearDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cur, err := s.drafts.Load(ctx, sessionID)
		if err != nil {
			return
		}
		if cur.Step != entities.StateCompleted || cur.Confirmation == nil || cur.Confirmation.PaymentIntentID != intentID {
			return
		}
		if err := s.drafts.Clear(ctx, sessionID); err != nil {
			log.Printf("[FLOW] session=%s clear after completion failed: %v", sessionID, err)
		}
	})
}
