package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "airportride/internal/errors"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

// StripeService confirms and refunds payment intents. stripe.Key must be set by the caller.
type StripeService struct{}

func NewStripeService() *StripeService {
	return &StripeService{}
}

// IntentIDFromClientSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromClientSecret(secret string) (string, error) {
	id, _, ok := strings.Cut(secret, "_secret_")
	if !ok || !strings.HasPrefix(id, "pi_") {
		return "", fmt.Errorf("malformed client secret")
	}
	return id, nil
}

func (s *StripeService) ConfirmCardPayment(ctx context.Context, clientSecret, paymentMethodID string) (PaymentResult, error) {
	intentID, err := IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return PaymentResult{}, &apperrors.PaymentError{Message: "Payment failed. Please try again.", Err: err}
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	params.Context = ctx

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return PaymentResult{}, cardError(err)
	}
	return PaymentResult{IntentID: pi.ID, Status: string(pi.Status)}, nil
}

// cardError keeps the processor's customer-facing message, e.g. "Your card was declined."
func cardError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return &apperrors.PaymentError{Message: se.Msg, Err: err}
	}
	return &apperrors.PaymentError{Message: "Payment failed. Please try again.", Err: err}
}

func (s *StripeService) RefundPaymentIntent(ctx context.Context, paymentIntentID string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("refund %s: %w", paymentIntentID, err)
	}
	return nil
}
