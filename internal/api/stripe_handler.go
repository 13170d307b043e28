package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const maxWebhookBytes = int64(65536)

type RefundListener interface {
	PaymentRefunded(ctx context.Context, paymentIntentID string) error
}

type StripeWebhookHandler struct {
	StripeSecret string
	refunds      RefundListener
}

func NewStripeWebhookHandler(stripeSecret string, refunds RefundListener) *StripeWebhookHandler {
	return &StripeWebhookHandler{StripeSecret: stripeSecret, refunds: refunds}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[PAYMENT] webhook: error reading body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.StripeSecret)
	if err != nil {
		log.Printf("[PAYMENT] webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			log.Printf("[PAYMENT] webhook: error parsing charge: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
			log.Printf("[PAYMENT] webhook: refunded charge %s has no payment intent", charge.ID)
			break
		}
		if err := h.refunds.PaymentRefunded(r.Context(), charge.PaymentIntent.ID); err != nil {
			log.Printf("[PAYMENT] webhook: DB error: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			log.Printf("[PAYMENT] webhook: error parsing payment intent: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		reason := ""
		if pi.LastPaymentError != nil {
			reason = pi.LastPaymentError.Msg
		}
		log.Printf("[PAYMENT] intent=%s failed: %s", pi.ID, reason)

	default:
		log.Printf("[PAYMENT] unhandled webhook event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
