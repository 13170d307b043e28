package api

import (
	"context"
	"net/http"

	"airportride/internal/auth"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/justinas/alice"
)

type requestIDKey struct{}

type RouterConfig struct {
	SessionSecret string
	JWTSecret     string
	SecureCookies bool
}

// RequestID tags each request with an X-Request-Id, reusing the caller's when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func NewRouter(cfg RouterConfig, booking *BookingHandler, admin *AdminHandler, adminAuth *AdminAuthHandler, webhook *StripeWebhookHandler) *mux.Router {
	base := alice.New(RequestID)
	session := base.Append(auth.SessionMiddleware(cfg.SessionSecret, cfg.SecureCookies))
	protected := base.Append(auth.AdminAuthMiddleware(cfg.JWTSecret))

	r := mux.NewRouter()

	// Public endpoints
	r.Handle("/api/config", base.ThenFunc(booking.Config)).Methods("GET")
	r.Handle("/api/airports", base.ThenFunc(booking.Airports)).Methods("GET")
	r.Handle("/api/stripe/webhook", base.ThenFunc(webhook.HandleWebhook)).Methods("POST")

	// Booking flow, scoped to the session cookie
	r.Handle("/api/booking", session.ThenFunc(booking.GetBooking)).Methods("GET")
	r.Handle("/api/booking", session.ThenFunc(booking.Restart)).Methods("DELETE")
	r.Handle("/api/booking/steps/{state}", session.ThenFunc(booking.EnterStep)).Methods("GET")
	r.Handle("/api/booking/route", session.ThenFunc(booking.SubmitRoute)).Methods("POST")
	r.Handle("/api/booking/cars", session.ThenFunc(booking.ListCars)).Methods("GET")
	r.Handle("/api/booking/car", session.ThenFunc(booking.SelectCar)).Methods("POST")
	r.Handle("/api/booking/passenger", session.ThenFunc(booking.SubmitPassenger)).Methods("POST")
	r.Handle("/api/booking/payment", session.ThenFunc(booking.Pay)).Methods("POST")
	r.Handle("/api/booking/back", session.ThenFunc(booking.Back)).Methods("POST")

	// Admin endpoints
	r.Handle("/admin/login", base.ThenFunc(adminAuth.Login)).Methods("POST")
	r.Handle("/admin/users", protected.ThenFunc(adminAuth.CreateUserAdmin)).Methods("POST")
	r.Handle("/admin/reconciliations", protected.ThenFunc(admin.ListReconciliations)).Methods("GET")
	r.Handle("/admin/reconciliations/{id}/retry", protected.ThenFunc(admin.RetryReconciliation)).Methods("POST")

	return r
}
