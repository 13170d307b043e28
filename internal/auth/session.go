package auth

import (
	"context"
	"log"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionCookie = "booking_session"

type sessionKey struct{}

// SessionMiddleware gives every visitor a signed session cookie. The cookie only carries
// the session id; the booking draft itself lives in the draft store. A missing or
// tampered cookie starts a new session.
func SessionMiddleware(secret string, secure bool) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if claims, err := parseToken(c.Value, key); err == nil {
					sid, _ = claims["sid"].(string)
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": sid}).SignedString(key)
				if err != nil {
					log.Printf("session: sign cookie: %v", err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				// no Expires: the cookie ends with the browser session
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    signed,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
		})
	}
}

func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sid)
}

// SessionID returns the session id set by SessionMiddleware.
func SessionID(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionKey{}).(string)
	return sid, ok && sid != ""
}
