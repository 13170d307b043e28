package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestSessionMiddlewareIssuesAndReusesCookie(t *testing.T) {
	var seen []string
	h := SessionMiddleware("s3cret", false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, ok := SessionID(r.Context())
		if !ok {
			t.Error("no session id in context")
		}
		seen = append(seen, sid)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/booking", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}
	if !cookies[0].Expires.IsZero() || cookies[0].MaxAge != 0 {
		t.Fatalf("session cookie must not persist: %+v", cookies[0])
	}

	req := httptest.NewRequest(http.MethodGet, "/api/booking", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("valid cookie was replaced")
	}
	if len(seen) != 2 || seen[0] != seen[1] {
		t.Fatalf("session ids = %v", seen)
	}
}

func TestSessionMiddlewareReplacesForgedCookie(t *testing.T) {
	var sid string
	h := SessionMiddleware("s3cret", false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, _ = SessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sign(t, "other", jwt.MapClaims{"sid": "victim"})})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if sid == "victim" || sid == "" {
		t.Fatalf("sid = %q", sid)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatal("expected a fresh cookie")
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	h := AdminAuthMiddleware("jwt")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, "nope", jwt.MapClaims{"role": "admin", "exp": exp}), http.StatusUnauthorized},
		{"not admin", "Bearer " + sign(t, "jwt", jwt.MapClaims{"role": "user", "exp": exp}), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, "jwt", jwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"admin", "Bearer " + sign(t, "jwt", jwt.MapClaims{"role": "admin", "exp": exp}), http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/reconciliations", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
