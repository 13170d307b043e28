package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
)

func TestMemoryDraftStoreContract(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore(time.Hour)

	if _, err := s.Load(ctx, "sid"); !errors.Is(err, apperrors.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}

	d := entities.BookingDraft{Route: entities.Route{FromPlaceID: "A", ToPlaceID: "B"}, Step: entities.StateCarSelect}
	if err := s.Save(ctx, "sid", d); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.FromPlaceID != "A" || got.Step != entities.StateCarSelect {
		t.Fatalf("unexpected draft %+v", got)
	}

	if _, err := s.Load(ctx, "other"); !errors.Is(err, apperrors.ErrDraftNotFound) {
		t.Fatal("drafts must be scoped per session")
	}

	if err := s.Clear(ctx, "sid"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Load(ctx, "sid"); !errors.Is(err, apperrors.ErrDraftNotFound) {
		t.Fatalf("expected cleared draft, got %v", err)
	}
}

func TestMemoryDraftStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore(time.Minute)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_ = s.Save(ctx, "a", entities.BookingDraft{})
	_ = s.Save(ctx, "b", entities.BookingDraft{})
	now = now.Add(2 * time.Minute)

	if _, err := s.Load(ctx, "a"); !errors.Is(err, apperrors.ErrDraftNotFound) {
		t.Fatalf("expected expired draft, got %v", err)
	}
	if n := s.Sweep(); n != 1 {
		t.Fatalf("sweep removed %d, want 1", n)
	}
}

func TestMemoryDraftStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore(time.Hour)
	d := entities.BookingDraft{}.WithPassengerInfo(entities.PassengerInfo{FullName: "Jo"})
	_ = s.Save(ctx, "sid", d)
	d.User.FullName = "changed"

	got, _ := s.Load(ctx, "sid")
	if got.User.FullName != "Jo" {
		t.Fatalf("store aliases caller memory: %q", got.User.FullName)
	}
}

func TestDraftKey(t *testing.T) {
	if got := draftKey("abc"); got != "bookingData:abc" {
		t.Fatalf("draftKey = %q", got)
	}
}

func TestMemoryDraftStorePaymentClaim(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore(time.Hour)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if ok, _ := s.ClaimPayment(ctx, "sid", time.Minute); !ok {
		t.Fatal("first claim refused")
	}
	if ok, _ := s.ClaimPayment(ctx, "sid", time.Minute); ok {
		t.Fatal("second claim granted while the first is held")
	}
	if ok, _ := s.ClaimPayment(ctx, "other", time.Minute); !ok {
		t.Fatal("claims must be scoped per session")
	}

	_ = s.ReleasePayment(ctx, "sid")
	if ok, _ := s.ClaimPayment(ctx, "sid", time.Minute); !ok {
		t.Fatal("claim refused after release")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := s.ClaimPayment(ctx, "sid", time.Minute); !ok {
		t.Fatal("expired claim still held")
	}
}
