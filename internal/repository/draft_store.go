package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"airportride/internal/entities"
	apperrors "airportride/internal/errors"

	"github.com/redis/go-redis/v9"
)

// draftKey is the storage key for a session's draft.
func draftKey(sessionID string) string {
	return "bookingData:" + sessionID
}

// paymentClaimKey marks a session whose payment step is being processed.
func paymentClaimKey(sessionID string) string {
	return draftKey(sessionID) + ":paying"
}

// RedisDraftStore keeps one JSON draft per session with a sliding TTL.
type RedisDraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDraftStore(rdb *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{rdb: rdb, ttl: ttl}
}

func (s *RedisDraftStore) Load(ctx context.Context, sessionID string) (entities.BookingDraft, error) {
	raw, err := s.rdb.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.BookingDraft{}, apperrors.ErrDraftNotFound
	}
	if err != nil {
		return entities.BookingDraft{}, fmt.Errorf("load draft: %w", err)
	}
	var d entities.BookingDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return entities.BookingDraft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, sessionID string, d entities.BookingDraft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.rdb.Set(ctx, draftKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// ClaimPayment takes the payment step of a session for one caller. It reports false when
// another caller holds it. The claim lapses after ttl.
func (s *RedisDraftStore) ClaimPayment(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, paymentClaimKey(sessionID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim payment: %w", err)
	}
	return ok, nil
}

func (s *RedisDraftStore) ReleasePayment(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, paymentClaimKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("release payment: %w", err)
	}
	return nil
}

type memoryEntry struct {
	draft   entities.BookingDraft
	expires time.Time
}

// MemoryDraftStore is an in-process draft store for development and tests.
type MemoryDraftStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
	claims  map[string]time.Time
}

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
		claims:  make(map[string]time.Time),
	}
}

func (s *MemoryDraftStore) Load(_ context.Context, sessionID string) (entities.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return entities.BookingDraft{}, apperrors.ErrDraftNotFound
	}
	if s.ttl > 0 && s.now().After(e.expires) {
		delete(s.entries, sessionID)
		return entities.BookingDraft{}, apperrors.ErrDraftNotFound
	}
	return e.draft.Clone(), nil
}

func (s *MemoryDraftStore) Save(_ context.Context, sessionID string, d entities.BookingDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memoryEntry{draft: d.Clone(), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryDraftStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryDraftStore) ClaimPayment(_ context.Context, sessionID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if until, held := s.claims[sessionID]; held && now.Before(until) {
		return false, nil
	}
	s.claims[sessionID] = now.Add(ttl)
	return true, nil
}

func (s *MemoryDraftStore) ReleasePayment(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, sessionID)
	return nil
}

// Sweep drops expired drafts and returns how many were removed.
func (s *MemoryDraftStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	for k, until := range s.claims {
		if !now.Before(until) {
			delete(s.claims, k)
		}
	}
	n := 0
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}
