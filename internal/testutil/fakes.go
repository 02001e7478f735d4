// Package testutil provides in-memory fakes for the credential store and
// token ledger plus a wired test server, so auth flows can be exercised
// end to end without MySQL.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dareyes/restaurant-management/internal/model"
	"github.com/dareyes/restaurant-management/internal/repository"
)

// FakeUserStore is an in-memory repository.UserStore.
type FakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
}

func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{users: map[uint64]model.User{}}
}

func (s *FakeUserStore) Create(_ context.Context, name, email, password string, role model.Role) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	// MinCost keeps the suite fast; cost is irrelevant to the logic under test.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, err
	}
	s.nextID++
	u := model.User{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *FakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *FakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *FakeUserStore) UpdateSessionID(_ context.Context, id uint64, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.SessionID = sessionID
	s.users[id] = u
	return nil
}

// Remove deletes a user directly, for user-gone scenarios.
func (s *FakeUserStore) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// FakeTokenStore is an in-memory repository.TokenStore keyed by token hash.
type FakeTokenStore struct {
	mu     sync.Mutex
	nextID uint64
	recs   map[string]model.RefreshToken
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{recs: map[string]model.RefreshToken{}}
}

func (s *FakeTokenStore) Store(_ context.Context, rec model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	rec.CreatedAt = time.Now().UTC()
	s.recs[rec.TokenHash] = rec
	return nil
}

func (s *FakeTokenStore) FindByHash(_ context.Context, hash string) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[hash]
	if !ok {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return rec, nil
}

func (s *FakeTokenStore) Revoke(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[hash]
	if !ok || rec.RevokedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	rec.RevokedAt = &now
	s.recs[hash] = rec
	return true, nil
}

func (s *FakeTokenStore) RevokeSession(_ context.Context, userID uint64, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for h, rec := range s.recs {
		if rec.UserID == userID && rec.SessionID == sessionID && rec.RevokedAt == nil {
			rec.RevokedAt = &now
			s.recs[h] = rec
		}
	}
	return nil
}

func (s *FakeTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for h, rec := range s.recs {
		if rec.UserID == userID && rec.RevokedAt == nil {
			rec.RevokedAt = &now
			s.recs[h] = rec
		}
	}
	return nil
}

func (s *FakeTokenStore) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for h, rec := range s.recs {
		if rec.ExpiresAt.Before(cutoff) {
			delete(s.recs, h)
			n++
		}
	}
	return n, nil
}

// LiveCount reports how many non-revoked records the user has.
func (s *FakeTokenStore) LiveCount(userID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.recs {
		if rec.UserID == userID && rec.RevokedAt == nil {
			n++
		}
	}
	return n
}

// Get returns the record for a hash, for assertions on revocation state.
func (s *FakeTokenStore) Get(hash string) (model.RefreshToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[hash]
	return rec, ok
}

// Expire backdates a record's expiry, for expiry-enforcement tests.
func (s *FakeTokenStore) Expire(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.recs[hash]; ok {
		rec.ExpiresAt = time.Now().UTC().Add(-time.Hour)
		s.recs[hash] = rec
	}
}
