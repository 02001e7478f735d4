package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dareyes/restaurant-management/internal/auth"
	"github.com/dareyes/restaurant-management/internal/model"
	"github.com/dareyes/restaurant-management/internal/queue"
	"github.com/dareyes/restaurant-management/internal/repository"
	"github.com/dareyes/restaurant-management/internal/testutil"
)

type sessionFixture struct {
	users    *testutil.FakeUserStore
	tokens   *testutil.FakeTokenStore
	sessions *auth.SessionManager
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	users := testutil.NewFakeUserStore()
	tokens := testutil.NewFakeTokenStore()
	codec := auth.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return &sessionFixture{
		users:    users,
		tokens:   tokens,
		sessions: auth.NewSessionManager(users, tokens, codec),
	}
}

func (f *sessionFixture) register(t *testing.T, email string) (auth.TokenPair, model.User) {
	t.Helper()
	pair, u, err := f.sessions.Register(context.Background(), "Ana", email, "secret123", model.RoleWaiter)
	require.NoError(t, err)
	return pair, u
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newSessionFixture(t)
	f.register(t, "ana@example.com")

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "secret123"},
		{"wrong password", "ana@example.com", "wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.sessions.Login(context.Background(), tc.email, tc.password)
			assert.Equal(t, auth.ErrInvalidCredentials, err)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	f := newSessionFixture(t)
	f.register(t, "ana@example.com")

	pair, u, err := f.sessions.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEmpty(t, u.SessionID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newSessionFixture(t)
	f.register(t, "ana@example.com")

	_, _, err := f.sessions.Register(context.Background(), "Ana Again", "ana@example.com", "secret123", model.RoleWaiter)
	assert.Equal(t, repository.ErrEmailExists, err)
}

func TestRefreshRotates(t *testing.T) {
	f := newSessionFixture(t)
	pair, u := f.register(t, "ana@example.com")

	newPair, refreshed, err := f.sessions.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, refreshed.ID)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)
	// Session survives rotation; only the token changes.
	assert.Equal(t, u.SessionID, refreshed.SessionID)

	// The old token is single use.
	_, _, err = f.sessions.Refresh(context.Background(), pair.RefreshToken)
	assert.Equal(t, auth.ErrRefreshNotFound, err)

	// The rotated token works.
	_, _, err = f.sessions.Refresh(context.Background(), newPair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshUnknownToken(t *testing.T) {
	f := newSessionFixture(t)
	f.register(t, "ana@example.com")

	_, _, err := f.sessions.Refresh(context.Background(), "never-issued")
	assert.Equal(t, auth.ErrRefreshNotFound, err)
}

// A second login overwrites the user's session marker, so a refresh token
// from the first login fails the session match and gets revoked.
func TestSecondLoginSupersedesFirst(t *testing.T) {
	f := newSessionFixture(t)
	first, _ := f.register(t, "ana@example.com")

	_, _, err := f.sessions.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = f.sessions.Refresh(context.Background(), first.RefreshToken)
	assert.Equal(t, auth.ErrSessionMismatch, err)

	rec, ok := f.tokens.Get(auth.HashToken(first.RefreshToken))
	require.True(t, ok)
	assert.NotNil(t, rec.RevokedAt, "stale token should be revoked after the mismatch")
}

// The mismatch branch must report who was targeted: the audit sink receives
// the loaded user and the session the stale token claimed, not zero values.
func TestReuseDetectionAudited(t *testing.T) {
	f := newSessionFixture(t)
	first, u := f.register(t, "ana@example.com")

	var events []queue.AuthEvent
	f.sessions.SetAudit(func(ev queue.AuthEvent) { events = append(events, ev) })

	_, _, err := f.sessions.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = f.sessions.Refresh(context.Background(), first.RefreshToken)
	require.Equal(t, auth.ErrSessionMismatch, err)

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, queue.EventReuseDetected, ev.Type)
	assert.Equal(t, u.ID, ev.UserID)
	assert.Equal(t, "ana@example.com", ev.Email)
	assert.Equal(t, u.SessionID, ev.SessionID, "event should carry the stale session the token claimed")
	assert.False(t, ev.At.IsZero())
}

// racingTokenStore revokes the row an extra time right before the rotation's
// own conditional revoke, standing in for a concurrent refresh of the same
// token that commits first.
type racingTokenStore struct {
	*testutil.FakeTokenStore
	raced bool
}

func (s *racingTokenStore) Revoke(ctx context.Context, hash string) (bool, error) {
	if !s.raced {
		s.raced = true
		if _, err := s.FakeTokenStore.Revoke(ctx, hash); err != nil {
			return false, err
		}
	}
	return s.FakeTokenStore.Revoke(ctx, hash)
}

// The losing side of a double refresh must observe the conditional revoke
// flipping nothing and fail instead of issuing a second pair.
func TestRefreshLosesRotationRace(t *testing.T) {
	users := testutil.NewFakeUserStore()
	store := &racingTokenStore{FakeTokenStore: testutil.NewFakeTokenStore()}
	codec := auth.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	sessions := auth.NewSessionManager(users, store, codec)

	pair, _, err := sessions.Register(context.Background(), "Ana", "ana@example.com", "secret123", model.RoleWaiter)
	require.NoError(t, err)

	_, _, err = sessions.Refresh(context.Background(), pair.RefreshToken)
	assert.Equal(t, auth.ErrRefreshNotFound, err)
}

func TestRefreshExpiredRecord(t *testing.T) {
	f := newSessionFixture(t)
	pair, _ := f.register(t, "ana@example.com")

	hash := auth.HashToken(pair.RefreshToken)
	f.tokens.Expire(hash)

	_, _, err := f.sessions.Refresh(context.Background(), pair.RefreshToken)
	assert.Equal(t, auth.ErrRefreshExpiredDB, err)

	rec, ok := f.tokens.Get(hash)
	require.True(t, ok)
	assert.NotNil(t, rec.RevokedAt)
}

// Expiry is checked before revocation, so a token that is both expired and
// revoked reports the expiry code.
func TestRefreshExpiredBeatsRevoked(t *testing.T) {
	f := newSessionFixture(t)
	pair, u := f.register(t, "ana@example.com")

	hash := auth.HashToken(pair.RefreshToken)
	require.NoError(t, f.sessions.Logout(context.Background(), u.ID, u.SessionID))
	f.tokens.Expire(hash)

	_, _, err := f.sessions.Refresh(context.Background(), pair.RefreshToken)
	assert.Equal(t, auth.ErrRefreshExpiredDB, err)
}

func TestRefreshUserDeleted(t *testing.T) {
	f := newSessionFixture(t)
	pair, u := f.register(t, "ana@example.com")

	f.users.Remove(u.ID)

	_, _, err := f.sessions.Refresh(context.Background(), pair.RefreshToken)
	assert.Equal(t, auth.ErrRefreshUserNotFound, err)

	rec, ok := f.tokens.Get(auth.HashToken(pair.RefreshToken))
	require.True(t, ok)
	assert.NotNil(t, rec.RevokedAt)
}

// Logout only touches the caller's own session; a token minted under an
// older session stays in whatever state it already was.
func TestLogoutScopedToSession(t *testing.T) {
	f := newSessionFixture(t)
	old, u := f.register(t, "ana@example.com")

	pair, loggedIn, err := f.sessions.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.sessions.Logout(context.Background(), u.ID, loggedIn.SessionID))

	current, ok := f.tokens.Get(auth.HashToken(pair.RefreshToken))
	require.True(t, ok)
	assert.NotNil(t, current.RevokedAt)

	stale, ok := f.tokens.Get(auth.HashToken(old.RefreshToken))
	require.True(t, ok)
	assert.Nil(t, stale.RevokedAt, "logout must not revoke other sessions' tokens")

	// Logout twice is harmless.
	assert.NoError(t, f.sessions.Logout(context.Background(), u.ID, loggedIn.SessionID))
}

func TestLogoutAllRevokesEverything(t *testing.T) {
	f := newSessionFixture(t)
	_, u := f.register(t, "ana@example.com")
	_, _, err := f.sessions.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, 2, f.tokens.LiveCount(u.ID))

	require.NoError(t, f.sessions.LogoutAll(context.Background(), u.ID))
	assert.Equal(t, 0, f.tokens.LiveCount(u.ID))
}
