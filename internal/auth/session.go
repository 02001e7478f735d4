package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dareyes/restaurant-management/internal/model"
	"github.com/dareyes/restaurant-management/internal/queue"
	"github.com/dareyes/restaurant-management/internal/repository"
)

// TokenPair is a freshly minted access/refresh token pair.
type TokenPair struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// SessionManager orchestrates login, registration, refresh rotation and
// logout.  It is the only component that mutates the token ledger and the
// user's current-session marker.
type SessionManager struct {
	users  repository.UserStore
	tokens repository.TokenStore
	codec  *Codec
	audit  func(queue.AuthEvent)
}

func NewSessionManager(users repository.UserStore, tokens repository.TokenStore, codec *Codec) *SessionManager {
	return &SessionManager{users: users, tokens: tokens, codec: codec}
}

// SetAudit installs the audit event sink.  The manager emits events the
// handlers cannot attribute themselves, in particular reuse detection,
// which fires deep inside Refresh where the offending user is known.  A nil
// sink (the default) disables emission.
func (m *SessionManager) SetAudit(fn func(queue.AuthEvent)) {
	m.audit = fn
}

func (m *SessionManager) notifyReuse(u model.User, sessionID string) {
	if m.audit == nil {
		return
	}
	m.audit(queue.AuthEvent{
		Type:      queue.EventReuseDetected,
		UserID:    u.ID,
		Email:     u.Email,
		SessionID: sessionID,
		At:        time.Now().UTC(),
	})
}

// Login verifies credentials and establishes a new session.  The user's
// session marker is overwritten, which is the point at which any refresh
// token from a previous login stops being usable.  On a wrong email or
// wrong password the error is the same ErrInvalidCredentials; the caller
// cannot tell which field was wrong.
func (m *SessionManager) Login(ctx context.Context, email, password string) (TokenPair, model.User, error) {
	u, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return TokenPair{}, model.User{}, ErrInvalidCredentials
		}
		return TokenPair{}, model.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return TokenPair{}, model.User{}, ErrInvalidCredentials
	}
	pair, err := m.startSession(ctx, &u)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	return pair, u, nil
}

// Register creates the user (the store's write path hashes the password) and
// immediately establishes a session, so registration behaves like login.
// Returns repository.ErrEmailExists unchanged for the handler to map to 400.
func (m *SessionManager) Register(ctx context.Context, name, email, password string, role model.Role) (TokenPair, model.User, error) {
	u, err := m.users.Create(ctx, name, email, password, role)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	pair, err := m.startSession(ctx, &u)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	return pair, u, nil
}

// startSession mints a new session id, persists it on the user, issues a
// token pair bound to it and records the refresh token hash in the ledger.
func (m *SessionManager) startSession(ctx context.Context, u *model.User) (TokenPair, error) {
	sessionID := uuid.NewString()
	if err := m.users.UpdateSessionID(ctx, u.ID, sessionID); err != nil {
		return TokenPair{}, err
	}
	u.SessionID = sessionID
	return m.issue(ctx, *u, sessionID)
}

func (m *SessionManager) issue(ctx context.Context, u model.User, sessionID string) (TokenPair, error) {
	access, accessExp, err := m.codec.IssueAccess(u, sessionID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := m.codec.IssueRefresh(u, sessionID)
	if err != nil {
		return TokenPair{}, err
	}
	rec := model.RefreshToken{
		UserID:    u.ID,
		TokenHash: HashToken(refresh),
		SessionID: sessionID,
		ExpiresAt: refreshExp,
	}
	if err := m.tokens.Store(ctx, rec); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:    access,
		AccessExpires:  accessExp,
		RefreshToken:   refresh,
		RefreshExpires: refreshExp,
	}, nil
}

// Refresh exchanges a presented refresh token for a new pair, rotating the
// old one.  The sequence is: ledger lookup, cryptographic verification, user
// load, triple session match, then a conditional revoke that exactly one of
// two racing refreshes can win.  Every failure past the lookup revokes the
// presented record so the token cannot be retried.
func (m *SessionManager) Refresh(ctx context.Context, rawToken string) (TokenPair, model.User, error) {
	hash := HashToken(rawToken)

	rec, err := m.tokens.FindByHash(ctx, hash)
	if err != nil {
		if err == repository.ErrNotFound {
			return TokenPair{}, model.User{}, ErrRefreshNotFound
		}
		return TokenPair{}, model.User{}, err
	}
	// Expiry wins over everything else, revoked or not.
	if time.Now().UTC().After(rec.ExpiresAt) {
		_, _ = m.tokens.Revoke(ctx, hash)
		return TokenPair{}, model.User{}, ErrRefreshExpiredDB
	}
	if rec.RevokedAt != nil {
		return TokenPair{}, model.User{}, ErrRefreshNotFound
	}

	claims, err := m.codec.VerifyRefresh(rawToken)
	if err != nil {
		_, _ = m.tokens.Revoke(ctx, hash)
		return TokenPair{}, model.User{}, err
	}

	u, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		_, _ = m.tokens.Revoke(ctx, hash)
		if err == repository.ErrNotFound {
			return TokenPair{}, model.User{}, ErrRefreshUserNotFound
		}
		return TokenPair{}, model.User{}, err
	}

	// Hijack / reuse-after-logout detector: the ledger row, the token's own
	// claims and the user's current marker must all agree.
	if rec.UserID != claims.UserID || rec.SessionID != claims.SessionID || u.SessionID != claims.SessionID {
		_, _ = m.tokens.Revoke(ctx, hash)
		m.notifyReuse(u, claims.SessionID)
		return TokenPair{}, model.User{}, ErrSessionMismatch
	}

	// Rotate.  The conditional revoke is the atomic step: if another refresh
	// of the same token got here first, ok is false and this call loses.
	ok, err := m.tokens.Revoke(ctx, hash)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	if !ok {
		return TokenPair{}, model.User{}, ErrRefreshNotFound
	}

	pair, err := m.issue(ctx, u, claims.SessionID)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	return pair, u, nil
}

// Logout revokes every live refresh token of the caller's own session.
// Calling it twice is a no-op the second time.
func (m *SessionManager) Logout(ctx context.Context, userID uint64, sessionID string) error {
	return m.tokens.RevokeSession(ctx, userID, sessionID)
}

// LogoutAll revokes every live refresh token for the user across all
// sessions.  The session marker itself is left alone: with every refresh
// token gone, only a not-yet-expired access token remains briefly usable.
func (m *SessionManager) LogoutAll(ctx context.Context, userID uint64) error {
	return m.tokens.RevokeAllForUser(ctx, userID)
}
