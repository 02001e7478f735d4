package model

import "time"

// User mirrors the 'users' table.  SessionID is the single "current session"
// marker: it is overwritten on every successful login, which implicitly
// invalidates any refresh token minted under a prior session.  The empty
// string means the user has never logged in.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email (unique, lowercased)
	PasswordHash string    // users.password_hash (bcrypt)
	Role         Role      // users.role
	SessionID    string    // users.session_id
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models a row of the token ledger ('refresh_tokens').  The
// plain token is never stored; only its SHA-256 hash.  A token is usable
// iff RevokedAt is null, ExpiresAt is in the future and SessionID matches
// the owning user's current session marker.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash (SHA-256 hex)
	SessionID string     // refresh_tokens.session_id
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
