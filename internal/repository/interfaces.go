package repository

import (
	"context"
	"time"

	"github.com/dareyes/restaurant-management/internal/model"
)

// UserStore is the credential-store surface the auth core depends on.
// Hashing happens inside Create (the store's own write path); the session
// manager never sees a plain password hash being produced.
type UserStore interface {
	Create(ctx context.Context, name, email, password string, role model.Role) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateSessionID(ctx context.Context, id uint64, sessionID string) error
}

// TokenStore is the token-ledger surface the auth core depends on.  Revoke
// is conditional: it reports whether a live (not yet revoked) row was
// actually flipped, which is how a raced double-rotation loses observably.
type TokenStore interface {
	Store(ctx context.Context, rec model.RefreshToken) error
	FindByHash(ctx context.Context, hash string) (model.RefreshToken, error)
	Revoke(ctx context.Context, hash string) (bool, error)
	RevokeSession(ctx context.Context, userID uint64, sessionID string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
