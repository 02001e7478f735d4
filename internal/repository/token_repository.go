package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dareyes/restaurant-management/internal/model"
)

// TokenRepo persists the refresh-token ledger (hashes only, never the raw
// token).  Rows are soft-revoked via revoked_at so an audit trail survives
// rotation; the sweep job deletes long-expired rows later.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token row.
func (r *TokenRepo) Store(ctx context.Context, rec model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, session_id, expires_at) VALUES (?,?,?,?)",
		rec.UserID, rec.TokenHash, rec.SessionID, rec.ExpiresAt)
	return err
}

// FindByHash loads a ledger row by token hash.  It does not judge the row;
// revocation/expiry checks belong to the session manager so the failure
// codes stay distinguishable.
func (r *TokenRepo) FindByHash(ctx context.Context, hash string) (model.RefreshToken, error) {
	var (
		rec       model.RefreshToken
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, session_id, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		hash).Scan(&rec.ID, &rec.UserID, &rec.TokenHash, &rec.SessionID, &rec.ExpiresAt, &revokedAt, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		rec.RevokedAt = &t
	}
	return rec, nil
}

// Revoke marks a token as revoked and reports whether this call actually
// flipped a live row.  The WHERE revoked_at IS NULL guard plus the affected
// count make rotation single-winner under concurrent refreshes: the second
// racer sees false.
func (r *TokenRepo) Revoke(ctx context.Context, hash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		hash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeSession revokes all live tokens for one (user, session) pair.
// Idempotent: a second call matches nothing.
func (r *TokenRepo) RevokeSession(ctx context.Context, userID uint64, sessionID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND session_id=? AND revoked_at IS NULL",
		userID, sessionID)
	return err
}

// RevokeAllForUser revokes every live token for the user across sessions.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

// DeleteExpiredBefore drops ledger rows whose expiry is older than cutoff.
// Housekeeping only; correctness never depends on it.
func (r *TokenRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
