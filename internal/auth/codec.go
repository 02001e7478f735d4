package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dareyes/restaurant-management/internal/model"
)

// Codec creates and verifies signed, time-limited tokens.  Access and
// refresh tokens are signed with independent secrets so a leak of one class
// cannot mint the other.  Verification is pure: the codec never touches the
// token ledger.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

var validMethods = jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})

// IssueAccess signs an HS256 access token for the user bound to sessionID.
// Returns the serialized token and its expiry.
func (c *Codec) IssueAccess(u model.User, sessionID string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(c.accessTTL)
	claims := AccessClaims{
		UserID:    u.ID,
		Role:      u.Role.String(),
		SessionID: sessionID,
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefresh signs an HS256 refresh token for the user bound to sessionID.
func (c *Codec) IssueRefresh(u model.User, sessionID string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(c.refreshTTL)
	claims := RefreshClaims{
		UserID:    u.ID,
		SessionID: sessionID,
		TokenType: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccess parses and validates an access token.  Fails with
// ErrAccessExpired on expiry and ErrInvalidToken on any other problem,
// including a refresh token presented on the access path.
func (c *Codec) VerifyAccess(token string) (*AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.accessSecret, nil
	}, validMethods)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrAccessExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid || claims.TokenType != TypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token.  Fails with
// ErrRefreshExpiredJWT on expiry and ErrRefreshSignature otherwise.
func (c *Codec) VerifyRefresh(token string) (*RefreshClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &RefreshClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.refreshSecret, nil
	}, validMethods)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrRefreshExpiredJWT
		}
		return nil, ErrRefreshSignature
	}
	claims, ok := parsed.Claims.(*RefreshClaims)
	if !ok || !parsed.Valid || claims.TokenType != TypeRefresh {
		return nil, ErrRefreshSignature
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest of a signed token.  The ledger
// stores only this hash, so a leaked database cannot be replayed.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
