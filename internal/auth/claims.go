package auth

import "github.com/golang-jwt/jwt/v5"

// Token type discriminators.  Embedded in every token so an access token can
// never be replayed on the refresh path and vice versa, even if the secrets
// were ever unified.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	UserID    uint64 `json:"uid"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token.  Role is deliberately
// absent: the role is re-read from the user record at refresh time so a role
// change takes effect on the next rotation.
type RefreshClaims struct {
	UserID    uint64 `json:"uid"`
	SessionID string `json:"sid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}
