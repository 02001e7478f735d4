package auth

import "net/http"

// Error is a coded authentication failure.  Code is the stable wire-level
// identifier clients branch on; Status is the HTTP status the boundary maps
// it to.  All auth flows resolve to one of the values below or wrap an
// unexpected failure in ErrServer.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

var (
	// login / register
	ErrInvalidCredentials = &Error{"INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid credentials"}

	// bearer header parsing
	ErrMissingToken       = &Error{"MISSING_TOKEN", http.StatusUnauthorized, "authentication token not provided"}
	ErrInvalidTokenFormat = &Error{"INVALID_TOKEN_FORMAT", http.StatusUnauthorized, "invalid token format"}
	ErrEmptyToken         = &Error{"EMPTY_TOKEN", http.StatusUnauthorized, "authentication token is empty"}

	// access token verification
	ErrInvalidToken = &Error{"INVALID_TOKEN", http.StatusUnauthorized, "invalid authentication token"}
	// ErrAccessExpired is internal: it triggers the refresh sub-flow and is
	// never surfaced to clients directly.
	ErrAccessExpired = &Error{"ACCESS_TOKEN_EXPIRED", http.StatusUnauthorized, "access token expired"}

	// refresh flow
	ErrNoRefreshToken      = &Error{"NO_REFRESH_TOKEN", http.StatusUnauthorized, "refresh token not provided"}
	ErrRefreshNotFound     = &Error{"INVALID_REFRESH_TOKEN_DB", http.StatusUnauthorized, "refresh token invalid or revoked"}
	ErrRefreshExpiredDB    = &Error{"REFRESH_TOKEN_EXPIRED_DB", http.StatusUnauthorized, "refresh token has expired"}
	ErrRefreshExpiredJWT   = &Error{"REFRESH_TOKEN_EXPIRED_JWT", http.StatusUnauthorized, "refresh token has expired"}
	ErrRefreshSignature    = &Error{"INVALID_REFRESH_TOKEN_JWT", http.StatusUnauthorized, "refresh token signature or format invalid"}
	ErrSessionMismatch     = &Error{"REFRESH_TOKEN_ID_MISMATCH", http.StatusForbidden, "refresh token does not match the current session"}
	ErrRefreshUserNotFound = &Error{"USER_NOT_FOUND", http.StatusUnauthorized, "user for this token no longer exists"}

	// authenticated-request checks
	ErrUserNotFound    = &Error{"USER_NOT_FOUND", http.StatusUnauthorized, "user for this token no longer exists"}
	ErrInvalidSession  = &Error{"INVALID_SESSION", http.StatusUnauthorized, "session is invalid or was superseded"}
	ErrUnauthenticated = &Error{"UNAUTHENTICATED", http.StatusUnauthorized, "request is not authenticated"}

	ErrServer = &Error{"SERVER_ERROR", http.StatusInternalServerError, "internal server error"}
)

// AsError returns err as a coded *Error, wrapping anything unexpected in
// ErrServer so handlers always have a code and status to emit.
func AsError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return ErrServer
}
