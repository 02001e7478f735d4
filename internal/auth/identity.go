package auth

import "github.com/dareyes/restaurant-management/internal/model"

// Identity is the request-scoped authenticated principal attached by the
// request authenticator and consumed by handlers and the role gate.
type Identity struct {
	UserID    uint64     `json:"id"`
	Role      model.Role `json:"role"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	SessionID string     `json:"-"`
}

// ResultKind tags the outcome of authenticating a request.
type ResultKind int

const (
	// ResultAuthenticated: the access token verified and the session is
	// current; Identity is set.
	ResultAuthenticated ResultKind = iota
	// ResultNeedsRefresh: the access token is valid but expired; the caller
	// should attempt the refresh flow.
	ResultNeedsRefresh
	// ResultRejected: terminal failure; Err is set.
	ResultRejected
)

// Result is the tagged outcome of the per-request authentication procedure.
// Modelling the expired-access case explicitly keeps the refresh recovery a
// deliberate single hop driven by the middleware rather than hidden control
// flow inside verification.
type Result struct {
	Kind     ResultKind
	Identity Identity
	Err      *Error
}

func Authenticated(id Identity) Result { return Result{Kind: ResultAuthenticated, Identity: id} }
func NeedsRefresh() Result             { return Result{Kind: ResultNeedsRefresh} }
func Rejected(err *Error) Result       { return Result{Kind: ResultRejected, Err: err} }
