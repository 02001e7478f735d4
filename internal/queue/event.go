// Package queue publishes auth audit events to RabbitMQ and contains the
// background consumer that mirrors them into logs/auth.log.
package queue

import "time"

// Auth event types.
const (
	EventLogin         = "user.login"
	EventRegister      = "user.register"
	EventLogout        = "user.logout"
	EventLogoutAll     = "user.logout_all"
	EventReuseDetected = "session.reuse_detected"
)

// AuthEvent is the message published to the auth.events queue for every
// notable session transition.  ReuseDetected events mark a refresh token
// presented under a stale or mismatched session, which is the observable
// signature of token theft or reuse after logout.
type AuthEvent struct {
	Type      string    `json:"type"`
	UserID    uint64    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	At        time.Time `json:"at"`
}
