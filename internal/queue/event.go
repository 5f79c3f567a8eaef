// Package queue defines the auth audit events exchanged over the message
// broker, their publisher and the consumer that writes them to disk.
package queue

import "time"

// Event types published by the auth service.
const (
	EventRegistered  = "user.registered"
	EventLoggedIn    = "user.logged_in"
	EventLoginFailed = "user.login_failed"
	EventLoggedOut   = "user.logged_out"
)

// AuthEvent is published after an auth operation completes. It carries
// enough information for an audit trail without querying the store and
// never contains credentials or tokens.
type AuthEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	IP         string    `json:"ip,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
