// Package queue defines message payloads exchanged over the message broker.
package queue

// LoginAttemptEvent is published after every decided login attempt.  It
// carries enough context for auditing without querying the store and never
// includes the submitted secret.
type LoginAttemptEvent struct {
	Username   string `json:"username"`
	Outcome    string `json:"outcome"`
	RequestID  string `json:"request_id,omitempty"`
	RemoteIP   string `json:"remote_ip,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
