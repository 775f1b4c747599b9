package domain

import "time"

// Audit event kinds recorded by the admission layer.
const (
	AuditLoginSucceeded   = "login_succeeded"
	AuditLoginFailed      = "login_failed"
	AuditRateLimited      = "rate_limited"
	AuditSequenceFallback = "sequence_fallback"
)

// AuditEvent is one security-relevant occurrence in the admission pipeline.
// Subject identifies who or what the event is about (user id, email, or rate
// key); Detail carries a short free-form note.
type AuditEvent struct {
	Kind    string    `json:"kind"`
	Subject string    `json:"subject"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}
