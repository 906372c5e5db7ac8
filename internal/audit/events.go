// Package audit captures verification outcomes and payment transitions
// as structured events. Emission is fail-open: a broken sink never
// blocks or fails the operation that produced the event.
package audit

import "time"

// EventType classifies an audit event.
type EventType string

const (
	EventVerificationSucceeded EventType = "verification.succeeded"
	EventVerificationRejected  EventType = "verification.rejected"
	EventIntentCreated         EventType = "payment.intent_created"
	EventKYCAttached           EventType = "payment.kyc_attached"
	EventIntentConfirmed       EventType = "payment.confirmed"
	EventPaymentRejected       EventType = "payment.rejected"
	EventIssuerAdded           EventType = "trust.issuer_added"
	EventIssuerRemoved         EventType = "trust.issuer_removed"
)

// Event is the transport-agnostic record shared by every sink.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject,omitempty"`
	IntentID  string    `json:"intentId,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}
