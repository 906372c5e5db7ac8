// Package payment implements the token-gated payment intent state machine
// and the conserved balance ledger.
package payment

import (
	"time"

	"veripay/pkg/domain"
)

// Status is the payment intent lifecycle state. Transitions only advance:
// CREATED → KYC_VERIFIED → CONFIRMED, no regression, no skipping.
type Status string

const (
	StatusCreated     Status = "CREATED"
	StatusKYCVerified Status = "KYC_VERIFIED"
	StatusConfirmed   Status = "CONFIRMED"
)

// Intent is a pending transfer between two DIDs, gated on a decision token.
// Intents are never deleted; confirmed intents remain as an audit trail.
type Intent struct {
	ID       domain.IntentID
	Payer    domain.DID
	Receiver domain.DID
	// Amount in the smallest currency unit, always positive.
	Amount int64
	Status Status
	// DecisionToken is the raw token attached by verify-kyc.
	DecisionToken string
	CreatedAt     time.Time
	ConfirmedAt   *time.Time
}

// Clone returns a copy so stores can hand out intents without sharing
// mutable state.
func (i *Intent) Clone() *Intent {
	clone := *i
	if i.ConfirmedAt != nil {
		at := *i.ConfirmedAt
		clone.ConfirmedAt = &at
	}
	return &clone
}
