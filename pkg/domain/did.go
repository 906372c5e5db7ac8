// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "veripay/pkg/domain-errors"
)

// DID is a decentralized identifier such as "did:example:alice".
// Full DID syntax validation lives at the outer input layer; this type only
// guards against values that cannot possibly be a DID.
type DID string

// IntentID identifies a payment intent.
type IntentID uuid.UUID

// ParseDID validates the minimal shape of a DID at trust boundaries.
func ParseDID(s string) (DID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "DID cannot be empty")
	}
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[1] == "" || parts[2] == "" {
		return "", dErrors.New(dErrors.CodeValidation, "invalid DID format")
	}
	return DID(s), nil
}

func (d DID) String() string { return string(d) }
func (d DID) IsNil() bool    { return d == "" }

// ParseIntentID validates an intent identifier from API input.
func ParseIntentID(s string) (IntentID, error) {
	if s == "" {
		return IntentID(uuid.Nil), dErrors.New(dErrors.CodeValidation, "intent ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return IntentID(uuid.Nil), dErrors.New(dErrors.CodeValidation, "invalid intent ID format")
	}
	return IntentID(id), nil
}

// NewIntentID generates a fresh intent identifier.
func NewIntentID() IntentID { return IntentID(uuid.New()) }

func (id IntentID) String() string { return uuid.UUID(id).String() }
func (id IntentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
