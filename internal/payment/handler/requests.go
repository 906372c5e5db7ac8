package handler

import (
	"strings"

	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

// CreateIntentRequest is the request body for POST /payments/intents.
type CreateIntentRequest struct {
	PayerDID    string `json:"payerDid"`
	ReceiverDID string `json:"receiverDid"`
	Amount      int64  `json:"amount"`

	parsedPayer    domain.DID
	parsedReceiver domain.DID
}

// Normalize trims surrounding whitespace from the DIDs.
func (r *CreateIntentRequest) Normalize() {
	r.PayerDID = strings.TrimSpace(r.PayerDID)
	r.ReceiverDID = strings.TrimSpace(r.ReceiverDID)
}

// Validate parses both DIDs. Amount and distinctness rules live in the
// service so they hold for every caller.
func (r *CreateIntentRequest) Validate() error {
	payer, err := domain.ParseDID(r.PayerDID)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "payerDid: "+err.Error())
	}
	receiver, err := domain.ParseDID(r.ReceiverDID)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "receiverDid: "+err.Error())
	}
	r.parsedPayer = payer
	r.parsedReceiver = receiver
	return nil
}

// ParsedPayer returns the payer DID. Only valid after Validate.
func (r *CreateIntentRequest) ParsedPayer() domain.DID { return r.parsedPayer }

// ParsedReceiver returns the receiver DID. Only valid after Validate.
func (r *CreateIntentRequest) ParsedReceiver() domain.DID { return r.parsedReceiver }

// VerifyKYCRequest is the request body for POST /payments/{id}/verify-kyc.
type VerifyKYCRequest struct {
	DecisionToken string `json:"decisionToken"`
}

// Normalize trims surrounding whitespace from the token.
func (r *VerifyKYCRequest) Normalize() {
	r.DecisionToken = strings.TrimSpace(r.DecisionToken)
}

// Validate requires a token to be present.
func (r *VerifyKYCRequest) Validate() error {
	if r.DecisionToken == "" {
		return dErrors.New(dErrors.CodeBadRequest, "decisionToken is required")
	}
	return nil
}
