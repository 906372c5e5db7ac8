package handler

import (
	"time"

	"veripay/internal/payment"
)

// IntentResponse is the wire form of a payment intent.
type IntentResponse struct {
	ID          string     `json:"id"`
	PayerDID    string     `json:"payerDid"`
	ReceiverDID string     `json:"receiverDid"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

// FromIntent maps an intent to its response body.
func FromIntent(intent *payment.Intent) IntentResponse {
	return IntentResponse{
		ID:          intent.ID.String(),
		PayerDID:    intent.Payer.String(),
		ReceiverDID: intent.Receiver.String(),
		Amount:      intent.Amount,
		Status:      string(intent.Status),
		CreatedAt:   intent.CreatedAt,
		ConfirmedAt: intent.ConfirmedAt,
	}
}

// ConfirmResponse is the body for POST /payments/{id}/confirm.
type ConfirmResponse struct {
	Intent          IntentResponse `json:"intent"`
	PayerBalance    int64          `json:"payerBalance"`
	ReceiverBalance int64          `json:"receiverBalance"`
}

// FromConfirmResult maps a confirmation to its response body.
func FromConfirmResult(result *payment.ConfirmResult) ConfirmResponse {
	return ConfirmResponse{
		Intent:          FromIntent(result.Intent),
		PayerBalance:    result.PayerBalance,
		ReceiverBalance: result.ReceiverBalance,
	}
}

// BalanceResponse is the body for GET /payments/balance/{did}.
type BalanceResponse struct {
	DID     string `json:"did"`
	Balance int64  `json:"balance"`
}
