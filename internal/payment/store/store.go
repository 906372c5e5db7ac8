// Package store persists payment intents.
package store

import (
	"context"

	"veripay/internal/payment"
	"veripay/pkg/domain"
)

// Store is the payment intent persistence interface.
type Store interface {
	// Create inserts a new intent. Fails with conflict if the ID exists.
	Create(ctx context.Context, intent *payment.Intent) error

	// Get returns the intent or an intent_not_found error.
	Get(ctx context.Context, id domain.IntentID) (*payment.Intent, error)

	// Update overwrites the stored intent.
	Update(ctx context.Context, intent *payment.Intent) error
}
