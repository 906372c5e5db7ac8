// Package challenge issues and consumes the single-use nonces that bind a
// verification session to exactly one proof submission.
//
// A challenge is consumable at most once. Consumption is atomic: when two
// requests race on the same value, exactly one wins and the other receives
// challenge_invalid. Expiry and reuse are deliberately indistinguishable to
// callers; both are terminal and require minting a fresh challenge.
package challenge

import (
	"context"
	"time"

	dErrors "veripay/pkg/domain-errors"
)

// Store mints and consumes verification challenges.
type Store interface {
	// Mint generates a cryptographically random challenge and records it
	// as outstanding for the store's TTL.
	Mint(ctx context.Context) (string, error)

	// Consume atomically checks existence, non-expiry, and non-consumption,
	// then marks the challenge consumed. Any failure returns a domain error
	// with code challenge_invalid; callers must treat it as terminal.
	Consume(ctx context.Context, value string) error

	// TTL reports the challenge lifetime, advertised as expires_in.
	TTL() time.Duration
}

// Sweeper is implemented by stores that need periodic expiry cleanup.
// Redis-backed stores expire keys natively and do not implement it.
type Sweeper interface {
	// ClearExpired drops expired entries and reports how many were removed.
	ClearExpired(ctx context.Context) int
}

// Rejection reasons, used for logs and metrics only. Callers see a uniform
// challenge_invalid code regardless of reason.
const (
	reasonUnknown = "unknown"
	reasonExpired = "expired"
	reasonReused  = "reused"
)

func errInvalid(msg string) error {
	return dErrors.New(dErrors.CodeChallengeInvalid, msg)
}
