// Package trust decides whether a credential issuer may be relied on.
//
// The Registry front-ends a trust Oracle with a TTL cache so hot issuers
// are answered locally. Oracle failures are resolved by policy; the
// default is fail-closed, treating an unreachable oracle as "not trusted".
package trust

import (
	"context"
	"crypto/ed25519"
	"sync"

	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

// Oracle answers trust queries for issuer DIDs and resolves their
// verification keys.
type Oracle interface {
	// IsTrusted reports whether the issuer is on the trust list.
	IsTrusted(ctx context.Context, issuer domain.DID) (bool, error)

	// KeyFor returns the issuer's registered Ed25519 verification key.
	// Returns a CodeUntrustedIssuer error when no key is registered.
	KeyFor(ctx context.Context, issuer domain.DID) (ed25519.PublicKey, error)
}

// WritableOracle additionally supports administrative registration.
type WritableOracle interface {
	Oracle

	Add(ctx context.Context, issuer domain.DID, key ed25519.PublicKey) error
	Remove(ctx context.Context, issuer domain.DID) error
}

// StaticOracle keeps the trust list in memory. It backs the default
// deployment, where issuers are registered through the admin surface.
type StaticOracle struct {
	mu      sync.RWMutex
	issuers map[domain.DID]ed25519.PublicKey
}

// NewStaticOracle creates an empty in-memory trust oracle.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{
		issuers: make(map[domain.DID]ed25519.PublicKey),
	}
}

// IsTrusted reports whether the issuer has a registered key.
func (o *StaticOracle) IsTrusted(_ context.Context, issuer domain.DID) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.issuers[issuer]
	return ok, nil
}

// KeyFor returns the issuer's registered verification key.
func (o *StaticOracle) KeyFor(_ context.Context, issuer domain.DID) (ed25519.PublicKey, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	key, ok := o.issuers[issuer]
	if !ok {
		return nil, dErrors.New(dErrors.CodeUntrustedIssuer, "no verification key registered for issuer")
	}
	return key, nil
}

// Add registers an issuer with its verification key.
func (o *StaticOracle) Add(_ context.Context, issuer domain.DID, key ed25519.PublicKey) error {
	if len(key) != ed25519.PublicKeySize {
		return dErrors.New(dErrors.CodeValidation, "verification key must be a 32-byte Ed25519 public key")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.issuers[issuer] = key
	return nil
}

// Remove drops an issuer from the trust list.
func (o *StaticOracle) Remove(_ context.Context, issuer domain.DID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.issuers, issuer)
	return nil
}

var _ WritableOracle = (*StaticOracle)(nil)
