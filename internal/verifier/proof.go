package verifier

import (
	"context"

	dErrors "veripay/pkg/domain-errors"
)

// ProofVerifier validates an opaque proof blob against its public signals.
// The cryptographic proof system is external to this service; a real
// deployment plugs in a zk verifier here.
type ProofVerifier interface {
	VerifyProof(ctx context.Context, proof string, signals PublicSignals) (bool, error)
}

// PoCProofVerifier is the proof-of-concept verifier: it accepts any
// non-empty proof blob. The binding and predicate checks still run in the
// gate sequence, so the protocol shape is exercised end to end.
type PoCProofVerifier struct{}

// NewPoCProofVerifier creates the proof-of-concept proof verifier.
func NewPoCProofVerifier() *PoCProofVerifier {
	return &PoCProofVerifier{}
}

// VerifyProof accepts every non-empty proof.
func (v *PoCProofVerifier) VerifyProof(_ context.Context, proof string, _ PublicSignals) (bool, error) {
	if proof == "" {
		return false, dErrors.New(dErrors.CodeProofInvalid, "missing proof")
	}
	return true, nil
}

var _ ProofVerifier = (*PoCProofVerifier)(nil)
