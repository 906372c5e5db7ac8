package handler

import (
	"strings"

	"veripay/internal/verifier"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

// VerifyRequest is the request body for POST /verify.
type VerifyRequest struct {
	HolderDID       string                 `json:"holderDid"`
	Challenge       string                 `json:"challenge"`
	CommitmentJWT   string                 `json:"commitmentJwt"`
	Proof           string                 `json:"proof"`
	PublicSignals   verifier.PublicSignals `json:"publicSignals"`
	RequestedClaims []string               `json:"requestedClaims,omitempty"`

	parsedHolder domain.DID
}

// Normalize trims surrounding whitespace from the string fields.
func (r *VerifyRequest) Normalize() {
	r.HolderDID = strings.TrimSpace(r.HolderDID)
	r.Challenge = strings.TrimSpace(r.Challenge)
	r.CommitmentJWT = strings.TrimSpace(r.CommitmentJWT)
}

// Validate checks the request shape. Gate semantics (challenge validity,
// signature, binding) stay in the service; this only rejects requests the
// service could not meaningfully process.
func (r *VerifyRequest) Validate() error {
	holder, err := domain.ParseDID(r.HolderDID)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, err.Error())
	}
	if r.Challenge == "" {
		return dErrors.New(dErrors.CodeBadRequest, "challenge is required")
	}
	if r.CommitmentJWT == "" {
		return dErrors.New(dErrors.CodeBadRequest, "commitmentJwt is required")
	}
	r.parsedHolder = holder
	return nil
}

// ToDomain converts the request into the service input. Only valid after
// Validate.
func (r *VerifyRequest) ToDomain() verifier.VerifyRequest {
	return verifier.VerifyRequest{
		Holder:        r.parsedHolder,
		Challenge:     r.Challenge,
		CommitmentJWT: r.CommitmentJWT,
		Proof:         r.Proof,
		Signals:       r.PublicSignals,
	}
}

// PresentationSubmission names the definition a vp_token answers.
type PresentationSubmission struct {
	ID           string `json:"id"`
	DefinitionID string `json:"definitionId"`
}

// CallbackRequest is the request body for POST /callback.
type CallbackRequest struct {
	VPToken                string                  `json:"vpToken"`
	PresentationSubmission *PresentationSubmission `json:"presentationSubmission"`
	State                  string                  `json:"state,omitempty"`
}

// Normalize trims surrounding whitespace from the string fields.
func (r *CallbackRequest) Normalize() {
	r.VPToken = strings.TrimSpace(r.VPToken)
	r.State = strings.TrimSpace(r.State)
}

// Validate checks the request shape. The vp_token's own invariants
// (holder, nonce, credentials) stay in the service.
func (r *CallbackRequest) Validate() error {
	if r.VPToken == "" {
		return dErrors.New(dErrors.CodeBadRequest, "vpToken is required")
	}
	if r.PresentationSubmission == nil {
		return dErrors.New(dErrors.CodeBadRequest, "presentationSubmission is required")
	}
	return nil
}

// ToDomain converts the request into the service input. Only valid after
// Validate.
func (r *CallbackRequest) ToDomain() verifier.PresentationRequest {
	return verifier.PresentationRequest{
		VPToken:      r.VPToken,
		DefinitionID: r.PresentationSubmission.DefinitionID,
	}
}
