package handler

import (
	"crypto/ed25519"
	"strings"

	"veripay/internal/platform/keys"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

// AddIssuerRequest is the request body for registering a trusted issuer.
// The verification key is supplied in JWK form (OKP/Ed25519).
type AddIssuerRequest struct {
	Issuer       string   `json:"issuer"`
	PublicKeyJWK keys.JWK `json:"public_key_jwk"`

	parsedIssuer domain.DID
	parsedKey    ed25519.PublicKey
}

// Normalize trims surrounding whitespace from the issuer DID.
func (r *AddIssuerRequest) Normalize() {
	r.Issuer = strings.TrimSpace(r.Issuer)
}

// Validate parses the issuer DID and the verification key.
func (r *AddIssuerRequest) Validate() error {
	issuer, err := domain.ParseDID(r.Issuer)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, err.Error())
	}
	key, err := keys.ParsePublicJWK(r.PublicKeyJWK)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, err.Error())
	}
	r.parsedIssuer = issuer
	r.parsedKey = key
	return nil
}

// ParsedIssuer returns the issuer DID. Only valid after Validate.
func (r *AddIssuerRequest) ParsedIssuer() domain.DID { return r.parsedIssuer }

// ParsedKey returns the verification key. Only valid after Validate.
func (r *AddIssuerRequest) ParsedKey() ed25519.PublicKey { return r.parsedKey }
