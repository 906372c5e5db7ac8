// Package keys manages the verifier's Ed25519 signing key pair.
//
// Decision tokens and issuer commitments are compact JWS signed with EdDSA.
// This package loads the verifier's own key from configuration (or generates
// an ephemeral one for development) and exports the public half as a JWK for
// the /jwks.json endpoint.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Pair holds the verifier's signing key pair and its advertised key ID.
type Pair struct {
	kid     string
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// JWK is the JSON Web Key form of an Ed25519 public key (RFC 8037).
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
}

// JWKSet is the JWKS document served at /jwks.json.
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// Load builds a key pair from a base64url-encoded 32-byte Ed25519 seed.
// An empty seed generates a fresh ephemeral key; tokens minted with it do
// not survive a restart, which is acceptable for development only.
func Load(seed, kid string) (*Pair, error) {
	if seed == "" {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate ed25519 key: %w", err)
		}
		return fromPrivate(priv, kid), nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(seed)
	if err != nil {
		return nil, fmt.Errorf("decode key seed: %w", err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("key seed must be %d bytes, got %d", ed25519.SeedSize, len(raw))
	}
	return fromPrivate(ed25519.NewKeyFromSeed(raw), kid), nil
}

func fromPrivate(priv ed25519.PrivateKey, kid string) *Pair {
	return &Pair{
		kid:     kid,
		private: priv,
		public:  priv.Public().(ed25519.PublicKey),
	}
}

// KeyID returns the advertised key identifier.
func (p *Pair) KeyID() string { return p.kid }

// Private returns the signing key.
func (p *Pair) Private() ed25519.PrivateKey { return p.private }

// Public returns the verification key.
func (p *Pair) Public() ed25519.PublicKey { return p.public }

// PublicJWK exports the public key as a JWK for relying parties.
func (p *Pair) PublicJWK() JWK {
	return JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(p.public),
		Kid: p.kid,
		Alg: "EdDSA",
		Use: "sig",
	}
}

// PublicJWKSet wraps the public key in a single-key JWKS document.
func (p *Pair) PublicJWKSet() JWKSet {
	return JWKSet{Keys: []JWK{p.PublicJWK()}}
}

// ParsePublicJWK decodes an Ed25519 public key from its JWK form.
// Used when registering issuer keys with the trust registry.
func ParsePublicJWK(jwk JWK) (ed25519.PublicKey, error) {
	if jwk.Kty != "OKP" || jwk.Crv != "Ed25519" {
		return nil, fmt.Errorf("unsupported key type %q/%q, want OKP/Ed25519", jwk.Kty, jwk.Crv)
	}
	raw, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, fmt.Errorf("decode jwk x: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("jwk x must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}
