package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/suite"
)

type KeysSuite struct {
	suite.Suite
}

func TestKeysSuite(t *testing.T) {
	suite.Run(t, new(KeysSuite))
}

func (s *KeysSuite) TestLoad() {
	s.Run("empty seed generates ephemeral key", func() {
		pair, err := Load("", "dev-key")
		s.Require().NoError(err)
		s.Equal("dev-key", pair.KeyID())
		s.Len(pair.Public(), ed25519.PublicKeySize)
	})

	s.Run("seed is deterministic", func() {
		seed := base64.RawURLEncoding.EncodeToString(make([]byte, ed25519.SeedSize))
		a, err := Load(seed, "k1")
		s.Require().NoError(err)
		b, err := Load(seed, "k1")
		s.Require().NoError(err)
		s.Equal(a.Public(), b.Public())
	})

	s.Run("rejects wrong-length seed", func() {
		seed := base64.RawURLEncoding.EncodeToString([]byte("short"))
		_, err := Load(seed, "k1")
		s.Error(err)
	})

	s.Run("rejects non-base64 seed", func() {
		_, err := Load("not/base64url!", "k1")
		s.Error(err)
	})
}

func (s *KeysSuite) TestJWKRoundTrip() {
	pair, err := Load("", "verifier-ed25519-1")
	s.Require().NoError(err)

	jwk := pair.PublicJWK()
	s.Equal("OKP", jwk.Kty)
	s.Equal("Ed25519", jwk.Crv)
	s.Equal("EdDSA", jwk.Alg)
	s.Equal("verifier-ed25519-1", jwk.Kid)

	parsed, err := ParsePublicJWK(jwk)
	s.Require().NoError(err)
	s.Equal(pair.Public(), parsed)

	set := pair.PublicJWKSet()
	s.Len(set.Keys, 1)
}

func (s *KeysSuite) TestParsePublicJWKRejectsForeignKeyTypes() {
	_, err := ParsePublicJWK(JWK{Kty: "EC", Crv: "P-256", X: "AA"})
	s.Error(err)
}
