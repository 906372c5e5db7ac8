package verifier

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"veripay/internal/challenge"
	"veripay/internal/decisiontoken"
	"veripay/internal/platform/keys"
	"veripay/internal/trust"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

type PresentationSuite struct {
	suite.Suite
	service    *Service
	challenges *challenge.InMemoryStore
	tokens     *decisiontoken.Service
	issuerPriv ed25519.PrivateKey
	holderPriv ed25519.PrivateKey
	ctx        context.Context
}

func TestPresentationSuite(t *testing.T) {
	suite.Run(t, new(PresentationSuite))
}

func (s *PresentationSuite) SetupTest() {
	s.ctx = context.Background()

	issuerPub, issuerPriv, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	s.issuerPriv = issuerPriv

	_, holderPriv, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	s.holderPriv = holderPriv

	registry := trust.NewRegistry(trust.NewStaticOracle(), trust.NewInMemoryCache(time.Hour))
	s.Require().NoError(registry.AddIssuer(s.ctx, domain.DID(issuerDID), issuerPub))

	pair, err := keys.Load("", "verifier-key-1")
	s.Require().NoError(err)
	s.tokens = decisiontoken.New(domain.DID(verifierDID), pair, 5*time.Minute)

	s.challenges = challenge.NewInMemoryStore(5 * time.Minute)
	s.service = New(s.challenges, registry, NewPoCProofVerifier(), s.tokens)
}

func (s *PresentationSuite) authorize() *AuthorizeResult {
	result, err := s.service.Authorize(s.ctx, AuthorizeRequest{
		ResponseType: ResponseTypeVPToken,
		ClientID:     "wallet-1",
	})
	s.Require().NoError(err)
	return result
}

// credential signs a commitment JWS with the given key, starting from a
// complete claim set and applying overrides.
func (s *PresentationSuite) credential(priv ed25519.PrivateKey, overrides map[string]any) string {
	claims := jwt.MapClaims{
		"iss":             issuerDID,
		"sub":             holderDID,
		"jti":             "credential-1",
		"commitment_hash": "a1b2c3",
		"iat":             time.Now().Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	raw, err := token.SignedString(priv)
	s.Require().NoError(err)
	return raw
}

// vpToken signs a vp_token carrying one valid credential unless overridden.
func (s *PresentationSuite) vpToken(nonce string, overrides map[string]any) string {
	claims := jwt.MapClaims{
		"sub":                  holderDID,
		"nonce":                nonce,
		"verifiableCredential": []string{s.credential(s.issuerPriv, nil)},
		"iat":                  time.Now().Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	raw, err := token.SignedString(s.holderPriv)
	s.Require().NoError(err)
	return raw
}

func (s *PresentationSuite) submit(vp string) (*VerifiedResult, error) {
	return s.service.SubmitPresentation(s.ctx, PresentationRequest{
		VPToken:      vp,
		DefinitionID: "passport_verification_definition",
	})
}

func (s *PresentationSuite) TestAuthorize() {
	s.Run("opens a session with a consumable nonce", func() {
		result := s.authorize()

		s.NotEmpty(result.SessionID)
		s.NotEmpty(result.Nonce)
		s.Equal(int64(300), result.ExpiresIn)
		s.NoError(s.challenges.Consume(s.ctx, result.Nonce))
	})

	s.Run("response type must be vp_token", func() {
		_, err := s.service.Authorize(s.ctx, AuthorizeRequest{ResponseType: "code"})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *PresentationSuite) TestSubmitPresentationSucceeds() {
	session := s.authorize()

	result, err := s.submit(s.vpToken(session.Nonce, nil))
	s.Require().NoError(err)

	s.Equal("LOW", result.AssuranceLevel)
	s.Equal([]string{ClaimPassportVerified}, result.VerifiedClaims)

	claims, err := s.tokens.Validate(s.ctx, result.DecisionToken)
	s.Require().NoError(err)
	s.Equal(domain.DID(holderDID), claims.Subject)
	s.True(claims.HasClaim(ClaimPassportVerified))
	// Possession of a passport credential does not prove the age predicate.
	s.False(claims.HasClaim(PredicateOver18))
}

func (s *PresentationSuite) TestSingleCredentialStringIsAccepted() {
	session := s.authorize()
	vp := s.vpToken(session.Nonce, map[string]any{
		"verifiableCredential": s.credential(s.issuerPriv, nil),
	})

	_, err := s.submit(vp)
	s.NoError(err)
}

func (s *PresentationSuite) TestNonceGate() {
	s.Run("unknown nonce rejected", func() {
		_, err := s.submit(s.vpToken("never-minted", nil))
		s.True(dErrors.HasCode(err, dErrors.CodeChallengeInvalid))
	})

	s.Run("nonce cannot be replayed after success", func() {
		session := s.authorize()
		vp := s.vpToken(session.Nonce, nil)

		_, err := s.submit(vp)
		s.Require().NoError(err)

		_, err = s.submit(vp)
		s.True(dErrors.HasCode(err, dErrors.CodeChallengeInvalid))
	})
}

func (s *PresentationSuite) TestCredentialGates() {
	s.Run("untrusted issuer rejected and nonce consumed", func() {
		session := s.authorize()
		_, strangerPriv, err := ed25519.GenerateKey(rand.Reader)
		s.Require().NoError(err)

		vp := s.vpToken(session.Nonce, map[string]any{
			"verifiableCredential": []string{
				s.credential(strangerPriv, map[string]any{"iss": "did:web:stranger.example"}),
			},
		})
		_, err = s.submit(vp)
		s.True(dErrors.HasCode(err, dErrors.CodeUntrustedIssuer))

		// The failed submission still consumed the session nonce.
		s.Error(s.challenges.Consume(s.ctx, session.Nonce))
	})

	s.Run("credential signed by the wrong key rejected", func() {
		session := s.authorize()
		_, wrongPriv, err := ed25519.GenerateKey(rand.Reader)
		s.Require().NoError(err)

		vp := s.vpToken(session.Nonce, map[string]any{
			"verifiableCredential": []string{s.credential(wrongPriv, nil)},
		})
		_, err = s.submit(vp)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidSignature))
	})

	s.Run("credential subject must match the presenting holder", func() {
		session := s.authorize()
		vp := s.vpToken(session.Nonce, map[string]any{
			"verifiableCredential": []string{
				s.credential(s.issuerPriv, map[string]any{"sub": "did:ex:other"}),
			},
		})
		_, err := s.submit(vp)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *PresentationSuite) TestMalformedPresentations() {
	session := s.authorize()

	s.Run("not a JWS", func() {
		_, err := s.submit("not-a-jws")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("missing holder sub", func() {
		_, err := s.submit(s.vpToken(session.Nonce, map[string]any{"sub": nil}))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("missing nonce", func() {
		_, err := s.submit(s.vpToken(session.Nonce, map[string]any{"nonce": nil}))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("no credentials", func() {
		_, err := s.submit(s.vpToken(session.Nonce, map[string]any{"verifiableCredential": []string{}}))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
