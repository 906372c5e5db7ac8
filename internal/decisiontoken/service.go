// Package decisiontoken mints and validates the verifier's decision tokens.
//
// A decision token is a compact JWS (EdDSA only) asserting which predicates
// a holder has proven. Minting and validation are symmetric: any relying
// party holding the verifier's public key can validate a token without
// calling the verifier.
package decisiontoken

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"veripay/internal/platform/keys"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
	"veripay/pkg/requestcontext"
)

// AssuranceLow tags single-predicate proofs. Reserved for future
// multi-factor elevation.
const AssuranceLow = "LOW"

// Claims is the validated content of a decision token.
type Claims struct {
	Issuer         string
	Subject        domain.DID
	VerifiedClaims []string
	AssuranceLevel string
	TokenID        string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// HasClaim reports whether the named claim was verified.
func (c *Claims) HasClaim(name string) bool {
	for _, claim := range c.VerifiedClaims {
		if claim == name {
			return true
		}
	}
	return false
}

// Service signs and validates decision tokens with the verifier's key pair.
type Service struct {
	verifierDID domain.DID
	pair        *keys.Pair
	ttl         time.Duration
	logger      *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a decision token service issuing tokens as verifierDID.
func New(verifierDID domain.DID, pair *keys.Pair, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		verifierDID: verifierDID,
		pair:        pair,
		ttl:         ttl,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL reports the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Mint signs a decision token for the holder carrying the verified claims.
func (s *Service) Mint(ctx context.Context, holder domain.DID, verifiedClaims []string) (string, error) {
	now := requestcontext.Now(ctx)

	claims := jwt.MapClaims{
		"iss":             s.verifierDID.String(),
		"sub":             holder.String(),
		"iat":             now.Unix(),
		"exp":             now.Add(s.ttl).Unix(),
		"jti":             uuid.NewString(),
		"verified_at":     now.UTC().Format(time.RFC3339),
		"assurance_level": AssuranceLow,
		"verified_claims": verifiedClaims,
		"expires_in":      int64(s.ttl.Seconds()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = s.pair.KeyID()

	signed, err := token.SignedString(s.pair.Private())
	if err != nil {
		return "", fmt.Errorf("sign decision token: %w", err)
	}

	s.logger.InfoContext(ctx, "decision token minted",
		"request_id", requestcontext.RequestID(ctx),
		"subject", holder,
		"verified_claims", verifiedClaims,
	)
	return signed, nil
}

// Validate parses a decision token, verifies its signature, and checks in
// order: issuer equals the verifier's own DID, subject present, expiry
// present and in the future, verified_claims present as a list. Every
// failure surfaces as invalid_decision_token with a sub-reason.
func (s *Service) Validate(ctx context.Context, raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.Parse(raw, func(*jwt.Token) (any, error) {
		return s.pair.Public(), nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidDecisionToken, "decision token signature verification failed")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, invalidToken("unexpected claims format")
	}

	issuer, _ := mapClaims["iss"].(string)
	if issuer != s.verifierDID.String() {
		return nil, invalidToken("issuer is not this verifier")
	}

	subject, _ := mapClaims["sub"].(string)
	sub, err := domain.ParseDID(subject)
	if err != nil {
		return nil, invalidToken("missing or malformed subject")
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, invalidToken("missing expiry")
	}
	if !requestcontext.Now(ctx).Before(exp.Time) {
		return nil, invalidToken("token expired")
	}

	verifiedClaims, err := claimList(mapClaims["verified_claims"])
	if err != nil {
		return nil, invalidToken("verified_claims must be a list")
	}

	claims := &Claims{
		Issuer:         issuer,
		Subject:        sub,
		VerifiedClaims: verifiedClaims,
		ExpiresAt:      exp.Time,
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if jti, ok := mapClaims["jti"].(string); ok {
		claims.TokenID = jti
	}
	if level, ok := mapClaims["assurance_level"].(string); ok {
		claims.AssuranceLevel = level
	}
	return claims, nil
}

// PublicJWKSet exposes the verifier's public key as a JWKS document for
// relying parties.
func (s *Service) PublicJWKSet() keys.JWKSet {
	return s.pair.PublicJWKSet()
}

func invalidToken(reason string) error {
	return dErrors.New(dErrors.CodeInvalidDecisionToken, "invalid decision token: "+reason)
}

// claimList coerces the decoded verified_claims value into a string slice.
// JSON arrays decode as []any, so each element is checked individually.
func claimList(v any) ([]string, error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("verified_claims is %T, want list", v)
	}
	claims := make([]string, 0, len(raw))
	for _, item := range raw {
		name, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("verified_claims element is %T, want string", item)
		}
		claims = append(claims, name)
	}
	return claims, nil
}
