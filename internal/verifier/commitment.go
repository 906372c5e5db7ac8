package verifier

import (
	"crypto/ed25519"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

// Commitment is the issuer-signed assertion binding a holder to a hidden
// credential value. Parsing and signature verification are split: the
// issuer must be read from the claims before its key can be resolved, so
// the signature is checked in a second step with the trusted key.
type Commitment struct {
	Issuer         domain.DID
	Subject        domain.DID
	TokenID        string
	CommitmentHash string
	IssuedAt       time.Time

	raw string
}

// ParseCommitment decodes the commitment JWS claims without verifying the
// signature and checks structural invariants: iss, sub, jti, and
// commitment_hash present, and sub equal to the presenting holder.
func ParseCommitment(raw string, holder domain.DID) (*Commitment, error) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed commitment")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "malformed commitment claims")
	}

	issuerStr, _ := claims["iss"].(string)
	issuer, err := domain.ParseDID(issuerStr)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "commitment missing iss")
	}

	subjectStr, _ := claims["sub"].(string)
	subject, err := domain.ParseDID(subjectStr)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "commitment missing sub")
	}
	if subject != holder {
		return nil, dErrors.New(dErrors.CodeBadRequest, "commitment sub must match holder DID")
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "commitment missing jti")
	}

	hash, _ := claims["commitment_hash"].(string)
	if hash == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "commitment missing commitment_hash")
	}

	c := &Commitment{
		Issuer:         issuer,
		Subject:        subject,
		TokenID:        jti,
		CommitmentHash: hash,
		raw:            raw,
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c, nil
}

// VerifySignature checks the commitment's EdDSA signature under the
// issuer's registered key.
func (c *Commitment) VerifySignature(key ed25519.PublicKey) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.Parse(c.raw, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidSignature, "invalid issuer signature over commitment")
	}
	return nil
}
