package verifier

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"veripay/internal/audit"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
	"veripay/pkg/requestcontext"
)

// OpenID4VP presentation flow: a wallet fetches an authorization session,
// presents a vp_token bound to the session nonce, and receives a decision
// token for the credentials it carried. The nonce is a regular challenge,
// so sessions share the single-use and expiry guarantees of /verify.

// ResponseTypeVPToken is the only supported authorization response type.
const ResponseTypeVPToken = "vp_token"

// ClaimPassportVerified is minted for presentations whose credentials pass
// issuer trust and signature checks. Presentations carry no predicate
// proof, so this claim does not satisfy the over_18 payment gate.
const ClaimPassportVerified = "passport_verified"

// AuthorizeRequest opens a presentation session.
type AuthorizeRequest struct {
	ResponseType string
	ClientID     string
	State        string
}

// AuthorizeResult identifies the opened session. The nonce must come back
// inside the vp_token.
type AuthorizeResult struct {
	SessionID string
	Nonce     string
	ExpiresIn int64
}

// PresentationRequest is a wallet's submission against an open session.
type PresentationRequest struct {
	VPToken      string
	DefinitionID string
}

// Presentation is the decoded vp_token content.
type Presentation struct {
	Holder      domain.DID
	Nonce       string
	Credentials []string
}

// Authorize validates the request and opens a session keyed by a fresh
// challenge nonce.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	if req.ResponseType != ResponseTypeVPToken {
		return nil, dErrors.New(dErrors.CodeBadRequest, "response_type must be "+ResponseTypeVPToken)
	}

	nonce, err := s.challenges.Mint(ctx)
	if err != nil {
		return nil, err
	}

	result := &AuthorizeResult{
		SessionID: uuid.NewString(),
		Nonce:     nonce,
		ExpiresIn: int64(s.challenges.TTL().Seconds()),
	}
	s.logger.InfoContext(ctx, "presentation session opened",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", result.SessionID,
		"client_id", req.ClientID,
	)
	return result, nil
}

// SubmitPresentation consumes the session nonce and verifies every
// credential in the vp_token through the issuer trust and signature gates,
// then mints a decision token for the presenting holder. Like Verify, a
// failed submission still consumes the nonce.
func (s *Service) SubmitPresentation(ctx context.Context, req PresentationRequest) (*VerifiedResult, error) {
	start := time.Now()

	holder, result, err := s.runPresentationGates(ctx, req)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = errorOutcome(err)
		}
		s.metrics.RecordVerification(outcome, time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.WarnContext(ctx, "presentation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"holder", holder,
			"error", err,
		)
		s.audit.Emit(ctx, audit.Event{
			Type:    audit.EventVerificationRejected,
			Subject: holder.String(),
			Reason:  errorOutcome(err),
		})
		return nil, err
	}

	s.audit.Emit(ctx, audit.Event{
		Type:    audit.EventVerificationSucceeded,
		Subject: holder.String(),
	})
	s.logger.InfoContext(ctx, "presentation verified",
		"request_id", requestcontext.RequestID(ctx),
		"holder", holder,
		"verified_claims", result.VerifiedClaims,
	)
	return result, nil
}

func (s *Service) runPresentationGates(ctx context.Context, req PresentationRequest) (domain.DID, *VerifiedResult, error) {
	vp, err := ParsePresentation(req.VPToken)
	if err != nil {
		return "", nil, err
	}

	if err := s.challenges.Consume(ctx, vp.Nonce); err != nil {
		return vp.Holder, nil, err
	}

	for _, raw := range vp.Credentials {
		commitment, err := ParseCommitment(raw, vp.Holder)
		if err != nil {
			return vp.Holder, nil, err
		}

		trusted, err := s.trust.IsTrustedIssuer(ctx, commitment.Issuer)
		if err != nil {
			return vp.Holder, nil, err
		}
		if !trusted {
			return vp.Holder, nil, dErrors.New(dErrors.CodeUntrustedIssuer, "issuer is not trusted")
		}

		key, err := s.trust.KeyFor(ctx, commitment.Issuer)
		if err != nil {
			return vp.Holder, nil, err
		}
		if err := commitment.VerifySignature(key); err != nil {
			return vp.Holder, nil, err
		}
	}

	verifiedClaims := []string{ClaimPassportVerified}
	token, err := s.tokens.Mint(ctx, vp.Holder, verifiedClaims)
	if err != nil {
		return vp.Holder, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint decision token")
	}
	if s.metrics != nil {
		s.metrics.TokensMintedTotal.Inc()
	}

	return vp.Holder, &VerifiedResult{
		DecisionToken:  token,
		AssuranceLevel: "LOW",
		VerifiedClaims: verifiedClaims,
		ExpiresIn:      int64(s.tokens.TTL().Seconds()),
	}, nil
}

// ParsePresentation decodes a vp_token's claims and checks the structural
// invariants: a holder subject, the session nonce, and at least one
// embedded credential. The holder's own signature is not resolved against
// a DID document; session binding comes from the nonce.
func ParsePresentation(raw string) (*Presentation, error) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed vp_token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "malformed vp_token claims")
	}

	subject, _ := claims["sub"].(string)
	holder, err := domain.ParseDID(subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "vp_token missing holder sub")
	}

	nonce, _ := claims["nonce"].(string)
	if nonce == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "vp_token missing nonce")
	}

	credentials := credentialList(claims["verifiableCredential"])
	if len(credentials) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "vp_token carries no credentials")
	}

	return &Presentation{
		Holder:      holder,
		Nonce:       nonce,
		Credentials: credentials,
	}, nil
}

// credentialList accepts both a single credential string and a JSON array.
func credentialList(v any) []string {
	switch vc := v.(type) {
	case string:
		if vc == "" {
			return nil
		}
		return []string{vc}
	case []any:
		credentials := make([]string, 0, len(vc))
		for _, item := range vc {
			if raw, ok := item.(string); ok && raw != "" {
				credentials = append(credentials, raw)
			}
		}
		return credentials
	default:
		return nil
	}
}
