// Package verifier runs the ordered verification gate sequence: challenge
// consume, commitment parse, issuer trust, issuer signature, proof binding,
// proof validity, predicate evaluation, decision token mint.
package verifier

import (
	"context"
	"crypto/ed25519"
	"errors"
	"log/slog"
	"time"

	"veripay/internal/audit"
	"veripay/internal/challenge"
	"veripay/internal/verifier/metrics"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
	"veripay/pkg/requestcontext"
)

// TrustRegistry resolves issuer trust and verification keys.
type TrustRegistry interface {
	IsTrustedIssuer(ctx context.Context, issuer domain.DID) (bool, error)
	KeyFor(ctx context.Context, issuer domain.DID) (ed25519.PublicKey, error)
}

// TokenMinter signs decision tokens for verified holders.
type TokenMinter interface {
	Mint(ctx context.Context, holder domain.DID, verifiedClaims []string) (string, error)
	TTL() time.Duration
}

// VerifyRequest is the input to the gate sequence.
type VerifyRequest struct {
	Holder        domain.DID
	Challenge     string
	CommitmentJWT string
	Proof         string
	Signals       PublicSignals
}

// VerifiedResult is the successful outcome of a gate sequence.
type VerifiedResult struct {
	DecisionToken  string
	AssuranceLevel string
	VerifiedClaims []string
	ExpiresIn      int64
}

// Service orchestrates the verification gates. Every call is self-contained
// given a fresh challenge; no state survives between calls.
type Service struct {
	challenges challenge.Store
	trust      TrustRegistry
	proofs     ProofVerifier
	tokens     TokenMinter
	logger     *slog.Logger
	metrics    *metrics.Metrics
	audit      audit.Sink
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAudit sets the audit sink.
func WithAudit(sink audit.Sink) Option {
	return func(s *Service) {
		s.audit = sink
	}
}

// New creates the verifier service.
func New(challenges challenge.Store, trust TrustRegistry, proofs ProofVerifier, tokens TokenMinter, opts ...Option) *Service {
	s := &Service{
		challenges: challenges,
		trust:      trust,
		proofs:     proofs,
		tokens:     tokens,
		logger:     slog.Default(),
		audit:      audit.NopSink{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MintChallenge issues a fresh single-use challenge.
func (s *Service) MintChallenge(ctx context.Context) (string, error) {
	return s.challenges.Mint(ctx)
}

// ChallengeTTL reports the challenge lifetime for the API response.
func (s *Service) ChallengeTTL() time.Duration {
	return s.challenges.TTL()
}

// Verify runs the gate sequence. The challenge is consumed first and stays
// consumed even when a later gate fails; a failed verification always costs
// the caller a fresh challenge.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifiedResult, error) {
	start := time.Now()

	result, err := s.runGates(ctx, req)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = errorOutcome(err)
		}
		s.metrics.RecordVerification(outcome, time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.WarnContext(ctx, "verification rejected",
			"request_id", requestcontext.RequestID(ctx),
			"holder", req.Holder,
			"error", err,
		)
		s.audit.Emit(ctx, audit.Event{
			Type:    audit.EventVerificationRejected,
			Subject: req.Holder.String(),
			Reason:  errorOutcome(err),
		})
		return nil, err
	}

	s.audit.Emit(ctx, audit.Event{
		Type:    audit.EventVerificationSucceeded,
		Subject: req.Holder.String(),
	})
	s.logger.InfoContext(ctx, "verification succeeded",
		"request_id", requestcontext.RequestID(ctx),
		"holder", req.Holder,
		"verified_claims", result.VerifiedClaims,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (s *Service) runGates(ctx context.Context, req VerifyRequest) (*VerifiedResult, error) {
	// Gate 1: consume the challenge.
	if err := s.challenges.Consume(ctx, req.Challenge); err != nil {
		return nil, err
	}

	// Gate 2: parse the commitment.
	commitment, err := ParseCommitment(req.CommitmentJWT, req.Holder)
	if err != nil {
		return nil, err
	}

	// Gate 3: resolve issuer trust.
	trusted, err := s.trust.IsTrustedIssuer(ctx, commitment.Issuer)
	if err != nil {
		return nil, err
	}
	if !trusted {
		return nil, dErrors.New(dErrors.CodeUntrustedIssuer, "issuer is not trusted")
	}

	// Gate 4: verify the issuer's signature over the commitment.
	key, err := s.trust.KeyFor(ctx, commitment.Issuer)
	if err != nil {
		return nil, err
	}
	if err := commitment.VerifySignature(key); err != nil {
		return nil, err
	}

	// Gate 5: the proof must bind to the consumed challenge.
	if req.Signals.Challenge != req.Challenge {
		return nil, dErrors.New(dErrors.CodeProofChallengeMismatch, "proof does not bind to the presented challenge")
	}

	// Gate 6: proof validity via the external primitive.
	ok, err := s.proofs.VerifyProof(ctx, req.Proof, req.Signals)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeProofInvalid, "proof verification failed")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeProofInvalid, "proof verification failed")
	}

	// Gate 7: predicate evaluation.
	if req.Signals.Predicate != PredicateOver18 {
		return nil, dErrors.New(dErrors.CodePredicateNotSatisfied, "unsupported predicate, expected "+PredicateOver18)
	}
	if !req.Signals.ResultTrue() {
		return nil, dErrors.New(dErrors.CodePredicateNotSatisfied, "predicate result must be true")
	}

	// Gate 8: mint the decision token.
	verifiedClaims := []string{PredicateOver18}
	token, err := s.tokens.Mint(ctx, req.Holder, verifiedClaims)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint decision token")
	}
	if s.metrics != nil {
		s.metrics.TokensMintedTotal.Inc()
	}

	return &VerifiedResult{
		DecisionToken:  token,
		AssuranceLevel: "LOW",
		VerifiedClaims: verifiedClaims,
		ExpiresIn:      int64(s.tokens.TTL().Seconds()),
	}, nil
}

// errorOutcome extracts the stable code for metrics labels.
func errorOutcome(err error) string {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return string(domainErr.Code)
	}
	return string(dErrors.CodeInternal)
}
