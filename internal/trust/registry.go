package trust

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"veripay/internal/audit"
	"veripay/internal/trust/metrics"
	"veripay/internal/trust/tracer"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

// Policy selects how the registry treats oracle failures.
type Policy string

const (
	// FailClosed treats an unreachable oracle as "untrusted". Default.
	FailClosed Policy = "fail_closed"
	// FailOpen treats an unreachable oracle as "trusted". Weakens the trust
	// guarantee; every fallback is logged and counted.
	FailOpen Policy = "fail_open"
)

const defaultOracleTimeout = 2 * time.Second

// Registry answers trust queries, front-ending the Oracle with a TTL
// cache. Concurrent misses for the same issuer are collapsed into a
// single oracle call.
type Registry struct {
	oracle        Oracle
	cache         Cache
	policy        Policy
	oracleTimeout time.Duration

	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	audit   audit.Sink
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(r *Registry) {
		r.tracer = t
	}
}

// WithAudit sets the audit sink for admin changes.
func WithAudit(sink audit.Sink) Option {
	return func(r *Registry) {
		r.audit = sink
	}
}

// WithPolicy sets the oracle failure policy.
func WithPolicy(p Policy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// WithOracleTimeout bounds how long a single oracle lookup may take.
func WithOracleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.oracleTimeout = d
	}
}

// NewRegistry creates a trust registry over the given oracle and cache.
func NewRegistry(oracle Oracle, cache Cache, opts ...Option) *Registry {
	r := &Registry{
		oracle:        oracle,
		cache:         cache,
		policy:        FailClosed,
		oracleTimeout: defaultOracleTimeout,
		logger:        slog.Default(),
		tracer:        tracer.NewNoop(),
		audit:         audit.NopSink{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsTrustedIssuer reports whether the issuer may be relied on.
//
// Cache hits are answered locally. On a miss the oracle is consulted once
// per issuer regardless of how many requests race, and the verdict is
// cached. Oracle failures never surface as errors; the configured policy
// decides the verdict instead.
func (r *Registry) IsTrustedIssuer(ctx context.Context, issuer domain.DID) (bool, error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanTrustCheck,
		tracer.String(tracer.AttrIssuer, issuer.String()),
	)

	if trusted, ok, err := r.cache.Get(ctx, issuer); err == nil && ok {
		if r.metrics != nil {
			r.metrics.CacheHitsTotal.Inc()
		}
		span.SetAttributes(
			tracer.Bool(tracer.AttrCacheHit, true),
			tracer.Bool(tracer.AttrTrusted, trusted),
		)
		span.End(nil)
		return trusted, nil
	} else if err != nil {
		r.logger.WarnContext(ctx, "trust cache read failed", "issuer", issuer, "error", err)
	}
	if r.metrics != nil {
		r.metrics.CacheMissesTotal.Inc()
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))

	trusted := r.lookup(ctx, issuer)

	span.SetAttributes(tracer.Bool(tracer.AttrTrusted, trusted))
	span.End(nil)
	return trusted, nil
}

// lookup consults the oracle with singleflight dedupe and a bounded
// timeout, applying the failure policy when the oracle cannot answer.
func (r *Registry) lookup(ctx context.Context, issuer domain.DID) bool {
	v, err, _ := r.group.Do(issuer.String(), func() (any, error) {
		octx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.oracleTimeout)
		defer cancel()

		_, span := r.tracer.Start(octx, tracer.SpanOracleCall,
			tracer.String(tracer.AttrIssuer, issuer.String()),
		)
		start := time.Now()
		trusted, err := r.oracle.IsTrusted(octx, issuer)
		elapsed := time.Since(start)
		span.End(err)

		if r.metrics != nil {
			outcome := "error"
			if err == nil {
				outcome = "untrusted"
				if trusted {
					outcome = "trusted"
				}
			}
			r.metrics.RecordOracleLookup(outcome, elapsed.Seconds())
		}
		if err != nil {
			return false, err
		}
		return trusted, nil
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordPolicyFallback(string(r.policy))
		}
		if r.policy == FailOpen {
			r.logger.WarnContext(ctx, "trust oracle unavailable, failing open",
				"issuer", issuer, "error", err)
			return true
		}
		r.logger.WarnContext(ctx, "trust oracle unavailable, failing closed",
			"issuer", issuer, "error", err)
		return false
	}

	trusted := v.(bool)
	if cacheErr := r.cache.Put(ctx, issuer, trusted); cacheErr != nil {
		r.logger.WarnContext(ctx, "trust cache write failed", "issuer", issuer, "error", cacheErr)
	}
	return trusted
}

// KeyFor resolves the issuer's Ed25519 verification key.
func (r *Registry) KeyFor(ctx context.Context, issuer domain.DID) (ed25519.PublicKey, error) {
	return r.oracle.KeyFor(ctx, issuer)
}

// AddIssuer registers an issuer and its verification key, then refreshes
// the cached verdict so the change takes effect immediately.
func (r *Registry) AddIssuer(ctx context.Context, issuer domain.DID, key ed25519.PublicKey) error {
	w, ok := r.oracle.(WritableOracle)
	if !ok {
		return dErrors.New(dErrors.CodeForbidden, "trust oracle is read-only")
	}

	ctx, span := r.tracer.Start(ctx, tracer.SpanAdminChange,
		tracer.String(tracer.AttrIssuer, issuer.String()),
	)
	err := w.Add(ctx, issuer, key)
	if err == nil {
		err = r.cache.Put(ctx, issuer, true)
	}
	span.End(err)
	if err != nil {
		return err
	}

	r.audit.Emit(ctx, audit.Event{
		Type:    audit.EventIssuerAdded,
		Subject: issuer.String(),
	})
	r.logger.InfoContext(ctx, "issuer added to trust registry", "issuer", issuer)
	return nil
}

// RemoveIssuer drops an issuer and invalidates its cached verdict.
func (r *Registry) RemoveIssuer(ctx context.Context, issuer domain.DID) error {
	w, ok := r.oracle.(WritableOracle)
	if !ok {
		return dErrors.New(dErrors.CodeForbidden, "trust oracle is read-only")
	}

	ctx, span := r.tracer.Start(ctx, tracer.SpanAdminChange,
		tracer.String(tracer.AttrIssuer, issuer.String()),
	)
	err := w.Remove(ctx, issuer)
	if err == nil {
		err = r.cache.Invalidate(ctx, issuer)
		if err == nil && r.metrics != nil {
			r.metrics.CacheInvalidatedTotal.Inc()
		}
	}
	span.End(err)
	if err != nil {
		return err
	}

	r.audit.Emit(ctx, audit.Event{
		Type:    audit.EventIssuerRemoved,
		Subject: issuer.String(),
	})
	r.logger.InfoContext(ctx, "issuer removed from trust registry", "issuer", issuer)
	return nil
}

// CacheStats reports cache occupancy for the admin surface.
func (r *Registry) CacheStats(ctx context.Context) (CacheStats, error) {
	return r.cache.Stats(ctx)
}

// ClearExpiredCache drops expired verdicts and returns how many were removed.
func (r *Registry) ClearExpiredCache(ctx context.Context) (int, error) {
	return r.cache.ClearExpired(ctx)
}
