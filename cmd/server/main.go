package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"veripay/internal/audit"
	"veripay/internal/challenge"
	challengemetrics "veripay/internal/challenge/metrics"
	"veripay/internal/decisiontoken"
	"veripay/internal/payment"
	paymenthandler "veripay/internal/payment/handler"
	paymentmetrics "veripay/internal/payment/metrics"
	paymentstore "veripay/internal/payment/store"
	"veripay/internal/platform/config"
	"veripay/internal/platform/httpserver"
	"veripay/internal/platform/keys"
	"veripay/internal/platform/logger"
	platformredis "veripay/internal/platform/redis"
	"veripay/internal/trust"
	trusthandler "veripay/internal/trust/handler"
	trustmetrics "veripay/internal/trust/metrics"
	trusttracer "veripay/internal/trust/tracer"
	httptransport "veripay/internal/transport/http"
	"veripay/internal/verifier"
	verifierhandler "veripay/internal/verifier/handler"
	verifiermetrics "veripay/internal/verifier/metrics"
	"veripay/pkg/domain"
)

const challengeSweepInterval = time.Minute

// main wires the dependency graph and owns the process lifecycle. All
// business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifierDID := domain.DID(cfg.VerifierDID)
	pair, err := keys.Load(cfg.SigningKeySeed, cfg.SigningKeyID)
	if err != nil {
		return err
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	healthChecks := map[string]httptransport.HealthCheck{}
	if redisClient != nil {
		healthChecks["redis"] = redisClient.Health
	}

	// Audit pipeline. A broken broker downgrades to log-only events
	// rather than refusing to start.
	emitter, closeAudit, err := buildAudit(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	go func() { _ = emitter.Run(ctx) }()

	// Challenge store.
	challengeMetrics := challengemetrics.New()
	var challenges challenge.Store
	if redisClient != nil {
		challenges = challenge.NewRedisStore(redisClient.Client, cfg.ChallengeTTL,
			challenge.WithRedisMetrics(challengeMetrics))
	} else {
		memStore := challenge.NewInMemoryStore(cfg.ChallengeTTL,
			challenge.WithMetrics(challengeMetrics))
		go memStore.Sweep(ctx, challengeSweepInterval)
		challenges = memStore
	}

	// Trust registry.
	var trustCache trust.Cache
	if redisClient != nil {
		trustCache = trust.NewRedisCache(redisClient.Client, cfg.TrustCacheTTL)
	} else {
		trustCache = trust.NewInMemoryCache(cfg.TrustCacheTTL)
	}
	registry := trust.NewRegistry(trust.NewStaticOracle(), trustCache,
		trust.WithLogger(log),
		trust.WithMetrics(trustmetrics.New()),
		trust.WithTracer(trusttracer.NewOTel()),
		trust.WithPolicy(trust.Policy(cfg.TrustPolicy)),
		trust.WithOracleTimeout(cfg.OracleTimeout),
		trust.WithAudit(emitter),
	)

	tokens := decisiontoken.New(verifierDID, pair, cfg.DecisionTokenTTL,
		decisiontoken.WithLogger(log))

	verifierService := verifier.New(challenges, registry, verifier.NewPoCProofVerifier(), tokens,
		verifier.WithLogger(log),
		verifier.WithMetrics(verifiermetrics.New()),
		verifier.WithAudit(emitter),
	)

	// Intent persistence.
	var intents payment.Store
	if cfg.Postgres.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		pgStore := paymentstore.NewPostgresStore(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
		intents = pgStore
		healthChecks["postgres"] = pool.Ping
	} else {
		intents = paymentstore.NewInMemoryStore()
	}

	paymentOpts := []payment.Option{
		payment.WithLogger(log),
		payment.WithMetrics(paymentmetrics.New()),
		payment.WithAudit(emitter),
	}
	if cfg.SeedDemoBalances {
		paymentOpts = append(paymentOpts, payment.WithDemoBalances())
	}
	paymentService := payment.New(intents, payment.NewLedger(), tokens, paymentOpts...)

	router := httptransport.NewRouter(httptransport.Deps{
		Verifier:     verifierhandler.New(verifierService, tokens, verifierDID, log),
		Payments:     paymenthandler.New(paymentService, log),
		Trust:        trusthandler.New(registry, cfg.AdminKeyHash, log),
		HealthChecks: healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server",
			"addr", cfg.Addr,
			"verifier_did", cfg.VerifierDID,
			"redis", redisClient != nil,
			"postgres", cfg.Postgres.DSN != "",
			"kafka", cfg.Kafka.Brokers != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}

// buildAudit assembles the emitter from the configured sinks. The returned
// cleanup closes the publisher and the optional store handle.
func buildAudit(ctx context.Context, cfg config.Server, log *slog.Logger) (*audit.Emitter, func(), error) {
	var publisher audit.Publisher
	if cfg.Kafka.Brokers != "" {
		kp, err := audit.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			log.Warn("kafka unavailable, audit events will be logged only", "error", err)
			publisher = audit.NewLogPublisher(log)
		} else {
			publisher = kp
		}
	} else {
		publisher = audit.NewLogPublisher(log)
	}

	opts := []audit.EmitterOption{
		audit.WithBreaker(audit.NewBreaker(5, time.Minute)),
	}
	cleanup := func() { _ = publisher.Close() }

	if cfg.Postgres.DSN != "" {
		db, err := audit.OpenPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			_ = publisher.Close()
			return nil, nil, err
		}
		store := audit.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			_ = publisher.Close()
			return nil, nil, err
		}
		opts = append(opts, audit.WithStore(store))
		cleanup = func() {
			_ = publisher.Close()
			_ = db.Close()
		}
	}

	return audit.NewEmitter(publisher, log, opts...), cleanup, nil
}
