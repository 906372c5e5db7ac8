package config

import (
	"os"
	"strconv"
	"time"
)

// TrustPolicy selects how the trust registry treats oracle failures.
type TrustPolicy string

const (
	// TrustFailClosed treats an unreachable oracle as "untrusted". Default.
	TrustFailClosed TrustPolicy = "fail_closed"
	// TrustFailOpen proceeds without oracle confirmation. Weakens the trust
	// guarantee; only enable when product requirements demand availability
	// over strictness.
	TrustFailOpen TrustPolicy = "fail_open"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	VerifierDID string

	// SigningKeySeed is the base64url-encoded 32-byte Ed25519 seed for the
	// verifier's decision-token key. Empty means generate an ephemeral key.
	SigningKeySeed string
	SigningKeyID   string

	ChallengeTTL     time.Duration
	DecisionTokenTTL time.Duration

	TrustCacheTTL time.Duration
	TrustPolicy   TrustPolicy
	OracleTimeout time.Duration

	// AdminKeyHash is the bcrypt hash guarding trust registry admin
	// endpoints. Empty disables the admin surface.
	AdminKeyHash string

	// SeedDemoBalances credits new payers with a demo balance on intent
	// creation so the flow is runnable without a funding rail.
	SeedDemoBalances bool

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// RedisConfig holds Redis connection settings.
// An empty URL means Redis-backed stores are disabled.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig holds the intent/audit persistence settings.
// An empty DSN means in-memory stores are used.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig holds audit event publishing settings.
// Empty brokers means audit events are logged only.
type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:             envOr("VERIPAY_ADDR", ":8090"),
		VerifierDID:      envOr("VERIFIER_DID", "did:web:verifier.localhost"),
		SigningKeySeed:   os.Getenv("VERIFIER_KEY_SEED"),
		SigningKeyID:     envOr("VERIFIER_KEY_ID", "verifier-ed25519-1"),
		ChallengeTTL:     envDuration("CHALLENGE_TTL", 5*time.Minute),
		DecisionTokenTTL: envDuration("DECISION_TOKEN_TTL", 5*time.Minute),
		TrustCacheTTL:    envDuration("TRUST_CACHE_TTL", time.Hour),
		TrustPolicy:      TrustFailClosed,
		OracleTimeout:    envDuration("TRUST_ORACLE_TIMEOUT", 2*time.Second),
		AdminKeyHash:     os.Getenv("TRUST_ADMIN_KEY_HASH"),
		SeedDemoBalances: envBool("SEED_DEMO_BALANCES", true),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "veripay.audit.events"),
		},
	}

	if os.Getenv("TRUST_ORACLE_POLICY") == string(TrustFailOpen) {
		cfg.TrustPolicy = TrustFailOpen
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
