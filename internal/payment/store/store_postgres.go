package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"veripay/internal/payment"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

// PostgresStore persists intents in PostgreSQL for an audit-grade trail.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL-backed intent store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the intents table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS payment_intents (
			id             UUID PRIMARY KEY,
			payer_did      TEXT NOT NULL,
			receiver_did   TEXT NOT NULL,
			amount         BIGINT NOT NULL CHECK (amount > 0),
			status         TEXT NOT NULL,
			decision_token TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL,
			confirmed_at   TIMESTAMPTZ
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure payment_intents schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, intent *payment.Intent) error {
	query := `
		INSERT INTO payment_intents (id, payer_did, receiver_did, amount, status, decision_token, created_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.pool.Exec(ctx, query,
		intent.ID.String(),
		intent.Payer.String(),
		intent.Receiver.String(),
		intent.Amount,
		string(intent.Status),
		intent.DecisionToken,
		intent.CreatedAt,
		intent.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment intent: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.IntentID) (*payment.Intent, error) {
	query := `
		SELECT id, payer_did, receiver_did, amount, status, decision_token, created_at, confirmed_at
		FROM payment_intents
		WHERE id = $1
	`
	row := s.pool.QueryRow(ctx, query, id.String())

	var (
		intent   payment.Intent
		rawID    string
		payer    string
		receiver string
		status   string
	)
	err := row.Scan(&rawID, &payer, &receiver, &intent.Amount, &status, &intent.DecisionToken, &intent.CreatedAt, &intent.ConfirmedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeIntentNotFound, "payment intent not found")
		}
		return nil, fmt.Errorf("select payment intent: %w", err)
	}

	parsedID, err := domain.ParseIntentID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored intent id is malformed: %w", err)
	}
	intent.ID = parsedID
	intent.Payer = domain.DID(payer)
	intent.Receiver = domain.DID(receiver)
	intent.Status = payment.Status(status)
	return &intent, nil
}

func (s *PostgresStore) Update(ctx context.Context, intent *payment.Intent) error {
	query := `
		UPDATE payment_intents
		SET status = $2, decision_token = $3, confirmed_at = $4
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		intent.ID.String(),
		string(intent.Status),
		intent.DecisionToken,
		intent.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("update payment intent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.New(dErrors.CodeIntentNotFound, "payment intent not found")
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
