package payment

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"veripay/internal/audit"
	"veripay/internal/decisiontoken"
	"veripay/internal/payment/metrics"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
	"veripay/pkg/requestcontext"
)

// requiredKYCClaim is the verified claim an attached decision token must
// carry before an intent can move to KYC_VERIFIED.
const requiredKYCClaim = "over_18"

// Demo balances seeded on intent creation when SeedDemoBalances is on, so
// the full flow is runnable without a funding rail.
const (
	demoPayerBalance    = 1000
	demoReceiverBalance = 0
)

// Store is the intent persistence interface (see store.Store).
type Store interface {
	Create(ctx context.Context, intent *Intent) error
	Get(ctx context.Context, id domain.IntentID) (*Intent, error)
	Update(ctx context.Context, intent *Intent) error
}

// TokenValidator re-validates decision tokens independently of the minter.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (*decisiontoken.Claims, error)
}

// ConfirmResult carries the confirmed intent plus both parties'
// post-confirm balances.
type ConfirmResult struct {
	Intent          *Intent
	PayerBalance    int64
	ReceiverBalance int64
}

// Service drives the intent state machine. Transitions for one intent are
// serialized through a per-intent lock; the balance movement itself is
// additionally protected by the ledger's pair locks.
type Service struct {
	store  Store
	ledger *Ledger
	tokens TokenValidator

	seedDemoBalances bool

	mu          sync.Mutex
	intentLocks map[domain.IntentID]*sync.Mutex

	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   audit.Sink
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

// WithDemoBalances enables demo balance seeding on intent creation.
func WithDemoBalances() Option {
	return func(s *Service) {
		s.seedDemoBalances = true
	}
}

// New creates the payment service.
func New(store Store, ledger *Ledger, tokens TokenValidator, opts ...Option) *Service {
	s := &Service{
		store:       store,
		ledger:      ledger,
		tokens:      tokens,
		intentLocks: make(map[domain.IntentID]*sync.Mutex),
		logger:      slog.Default(),
		audit:       audit.NopSink{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIntent validates the parties and amount and stores a new intent in
// CREATED.
func (s *Service) CreateIntent(ctx context.Context, payer, receiver domain.DID, amount int64) (*Intent, error) {
	if payer == receiver {
		return nil, s.reject(ctx, domain.IntentID{}, dErrors.New(dErrors.CodeValidation, "payer and receiver must differ"))
	}
	if amount <= 0 {
		return nil, s.reject(ctx, domain.IntentID{}, dErrors.New(dErrors.CodeValidation, "amount must be positive"))
	}

	intent := &Intent{
		ID:        domain.NewIntentID(),
		Payer:     payer,
		Receiver:  receiver,
		Amount:    amount,
		Status:    StatusCreated,
		CreatedAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.store.Create(ctx, intent); err != nil {
		return nil, err
	}

	if s.seedDemoBalances {
		s.ledger.Seed(payer, demoPayerBalance)
		s.ledger.Seed(receiver, demoReceiverBalance)
	}

	if s.metrics != nil {
		s.metrics.IntentsCreatedTotal.Inc()
	}
	s.audit.Emit(ctx, audit.Event{
		Type:     audit.EventIntentCreated,
		Subject:  payer.String(),
		IntentID: intent.ID.String(),
		Amount:   amount,
	})
	s.logger.InfoContext(ctx, "payment intent created",
		"request_id", requestcontext.RequestID(ctx),
		"intent_id", intent.ID,
		"payer", payer,
		"receiver", receiver,
		"amount", amount,
	)
	return intent, nil
}

// GetIntent returns the intent or intent_not_found.
func (s *Service) GetIntent(ctx context.Context, id domain.IntentID) (*Intent, error) {
	return s.store.Get(ctx, id)
}

// GetBalance returns the ledger balance, defaulting unseen DIDs to zero.
func (s *Service) GetBalance(_ context.Context, did domain.DID) int64 {
	return s.ledger.GetBalance(did)
}

// AttachKYC validates the decision token and advances the intent to
// KYC_VERIFIED. The token subject must be the intent's payer and must
// carry the required claim; an already-confirmed intent is rejected.
func (s *Service) AttachKYC(ctx context.Context, id domain.IntentID, rawToken string) (*Intent, error) {
	unlock := s.lockIntent(id)
	defer unlock()

	intent, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.reject(ctx, id, err)
	}
	if intent.Status == StatusConfirmed {
		return nil, s.reject(ctx, id, dErrors.New(dErrors.CodeIntentAlreadyConfirmed, "intent is already confirmed"))
	}

	claims, err := s.tokens.Validate(ctx, rawToken)
	if err != nil {
		return nil, s.reject(ctx, id, err)
	}
	if claims.Subject != intent.Payer {
		return nil, s.reject(ctx, id, dErrors.New(dErrors.CodeInvalidDecisionToken, "decision token subject does not match intent payer"))
	}
	if !claims.HasClaim(requiredKYCClaim) {
		return nil, s.reject(ctx, id, dErrors.New(dErrors.CodeKycRequired, "decision token does not carry the "+requiredKYCClaim+" claim"))
	}

	intent.Status = StatusKYCVerified
	intent.DecisionToken = rawToken
	if err := s.store.Update(ctx, intent); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTransition(string(StatusKYCVerified))
	}
	s.audit.Emit(ctx, audit.Event{
		Type:     audit.EventKYCAttached,
		Subject:  intent.Payer.String(),
		IntentID: intent.ID.String(),
	})
	s.logger.InfoContext(ctx, "intent KYC verified",
		"request_id", requestcontext.RequestID(ctx),
		"intent_id", intent.ID,
		"payer", intent.Payer,
	)
	return intent, nil
}

// Confirm moves the funds and advances the intent to CONFIRMED. Requires
// status KYC_VERIFIED exactly; an insufficient balance leaves the intent in
// KYC_VERIFIED.
func (s *Service) Confirm(ctx context.Context, id domain.IntentID) (*ConfirmResult, error) {
	unlock := s.lockIntent(id)
	defer unlock()

	intent, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.reject(ctx, id, err)
	}
	switch intent.Status {
	case StatusCreated:
		return nil, s.reject(ctx, id, dErrors.New(dErrors.CodeKycRequired, "intent requires KYC verification before confirmation"))
	case StatusConfirmed:
		return nil, s.reject(ctx, id, dErrors.New(dErrors.CodeIntentAlreadyConfirmed, "intent is already confirmed"))
	}

	if err := s.ledger.Transfer(intent.Payer, intent.Receiver, intent.Amount); err != nil {
		return nil, s.reject(ctx, id, err)
	}

	now := requestcontext.Now(ctx).UTC()
	intent.Status = StatusConfirmed
	intent.ConfirmedAt = &now
	if err := s.store.Update(ctx, intent); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTransition(string(StatusConfirmed))
		s.metrics.ConfirmedAmountTotal.Add(float64(intent.Amount))
	}
	s.audit.Emit(ctx, audit.Event{
		Type:     audit.EventIntentConfirmed,
		Subject:  intent.Payer.String(),
		IntentID: intent.ID.String(),
		Amount:   intent.Amount,
	})
	s.logger.InfoContext(ctx, "intent confirmed",
		"request_id", requestcontext.RequestID(ctx),
		"intent_id", intent.ID,
		"payer", intent.Payer,
		"receiver", intent.Receiver,
		"amount", intent.Amount,
	)
	return &ConfirmResult{
		Intent:          intent,
		PayerBalance:    s.ledger.GetBalance(intent.Payer),
		ReceiverBalance: s.ledger.GetBalance(intent.Receiver),
	}, nil
}

func (s *Service) lockIntent(id domain.IntentID) func() {
	s.mu.Lock()
	lock, ok := s.intentLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.intentLocks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *Service) reject(ctx context.Context, id domain.IntentID, err error) error {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		if s.metrics != nil {
			s.metrics.RecordRejection(string(domainErr.Code))
		}
		event := audit.Event{
			Type:   audit.EventPaymentRejected,
			Reason: string(domainErr.Code),
		}
		if !id.IsNil() {
			event.IntentID = id.String()
		}
		s.audit.Emit(ctx, event)
	}
	return err
}
