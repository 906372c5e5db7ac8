package payment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veripay/internal/decisiontoken"
	"veripay/internal/payment"
	"veripay/internal/payment/store"
	"veripay/internal/platform/keys"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

const (
	verifierDID = domain.DID("did:web:verifier.example")
	payerDID    = domain.DID("did:ex:a")
	receiverDID = domain.DID("did:ex:b")
)

type ServiceSuite struct {
	suite.Suite
	service *payment.Service
	ledger  *payment.Ledger
	tokens  *decisiontoken.Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	pair, err := keys.Load("", "verifier-key-1")
	s.Require().NoError(err)
	s.tokens = decisiontoken.New(verifierDID, pair, 5*time.Minute)

	s.ledger = payment.NewLedger()
	s.service = payment.New(store.NewInMemoryStore(), s.ledger, s.tokens, payment.WithDemoBalances())
	s.ctx = context.Background()
}

func (s *ServiceSuite) createIntent() *payment.Intent {
	intent, err := s.service.CreateIntent(s.ctx, payerDID, receiverDID, 500)
	s.Require().NoError(err)
	return intent
}

func (s *ServiceSuite) mintToken(subject domain.DID, claims ...string) string {
	raw, err := s.tokens.Mint(s.ctx, subject, claims)
	s.Require().NoError(err)
	return raw
}

func (s *ServiceSuite) TestCreateIntent() {
	s.Run("valid intent starts in CREATED with seeded balances", func() {
		intent := s.createIntent()

		s.Equal(payment.StatusCreated, intent.Status)
		s.Equal(int64(500), intent.Amount)
		s.False(intent.ID.IsNil())
		s.Equal(int64(1000), s.service.GetBalance(s.ctx, payerDID))
		s.Equal(int64(0), s.service.GetBalance(s.ctx, receiverDID))
	})

	s.Run("payer and receiver must differ", func() {
		_, err := s.service.CreateIntent(s.ctx, payerDID, payerDID, 500)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("amount must be positive", func() {
		_, err := s.service.CreateIntent(s.ctx, payerDID, receiverDID, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.CreateIntent(s.ctx, payerDID, receiverDID, -5)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestAttachKYC() {
	s.Run("valid token advances to KYC_VERIFIED", func() {
		intent := s.createIntent()
		token := s.mintToken(payerDID, "over_18")

		updated, err := s.service.AttachKYC(s.ctx, intent.ID, token)
		s.Require().NoError(err)
		s.Equal(payment.StatusKYCVerified, updated.Status)
		s.Equal(token, updated.DecisionToken)
	})

	s.Run("unknown intent", func() {
		_, err := s.service.AttachKYC(s.ctx, domain.NewIntentID(), s.mintToken(payerDID, "over_18"))
		s.True(dErrors.HasCode(err, dErrors.CodeIntentNotFound))
	})

	s.Run("token subject must be the payer", func() {
		intent := s.createIntent()
		token := s.mintToken(domain.DID("did:ex:c"), "over_18")

		_, err := s.service.AttachKYC(s.ctx, intent.ID, token)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDecisionToken))

		// The intent did not move.
		current, err := s.service.GetIntent(s.ctx, intent.ID)
		s.Require().NoError(err)
		s.Equal(payment.StatusCreated, current.Status)
	})

	s.Run("token must carry the over_18 claim", func() {
		intent := s.createIntent()
		token := s.mintToken(payerDID, "over_65")

		_, err := s.service.AttachKYC(s.ctx, intent.ID, token)
		s.True(dErrors.HasCode(err, dErrors.CodeKycRequired))
	})

	s.Run("garbage token is invalid", func() {
		intent := s.createIntent()
		_, err := s.service.AttachKYC(s.ctx, intent.ID, "not.a.token")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDecisionToken))
	})

	s.Run("confirmed intent rejects re-attachment", func() {
		intent := s.confirmedIntent()

		_, err := s.service.AttachKYC(s.ctx, intent.ID, s.mintToken(payerDID, "over_18"))
		s.True(dErrors.HasCode(err, dErrors.CodeIntentAlreadyConfirmed))
	})
}

func (s *ServiceSuite) TestConfirm() {
	s.Run("full flow moves balances and conserves the sum", func() {
		intent := s.createIntent()
		_, err := s.service.AttachKYC(s.ctx, intent.ID, s.mintToken(payerDID, "over_18"))
		s.Require().NoError(err)

		before := s.service.GetBalance(s.ctx, payerDID) + s.service.GetBalance(s.ctx, receiverDID)

		result, err := s.service.Confirm(s.ctx, intent.ID)
		s.Require().NoError(err)

		s.Equal(payment.StatusConfirmed, result.Intent.Status)
		s.NotNil(result.Intent.ConfirmedAt)
		s.Equal(int64(500), result.PayerBalance)
		s.Equal(int64(500), result.ReceiverBalance)
		s.Equal(before, result.PayerBalance+result.ReceiverBalance)
	})

	s.Run("confirm before KYC fails with kyc_required", func() {
		intent := s.createIntent()

		_, err := s.service.Confirm(s.ctx, intent.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeKycRequired))
	})

	s.Run("double confirm fails with intent_already_confirmed", func() {
		intent := s.confirmedIntent()

		_, err := s.service.Confirm(s.ctx, intent.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeIntentAlreadyConfirmed))
	})

	s.Run("insufficient balance leaves intent in KYC_VERIFIED", func() {
		// Drain the payer to 10 below what a 500 transfer needs.
		poor := domain.DID("did:ex:poor")
		rich := domain.DID("did:ex:rich")
		s.ledger.Seed(poor, 10)

		intent, err := s.service.CreateIntent(s.ctx, poor, rich, 500)
		s.Require().NoError(err)
		_, err = s.service.AttachKYC(s.ctx, intent.ID, s.mintToken(poor, "over_18"))
		s.Require().NoError(err)

		_, err = s.service.Confirm(s.ctx, intent.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))

		current, err := s.service.GetIntent(s.ctx, intent.ID)
		s.Require().NoError(err)
		s.Equal(payment.StatusKYCVerified, current.Status)
		s.Equal(int64(10), s.service.GetBalance(s.ctx, poor))
	})

	s.Run("unknown intent", func() {
		_, err := s.service.Confirm(s.ctx, domain.NewIntentID())
		s.True(dErrors.HasCode(err, dErrors.CodeIntentNotFound))
	})
}

func (s *ServiceSuite) TestConcurrentConfirmsCannotOverdraft() {
	// Two 400 confirms race for a 500 balance; exactly one may win.
	ledger := payment.NewLedger()
	service := payment.New(store.NewInMemoryStore(), ledger, s.tokens)
	ledger.Seed(payerDID, 500)

	intents := make([]*payment.Intent, 2)
	for i := range intents {
		intent, err := service.CreateIntent(s.ctx, payerDID, receiverDID, 400)
		s.Require().NoError(err)
		_, err = service.AttachKYC(s.ctx, intent.ID, s.mintToken(payerDID, "over_18"))
		s.Require().NoError(err)
		intents[i] = intent
	}

	var wg sync.WaitGroup
	errs := make([]error, len(intents))
	for i, intent := range intents {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = service.Confirm(s.ctx, intent.ID)
		}()
	}
	wg.Wait()

	var confirmed int
	for _, err := range errs {
		if err == nil {
			confirmed++
		} else {
			s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		}
	}
	s.Equal(1, confirmed)
	s.GreaterOrEqual(ledger.GetBalance(payerDID), int64(0))
	s.Equal(int64(500), ledger.GetBalance(payerDID)+ledger.GetBalance(receiverDID))
}

func (s *ServiceSuite) confirmedIntent() *payment.Intent {
	intent := s.createIntent()
	_, err := s.service.AttachKYC(s.ctx, intent.ID, s.mintToken(payerDID, "over_18"))
	s.Require().NoError(err)
	_, err = s.service.Confirm(s.ctx, intent.ID)
	s.Require().NoError(err)
	return intent
}
