package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"veripay/internal/payment"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
	"veripay/pkg/testutil"
)

type stubService struct {
	intent     *payment.Intent
	result     *payment.ConfirmResult
	balance    int64
	createErr  error
	getErr     error
	attachErr  error
	confirmErr error

	attachedToken string
}

func (s *stubService) CreateIntent(_ context.Context, payer, receiver domain.DID, amount int64) (*payment.Intent, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.intent, nil
}

func (s *stubService) GetIntent(context.Context, domain.IntentID) (*payment.Intent, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.intent, nil
}

func (s *stubService) AttachKYC(_ context.Context, _ domain.IntentID, rawToken string) (*payment.Intent, error) {
	if s.attachErr != nil {
		return nil, s.attachErr
	}
	s.attachedToken = rawToken
	return s.intent, nil
}

func (s *stubService) Confirm(context.Context, domain.IntentID) (*payment.ConfirmResult, error) {
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return s.result, nil
}

func (s *stubService) GetBalance(context.Context, domain.DID) int64 {
	return s.balance
}

type PaymentHandlerSuite struct {
	suite.Suite
	service *stubService
	router  chi.Router
	intent  *payment.Intent
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerSuite))
}

func (s *PaymentHandlerSuite) SetupTest() {
	s.intent = &payment.Intent{
		ID:        domain.NewIntentID(),
		Payer:     domain.DID("did:ex:a"),
		Receiver:  domain.DID("did:ex:b"),
		Amount:    500,
		Status:    payment.StatusCreated,
		CreatedAt: time.Now().UTC(),
	}
	s.service = &stubService{intent: s.intent}
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.DiscardHandler)).Register(s.router)
}

func (s *PaymentHandlerSuite) createBody() map[string]any {
	return map[string]any{
		"payerDid":    "did:ex:a",
		"receiverDid": "did:ex:b",
		"amount":      500,
	}
}

func (s *PaymentHandlerSuite) TestCreateIntent() {
	s.Run("valid request returns 201 with the intent", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/payments/intents", s.createBody())
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[IntentResponse](s.T(), rr)
		s.Equal(s.intent.ID.String(), resp.ID)
		s.Equal("did:ex:a", resp.PayerDID)
		s.Equal(string(payment.StatusCreated), resp.Status)
	})

	s.Run("malformed payer DID is rejected", func() {
		body := s.createBody()
		body["payerDid"] = "not-a-did"
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/payments/intents", body)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("truncated JSON body is rejected before the service", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/payments/intents", `{"payerDid": "did:ex:a",`)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("service validation failures map to 400", func() {
		s.service.createErr = dErrors.New(dErrors.CodeValidation, "amount must be positive")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/payments/intents", s.createBody())
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})
}

func (s *PaymentHandlerSuite) TestGetIntent() {
	s.Run("known intent is returned", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/payments/intents/"+s.intent.ID.String())
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[IntentResponse](s.T(), rr)
		s.Equal(s.intent.ID.String(), resp.ID)
	})

	s.Run("malformed id is a bad request", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/payments/intents/not-a-uuid")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("unknown intent maps to 404", func() {
		s.service.getErr = dErrors.New(dErrors.CodeIntentNotFound, "payment intent not found")
		req := testutil.NewRequest(s.T(), http.MethodGet, "/payments/intents/"+s.intent.ID.String())
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeIntentNotFound))
	})
}

func (s *PaymentHandlerSuite) TestVerifyKYC() {
	path := "/payments/" + s.intent.ID.String() + "/verify-kyc"
	body := map[string]any{"decisionToken": "header.payload.signature"}

	s.Run("valid token attaches and returns the intent", func() {
		s.intent.Status = payment.StatusKYCVerified
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, body)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.Equal("header.payload.signature", s.service.attachedToken)
		resp := testutil.UnmarshalResponse[IntentResponse](s.T(), rr)
		s.Equal(string(payment.StatusKYCVerified), resp.Status)
	})

	s.Run("missing token is a bad request", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]any{})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("invalid token maps to 400", func() {
		s.service.attachErr = dErrors.New(dErrors.CodeInvalidDecisionToken, "token subject does not match payer")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, body)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidDecisionToken))
	})

	s.Run("missing claim maps to 412", func() {
		s.service.attachErr = dErrors.New(dErrors.CodeKycRequired, "decision token lacks the over_18 claim")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, body)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusPreconditionFailed, string(dErrors.CodeKycRequired))
	})

	s.Run("confirmed intent maps to 409", func() {
		s.service.attachErr = dErrors.New(dErrors.CodeIntentAlreadyConfirmed, "intent already confirmed")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, body)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeIntentAlreadyConfirmed))
	})
}

func (s *PaymentHandlerSuite) TestConfirm() {
	path := "/payments/" + s.intent.ID.String() + "/confirm"

	s.Run("confirmation returns intent and balances", func() {
		now := time.Now().UTC()
		confirmed := s.intent.Clone()
		confirmed.Status = payment.StatusConfirmed
		confirmed.ConfirmedAt = &now
		s.service.result = &payment.ConfirmResult{
			Intent:          confirmed,
			PayerBalance:    500,
			ReceiverBalance: 500,
		}

		req := testutil.NewRequest(s.T(), http.MethodPost, path)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[ConfirmResponse](s.T(), rr)
		s.Equal(string(payment.StatusConfirmed), resp.Intent.Status)
		s.Equal(int64(500), resp.PayerBalance)
		s.Equal(int64(500), resp.ReceiverBalance)
	})

	s.Run("confirm before KYC maps to 412", func() {
		s.service.confirmErr = dErrors.New(dErrors.CodeKycRequired, "intent is not KYC verified")
		req := testutil.NewRequest(s.T(), http.MethodPost, path)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusPreconditionFailed, string(dErrors.CodeKycRequired))
	})

	s.Run("insufficient balance maps to 402", func() {
		s.service.confirmErr = dErrors.New(dErrors.CodeInsufficientBalance, "payer balance cannot cover the amount")
		req := testutil.NewRequest(s.T(), http.MethodPost, path)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusPaymentRequired, string(dErrors.CodeInsufficientBalance))
	})

	s.Run("double confirm maps to 409", func() {
		s.service.confirmErr = dErrors.New(dErrors.CodeIntentAlreadyConfirmed, "intent already confirmed")
		req := testutil.NewRequest(s.T(), http.MethodPost, path)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeIntentAlreadyConfirmed))
	})
}

func (s *PaymentHandlerSuite) TestGetBalance() {
	s.Run("balance is returned for a valid DID", func() {
		s.service.balance = 750
		req := testutil.NewRequest(s.T(), http.MethodGet, "/payments/balance/did:ex:a")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[BalanceResponse](s.T(), rr)
		s.Equal("did:ex:a", resp.DID)
		s.Equal(int64(750), resp.Balance)
	})

	s.Run("malformed DID is a bad request", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/payments/balance/nope")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}
