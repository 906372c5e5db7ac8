package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veripay/internal/payment"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) intent() *payment.Intent {
	return &payment.Intent{
		ID:        domain.NewIntentID(),
		Payer:     domain.DID("did:ex:a"),
		Receiver:  domain.DID("did:ex:b"),
		Amount:    500,
		Status:    payment.StatusCreated,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *InMemoryStoreSuite) TestCreateAndGet() {
	intent := s.intent()
	s.Require().NoError(s.store.Create(s.ctx, intent))

	got, err := s.store.Get(s.ctx, intent.ID)
	s.Require().NoError(err)
	s.Equal(intent, got)
}

func (s *InMemoryStoreSuite) TestCreateDuplicate() {
	intent := s.intent()
	s.Require().NoError(s.store.Create(s.ctx, intent))

	err := s.store.Create(s.ctx, intent)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *InMemoryStoreSuite) TestGetUnknown() {
	_, err := s.store.Get(s.ctx, domain.NewIntentID())
	s.True(dErrors.HasCode(err, dErrors.CodeIntentNotFound))
}

func (s *InMemoryStoreSuite) TestUpdate() {
	intent := s.intent()
	s.Require().NoError(s.store.Create(s.ctx, intent))

	now := time.Now().UTC()
	intent.Status = payment.StatusConfirmed
	intent.ConfirmedAt = &now
	s.Require().NoError(s.store.Update(s.ctx, intent))

	got, err := s.store.Get(s.ctx, intent.ID)
	s.Require().NoError(err)
	s.Equal(payment.StatusConfirmed, got.Status)
	s.NotNil(got.ConfirmedAt)
}

func (s *InMemoryStoreSuite) TestUpdateUnknown() {
	err := s.store.Update(s.ctx, s.intent())
	s.True(dErrors.HasCode(err, dErrors.CodeIntentNotFound))
}

func (s *InMemoryStoreSuite) TestCallerCannotMutateStoredState() {
	intent := s.intent()
	s.Require().NoError(s.store.Create(s.ctx, intent))

	intent.Status = payment.StatusConfirmed

	got, err := s.store.Get(s.ctx, intent.ID)
	s.Require().NoError(err)
	s.Equal(payment.StatusCreated, got.Status)
}
