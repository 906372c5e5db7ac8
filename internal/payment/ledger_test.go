package payment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

const (
	payerDID    = domain.DID("did:ex:a")
	receiverDID = domain.DID("did:ex:b")
)

type LedgerSuite struct {
	suite.Suite
	ledger *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ledger = NewLedger()
}

func (s *LedgerSuite) TestGetBalance() {
	s.Run("unseen DIDs default to zero", func() {
		s.Equal(int64(0), s.ledger.GetBalance(domain.DID("did:ex:nobody")))
	})

	s.Run("seed sets an initial balance once", func() {
		s.ledger.Seed(payerDID, 1000)
		s.ledger.Seed(payerDID, 9999)
		s.Equal(int64(1000), s.ledger.GetBalance(payerDID))
	})
}

func (s *LedgerSuite) TestTransfer() {
	s.Run("moves funds and conserves the sum", func() {
		s.ledger.Seed(payerDID, 1000)
		s.Require().NoError(s.ledger.Transfer(payerDID, receiverDID, 500))

		s.Equal(int64(500), s.ledger.GetBalance(payerDID))
		s.Equal(int64(500), s.ledger.GetBalance(receiverDID))
	})

	s.Run("insufficient balance leaves both untouched", func() {
		ledger := NewLedger()
		ledger.Seed(payerDID, 10)

		err := ledger.Transfer(payerDID, receiverDID, 500)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		s.Equal(int64(10), ledger.GetBalance(payerDID))
		s.Equal(int64(0), ledger.GetBalance(receiverDID))
	})
}

func (s *LedgerSuite) TestConcurrentTransfersNeverOverdraft() {
	s.ledger.Seed(payerDID, 100)

	const attempts = 32
	var wg sync.WaitGroup
	successes := make(chan struct{}, attempts)

	// 32 racers each try to move 60 out of 100; only one can succeed.
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.ledger.Transfer(payerDID, receiverDID, 60) == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	s.Len(successes, 1)
	s.Equal(int64(40), s.ledger.GetBalance(payerDID))
	s.Equal(int64(60), s.ledger.GetBalance(receiverDID))
	s.GreaterOrEqual(s.ledger.GetBalance(payerDID), int64(0))
}

func (s *LedgerSuite) TestOpposingTransfersDoNotDeadlock() {
	s.ledger.Seed(payerDID, 1000)
	s.ledger.Seed(receiverDID, 1000)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.ledger.Transfer(payerDID, receiverDID, 1)
		}()
		go func() {
			defer wg.Done()
			_ = s.ledger.Transfer(receiverDID, payerDID, 1)
		}()
	}
	wg.Wait()

	total := s.ledger.GetBalance(payerDID) + s.ledger.GetBalance(receiverDID)
	s.Equal(int64(2000), total)
}
