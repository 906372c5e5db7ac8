package payment

import (
	"sync"

	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
)

// Ledger maps DIDs to non-negative balances. Transfer is atomic per
// account pair: both DIDs are locked in lexical order, so two concurrent
// confirmations can never overdraft a payer, and lock acquisition cannot
// deadlock.
type Ledger struct {
	mu       sync.Mutex
	balances map[domain.DID]int64
	locks    map[domain.DID]*sync.Mutex
}

// NewLedger creates an empty balance ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[domain.DID]int64),
		locks:    make(map[domain.DID]*sync.Mutex),
	}
}

// GetBalance returns the current balance, defaulting unseen DIDs to zero.
func (l *Ledger) GetBalance(did domain.DID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[did]
}

// Seed sets an initial balance if the DID has never been seen. Existing
// balances are left untouched.
func (l *Ledger) Seed(did domain.DID, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[did]; !ok {
		l.balances[did] = amount
	}
}

// Transfer atomically moves amount from payer to receiver. Fails with
// insufficient_balance when the payer cannot cover the amount; no balance
// changes on failure. The pair locks close the window between the balance
// check and the debit.
func (l *Ledger) Transfer(payer, receiver domain.DID, amount int64) error {
	unlock := l.lockPair(payer, receiver)
	defer unlock()

	if l.GetBalance(payer) < amount {
		return dErrors.New(dErrors.CodeInsufficientBalance, "payer balance cannot cover the amount")
	}
	l.add(payer, -amount)
	l.add(receiver, amount)
	return nil
}

func (l *Ledger) add(did domain.DID, delta int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[did] += delta
}

// lockPair acquires both account locks in lexical DID order and returns
// the matching unlock.
func (l *Ledger) lockPair(a, b domain.DID) func() {
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	fl, sl := l.lockFor(first), l.lockFor(second)
	fl.Lock()
	if sl != fl {
		sl.Lock()
	}
	return func() {
		if sl != fl {
			sl.Unlock()
		}
		fl.Unlock()
	}
}

func (l *Ledger) lockFor(did domain.DID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[did]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[did] = lock
	}
	return lock
}
