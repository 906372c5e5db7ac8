package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) TestOpensAtThreshold() {
	b := NewBreaker(3, time.Minute)

	s.True(b.Allow())
	b.RecordFailure()
	b.RecordFailure()
	s.False(b.IsOpen())
	b.RecordFailure()
	s.True(b.IsOpen())
	s.False(b.Allow())
}

func (s *BreakerSuite) TestSuccessResetsFailureCount() {
	b := NewBreaker(3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	s.False(b.IsOpen())
}

func (s *BreakerSuite) TestHalfOpenProbeAfterCooldown() {
	b := NewBreaker(1, 20*time.Millisecond)

	b.RecordFailure()
	s.False(b.Allow())

	time.Sleep(30 * time.Millisecond)

	// One probe is allowed; a failure reopens immediately.
	s.True(b.Allow())
	b.RecordFailure()
	s.False(b.Allow())
}

func (s *BreakerSuite) TestProbeSuccessCloses() {
	b := NewBreaker(1, 20*time.Millisecond)

	b.RecordFailure()
	time.Sleep(30 * time.Millisecond)

	s.True(b.Allow())
	b.RecordSuccess()
	s.True(b.Allow())
	s.False(b.IsOpen())
}
