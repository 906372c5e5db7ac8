package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: every verification gate and payment transition signals
// failure through these primitives. Unit tests ensure invariants like
// "wrapped domain errors preserve original code" and "errors.Is matches by
// code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeChallengeInvalid, Message: "challenge already used"}
		s.Equal("challenge already used", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeUntrustedIssuer}
		s.Equal("untrusted_issuer", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("oracle transport failure")
		err := &Error{Code: CodeInternal, Message: "trust lookup failed", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeIntentNotFound, Message: "not found"}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeChallengeInvalid, Message: "expired"}
		err2 := &Error{Code: CodeChallengeInvalid, Message: "already used"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeProofInvalid}
		err2 := &Error{Code: CodePredicateNotSatisfied}
		s.False(err1.Is(err2))
	})

	s.Run("does not match non-domain errors", func() {
		err1 := &Error{Code: CodeKycRequired}
		err2 := errors.New("kyc required")
		s.False(err1.Is(err2))
	})

	s.Run("works with errors.Is through chain", func() {
		inner := &Error{Code: CodeInsufficientBalance, Message: "original"}
		wrapped := &Error{Code: CodeInternal, Message: "wrapped", Err: inner}
		target := &Error{Code: CodeInsufficientBalance}

		s.True(errors.Is(wrapped, target))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code when wrapping domain error", func() {
		original := New(CodeIntentAlreadyConfirmed, "intent confirmed")
		wrapped := Wrap(original, CodeInternal, "service layer error")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeIntentAlreadyConfirmed, domainErr.Code)
		s.Equal("service layer error", domainErr.Message)
	})

	s.Run("uses provided code when wrapping non-domain error", func() {
		original := errors.New("connection reset")
		wrapped := Wrap(original, CodeTimeout, "oracle unavailable")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeTimeout, domainErr.Code)
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("finds code in chain", func() {
		err := Wrap(New(CodeInvalidDecisionToken, "expired"), CodeInternal, "validate failed")
		s.True(HasCode(err, CodeInvalidDecisionToken))
		s.False(HasCode(err, CodeKycRequired))
	})

	s.Run("false for plain errors", func() {
		s.False(HasCode(errors.New("plain"), CodeInternal))
	})
}
