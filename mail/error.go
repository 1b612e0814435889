package mail

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorReason string

const (
	ReasonUnknown          ErrorReason = "UNKNOWN_ERROR"
	ReasonRateLimited      ErrorReason = "RATE_LIMITED"
	ReasonInvalidEmail     ErrorReason = "INVALID_EMAIL"
	ReasonUnverifiedDomain ErrorReason = "UNVERIFIED_DOMAIN"
	ReasonMessageRejected  ErrorReason = "MESSAGE_REJECTED"
	ReasonServiceError     ErrorReason = "SERVICE_ERROR"
	ReasonValidation       ErrorReason = "VALIDATION_ERROR"
	ReasonAuth             ErrorReason = "AUTH_ERROR"
)

// ErrClosed is returned by a sender after Close.
var ErrClosed = errors.New("sender is closed")

var _ error = &Error{}

// Error is a categorised provider failure.
type Error struct {
	Message string
	Reason  ErrorReason
	Cause   error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s.", e.Reason, e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(" Cause: %s", e.Cause)
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ReasonOf returns the reason of the first *Error in err's chain, or
// ReasonUnknown.
func ReasonOf(err error) ErrorReason {
	var me *Error
	if errors.As(err, &me) {
		return me.Reason
	}
	return ReasonUnknown
}

func newError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Message: message,
		Reason:  reason,
		Cause:   cause,
	}
}

func NewUnknownError(message string, cause error) *Error {
	return newError(ReasonUnknown, message, cause)
}

func NewRateLimitedError(message string, cause error) *Error {
	return newError(ReasonRateLimited, message, cause)
}

func NewInvalidEmailError(message string, cause error) *Error {
	return newError(ReasonInvalidEmail, message, cause)
}

func NewUnverifiedDomainError(message string, cause error) *Error {
	return newError(ReasonUnverifiedDomain, message, cause)
}

func NewMessageRejectedError(message string, cause error) *Error {
	return newError(ReasonMessageRejected, message, cause)
}

func NewServiceError(message string, cause error) *Error {
	return newError(ReasonServiceError, message, cause)
}

func NewValidationError(message string, cause error) *Error {
	return newError(ReasonValidation, message, cause)
}

func NewAuthError(message string, cause error) *Error {
	return newError(ReasonAuth, message, cause)
}
