package usecase

import (
	"errors"
	"fmt"

	"travel-booking/internal/gateway"
)

type ValidationCode string

const (
	CodeInvalidDateRange   ValidationCode = "InvalidDateRange"
	CodeDateInPast         ValidationCode = "DateInPast"
	CodeGuestCountExceeded ValidationCode = "GuestCountExceeded"
	CodeDatesUnavailable   ValidationCode = "DatesUnavailable"
	CodeAmountMismatch     ValidationCode = "AmountMismatch"
	CodeInvalidInput       ValidationCode = "InvalidInput"
)

// ValidationError rejects a request before anything is written or sent to
// the gateway.
type ValidationError struct {
	Code   ValidationCode
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func rejected(code ValidationCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Reason: fmt.Sprintf(format, args...)}
}

func invalidInput(format string, args ...any) *ValidationError {
	return rejected(CodeInvalidInput, format, args...)
}

// GatewayError is a failed exchange with the payment provider.
type GatewayError = gateway.Error

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConsistency means payment and booking state would diverge; the
	// update that detected it has been rolled back.
	ErrConsistency = errors.New("payment and booking state diverge")
)

func notFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// AsValidationError unwraps err to a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	ok := errors.As(err, &vErr)
	return vErr, ok
}

func AsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
