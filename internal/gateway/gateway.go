// Package gateway talks to the external payment provider. It validates every
// response before handing anything back; callers never see a half-parsed body.
package gateway

import (
	"fmt"

	"travel-booking/internal/data/entity"
)

type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
	TransactionPending TransactionStatus = "pending"
)

// InitializeRequest is a payment intent for one booking reference.
type InitializeRequest struct {
	Reference entity.BookingReference
	Amount    entity.Money
	Currency  string
	Email     string
	FirstName string
	LastName  string
}

type Checkout struct {
	Reference   entity.BookingReference
	CheckoutURL string
}

// Transaction is the provider's view of a payment. Amount is nil when the
// provider did not report one.
type Transaction struct {
	Reference     entity.BookingReference
	Status        TransactionStatus
	TransactionID string
	Amount        *entity.Money
	Currency      string
	Message       string
}

// Error reports a failed exchange with the provider: transport failure,
// timeout, non-success status or a body that does not match the protocol.
type Error struct {
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s", e.Op, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}
