package entity

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is correlated to a booking through BookingReference only; there is
// no foreign key, so lookups must go through the reference.
type Payment struct {
	Base
	BookingReference BookingReference `db:"booking_reference"`
	Amount           Money            `db:"amount_cents"`
	Currency         string           `db:"currency"`
	CheckoutURL      string           `db:"checkout_url"`
	TransactionID    *string          `db:"transaction_id"`
	Status           PaymentStatus    `db:"status"`
}
