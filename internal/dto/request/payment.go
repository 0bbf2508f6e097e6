package request

import "travel-booking/internal/data/entity"

type InitiatePaymentRequest struct {
	BookingReference string       `json:"booking_reference" validate:"required,max=64"`
	Amount           entity.Money `json:"amount" validate:"gt=0"`
	Email            string       `json:"email" validate:"required,email"`
	FirstName        string       `json:"first_name" validate:"required,max=100"`
	LastName         string       `json:"last_name" validate:"required,max=100"`
}

type VerifyPaymentRequest struct {
	TxRef string `validate:"required,max=64"`
}
