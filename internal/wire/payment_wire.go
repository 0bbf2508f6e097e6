package wire

import (
	"travel-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// Payment routes stay public: the reference is the capability and the
// provider calls back without a session.
func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	// POST /api/payments/initiate - Start checkout for a pending booking
	r.Post("/api/payments/initiate", paymentHandler.InitiatePayment)

	// GET /api/payments/verify?tx_ref= - Provider callback and payer return
	r.Get("/api/payments/verify", paymentHandler.VerifyPayment)
}
