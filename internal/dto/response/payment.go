package response

type CheckoutResponse struct {
	BookingReference string `json:"booking_reference"`
	CheckoutURL      string `json:"checkout_url"`
}

type VerifyResponse struct {
	BookingReference string  `json:"booking_reference"`
	Status           string  `json:"status"`
	TransactionID    *string `json:"transaction_id,omitempty"`
}
