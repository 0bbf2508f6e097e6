package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type BookingResponse struct {
	ID           string               `json:"id"`
	Reference    string               `json:"reference"`
	ListingID    string               `json:"listing_id"`
	ListingTitle string               `json:"listing_title,omitempty"`
	GuestID      string               `json:"guest_id"`
	CheckIn      string               `json:"check_in"`
	CheckOut     string               `json:"check_out"`
	Nights       int                  `json:"nights"`
	NumGuests    int                  `json:"num_guests"`
	TotalPrice   entity.Money         `json:"total_price"`
	Status       entity.BookingStatus `json:"status"`
	Payment      *PaymentResponse     `json:"payment,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

type PaymentResponse struct {
	BookingReference string               `json:"booking_reference"`
	Amount           entity.Money         `json:"amount"`
	Currency         string               `json:"currency"`
	Status           entity.PaymentStatus `json:"status"`
	TransactionID    *string              `json:"transaction_id,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

func BookingToResponse(booking *entity.Booking, listingTitle string, payment *entity.Payment) BookingResponse {
	resp := BookingResponse{
		ID:           booking.ID.String(),
		Reference:    booking.Reference.String(),
		ListingID:    booking.ListingID.String(),
		ListingTitle: listingTitle,
		GuestID:      booking.GuestID.String(),
		CheckIn:      booking.CheckIn.Format(entity.DateLayout),
		CheckOut:     booking.CheckOut.Format(entity.DateLayout),
		Nights:       booking.Nights(),
		NumGuests:    booking.NumGuests,
		TotalPrice:   booking.TotalPrice,
		Status:       booking.Status,
		CreatedAt:    booking.CreatedAt,
	}
	if payment != nil {
		p := PaymentToResponse(payment)
		resp.Payment = &p
	}
	return resp
}

func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		BookingReference: payment.BookingReference.String(),
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Status:           payment.Status,
		TransactionID:    payment.TransactionID,
		CreatedAt:        payment.CreatedAt,
	}
}
