package request

// CreateBookingRequest carries dates as YYYY-MM-DD. Guest count bounds are
// checked against the listing by the booking validator.
type CreateBookingRequest struct {
	ListingID string `json:"listing_id" validate:"required,uuid4"`
	CheckIn   string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut  string `json:"check_out" validate:"required,datetime=2006-01-02"`
	NumGuests int    `json:"num_guests"`
}
