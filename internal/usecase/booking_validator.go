package usecase

import (
	"time"

	"travel-booking/internal/data/entity"
)

// BookingValidator checks a booking request against its listing. Checks run
// in a fixed order and stop at the first failure.
type BookingValidator struct {
	// RejectPastDates turns on the check-in-not-in-the-past rule. Today counts
	// as not past.
	RejectPastDates bool
	Now             func() time.Time
}

func NewBookingValidator(rejectPastDates bool) *BookingValidator {
	return &BookingValidator{RejectPastDates: rejectPastDates, Now: time.Now}
}

// Validate returns nil or a *ValidationError.
func (v *BookingValidator) Validate(listing *entity.Listing, checkIn, checkOut time.Time, numGuests int) error {
	in, out := entity.DateOf(checkIn), entity.DateOf(checkOut)

	if !out.After(in) {
		return rejected(CodeInvalidDateRange, "check-out %s must be after check-in %s",
			out.Format(entity.DateLayout), in.Format(entity.DateLayout))
	}

	if v.RejectPastDates {
		today := entity.DateOf(v.Now())
		if in.Before(today) {
			return rejected(CodeDateInPast, "check-in %s is in the past", in.Format(entity.DateLayout))
		}
	}

	if numGuests < 1 || numGuests > listing.MaxGuests {
		return rejected(CodeGuestCountExceeded, "guest count %d must be between 1 and %d",
			numGuests, listing.MaxGuests)
	}

	return nil
}
