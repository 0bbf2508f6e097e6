package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further transition may leave the status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled
}

type Booking struct {
	Base
	Reference  BookingReference `db:"reference"`
	ListingID  uuid.UUID        `db:"listing_id"`
	GuestID    uuid.UUID        `db:"guest_id"`
	CheckIn    time.Time        `db:"check_in"`
	CheckOut   time.Time        `db:"check_out"`
	NumGuests  int              `db:"num_guests"`
	TotalPrice Money            `db:"total_price_cents"`
	Status     BookingStatus    `db:"status"`
}

// Nights returns the number of whole nights between check-in and check-out.
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}
