package entity

import (
	"github.com/google/uuid"
)

type Listing struct {
	Base
	HostID        uuid.UUID `db:"host_id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Location      string    `db:"location"`
	PricePerNight Money     `db:"price_per_night_cents"`
	MaxGuests     int       `db:"max_guests"`
}

// ListingSummary is a listing with its aggregated review figures.
type ListingSummary struct {
	Listing
	AverageRating float64 `db:"average_rating"`
	ReviewsCount  int64   `db:"reviews_count"`
}
