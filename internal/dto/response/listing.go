package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type ListingResponse struct {
	ID            string       `json:"id"`
	HostID        string       `json:"host_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Location      string       `json:"location"`
	PricePerNight entity.Money `json:"price_per_night"`
	MaxGuests     int          `json:"max_guests"`
	AverageRating float64      `json:"average_rating"`
	ReviewsCount  int64        `json:"reviews_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func ListingToResponse(summary *entity.ListingSummary) ListingResponse {
	return ListingResponse{
		ID:            summary.ID.String(),
		HostID:        summary.HostID.String(),
		Title:         summary.Title,
		Description:   summary.Description,
		Location:      summary.Location,
		PricePerNight: summary.PricePerNight,
		MaxGuests:     summary.MaxGuests,
		AverageRating: summary.AverageRating,
		ReviewsCount:  summary.ReviewsCount,
		CreatedAt:     summary.CreatedAt,
		UpdatedAt:     summary.UpdatedAt,
	}
}
