package request

import "travel-booking/internal/data/entity"

type CreateListingRequest struct {
	Title         string       `json:"title" validate:"required,min=3,max=200"`
	Description   string       `json:"description" validate:"max=5000"`
	Location      string       `json:"location" validate:"required,max=200"`
	PricePerNight entity.Money `json:"price_per_night" validate:"gt=0"`
	MaxGuests     int          `json:"max_guests" validate:"required,min=1,max=100"`
}

type UpdateListingRequest struct {
	Title         *string       `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description   *string       `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location      *string       `json:"location,omitempty" validate:"omitempty,max=200"`
	PricePerNight *entity.Money `json:"price_per_night,omitempty" validate:"omitempty,gt=0"`
	MaxGuests     *int          `json:"max_guests,omitempty" validate:"omitempty,min=1,max=100"`
}
