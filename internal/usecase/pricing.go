package usecase

import (
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
)

var ErrInvalidRange = errors.New("check-out must be after check-in")

// ComputeTotal prices a stay as whole nights times the nightly rate. Both
// dates are reduced to their calendar day; amounts are whole cents, so the
// result needs no rounding beyond what ParseMoney did to the rate.
func ComputeTotal(nightlyRate entity.Money, checkIn, checkOut time.Time) (entity.Money, error) {
	if nightlyRate.IsNegative() {
		return 0, fmt.Errorf("nightly rate %s: %w", nightlyRate, entity.ErrInvalidMoney)
	}

	nights := entity.NightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return 0, ErrInvalidRange
	}

	total, err := nightlyRate.MulInt(nights)
	if err != nil {
		return 0, fmt.Errorf("price %d nights at %s: %w", nights, nightlyRate, err)
	}

	return total, nil
}
