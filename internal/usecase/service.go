package usecase

import (
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/lock"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Listing ListingService
	Booking BookingService
	Payment PaymentService
	Review  ReviewService
	Expiry  *ExpirySweeper
}

func NewService(repo *repository.Repository, gw PaymentGateway, locker lock.Locker, config *utils.Config, log *zap.Logger) *Service {
	bookings := NewBookingService(repo, locker, config.Booking, log)

	return &Service{
		Auth:    NewAuthService(repo, log),
		Listing: NewListingService(repo, log),
		Booking: bookings,
		Payment: NewPaymentService(repo, bookings, gw, config.Payment, log),
		Review:  NewReviewService(repo, log),
		Expiry:  NewExpirySweeper(repo, bookings, config.Booking.PendingTTL, config.Booking.SweepInterval, log),
	}
}
