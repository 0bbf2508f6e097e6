package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, repo *repository.Repository, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/bookings - Reserve a listing, booking starts pending
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/bookings/{id} - Booking details (guest or listing host)
		r.Get("/api/bookings/{id}", bookingHandler.GetBookingByID)

		// GET /api/user/bookings - Own booking history
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})
}
