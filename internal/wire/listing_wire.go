package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireListing(r chi.Router, listingHandler *adaptor.ListingHandler, repo *repository.Repository, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/listings - Browse listings with average rating
	r.Get("/api/listings", listingHandler.GetListings)

	// GET /api/listings/{id} - Listing details
	r.Get("/api/listings/{id}", listingHandler.GetListingByID)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/listings - Publish a listing as host
		r.Post("/api/listings", listingHandler.CreateListing)

		// PUT /api/listings/{id} - Update own listing
		r.Put("/api/listings/{id}", listingHandler.UpdateListing)

		// DELETE /api/listings/{id} - Remove own listing with its bookings and reviews
		r.Delete("/api/listings/{id}", listingHandler.DeleteListing)
	})
}
