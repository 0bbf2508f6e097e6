package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(r chi.Router, reviewHandler *adaptor.ReviewHandler, repo *repository.Repository, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/listings/{id}/reviews - Reviews for a listing
	r.Get("/api/listings/{id}/reviews", reviewHandler.GetListingReviews)

	// GET /api/listings/{id}/review-stats - Average rating and count
	r.Get("/api/listings/{id}/review-stats", reviewHandler.GetListingReviewStats)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/listings/{id}/reviews - One review per author per listing
		r.Post("/api/listings/{id}/reviews", reviewHandler.CreateReview)
	})
}
