package adaptor

import (
	"encoding/json"
	"net/http"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// CreateReview handles POST /api/listings/{id}/reviews (protected)
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	review, err := h.service.CreateReview(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create review")
		return
	}

	utils.ResponseCreated(w, "Review created", review)
}

// GetListingReviews handles GET /api/listings/{id}/reviews (public)
func (h *ReviewHandler) GetListingReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetListingReviews(r.Context(), chi.URLParam(r, "id"), paginationFromQuery(r))
	if err != nil {
		handleServiceError(h.log, w, err, "get listing reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// GetListingReviewStats handles GET /api/listings/{id}/review-stats (public)
func (h *ReviewHandler) GetListingReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetListingReviewStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get review stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}
