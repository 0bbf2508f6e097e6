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

type ListingHandler struct {
	service usecase.ListingService
	log     *zap.Logger
}

func NewListingHandler(service usecase.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log.With(zap.String("handler", "listing")),
	}
}

// GetListings handles GET /api/listings (public)
func (h *ListingHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.GetListings(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(h.log, w, err, "get listings")
		return
	}

	utils.ResponseSuccess(w, "success", listings)
}

// GetListingByID handles GET /api/listings/{id} (public)
func (h *ListingHandler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.GetListingByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get listing")
		return
	}

	utils.ResponseSuccess(w, "success", listing)
}

// CreateListing handles POST /api/listings (protected)
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	hostID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	listing, err := h.service.CreateListing(r.Context(), hostID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create listing")
		return
	}

	utils.ResponseCreated(w, "Listing created", listing)
}

// UpdateListing handles PUT /api/listings/{id} (protected, host only)
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	hostID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	listing, err := h.service.UpdateListing(r.Context(), hostID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update listing")
		return
	}

	utils.ResponseSuccess(w, "Listing updated", listing)
}

// DeleteListing handles DELETE /api/listings/{id} (protected, host only)
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	hostID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteListing(r.Context(), hostID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.log, w, err, "delete listing")
		return
	}

	utils.ResponseSuccess(w, "Listing deleted", nil)
}
