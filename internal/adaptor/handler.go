package adaptor

import (
	"errors"
	"net/http"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/lock"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Listing *ListingHandler
	Booking *BookingHandler
	Payment *PaymentHandler
	Review  *ReviewHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Listing: NewListingHandler(service.Listing, log),
		Booking: NewBookingHandler(service.Booking, log),
		Payment: NewPaymentHandler(service.Payment, log),
		Review:  NewReviewHandler(service.Review, log),
	}
}

// handleServiceError maps usecase errors onto the response envelope.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	fields := []zap.Field{zap.Error(err), zap.String("operation", operation)}

	if vErr, ok := usecase.AsValidationError(err); ok {
		log.Warn(operation+" rejected", append(fields, zap.String("code", string(vErr.Code)))...)
		utils.ResponseBadRequest(w, vErr.Reason, map[string]string{"code": string(vErr.Code)})
		return
	}

	if gwErr, ok := usecase.AsGatewayError(err); ok {
		log.Warn(operation+" failed - payment gateway", fields...)
		utils.ResponseBadGateway(w, "Payment gateway error: "+gwErr.Detail)
		return
	}

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", fields...)
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", fields...)
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrConsistency):
		log.Error(operation+" failed - inconsistent state", fields...)
		utils.ResponseConflict(w, "Payment and booking state could not be reconciled")

	case errors.Is(err, usecase.ErrConflict), errors.Is(err, usecase.ErrInvalidTransition):
		log.Warn(operation+" failed - conflict", fields...)
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, lock.ErrNotAcquired):
		log.Warn(operation+" failed - listing busy", fields...)
		utils.ResponseConflict(w, "Listing is being booked by someone else, try again")

	default:
		log.Error("Failed to "+operation, fields...)
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func paginationFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
