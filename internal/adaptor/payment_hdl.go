package adaptor

import (
	"encoding/json"
	"net/http"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// InitiatePayment handles POST /api/payments/initiate (public)
func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req request.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	checkout, err := h.service.Initiate(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "initiate payment")
		return
	}

	utils.ResponseSuccess(w, "Checkout created", checkout)
}

// VerifyPayment handles GET /api/payments/verify?tx_ref= (public). It is the
// provider's callback and the payer's return target.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	req := request.VerifyPaymentRequest{TxRef: r.URL.Query().Get("tx_ref")}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.Verify(r.Context(), entity.BookingReference(req.TxRef))
	if err != nil {
		handleServiceError(h.log, w, err, "verify payment")
		return
	}

	data := response.VerifyResponse{
		BookingReference: req.TxRef,
		Status:           string(result.Outcome),
		TransactionID:    result.Payment.TransactionID,
	}

	switch result.Outcome {
	case usecase.OutcomeVerified:
		utils.ResponseSuccess(w, "Payment verified successfully", data)
	case usecase.OutcomePending:
		utils.ResponseAccepted(w, "Payment is still pending", data)
	default:
		utils.ResponseJSON(w, http.StatusBadRequest, false, "Payment failed", data, nil)
	}
}
