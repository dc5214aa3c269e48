package handler

import (
	"net/http"

	"vizin/internal/payments/service"
	"vizin/internal/payments/validator"
	"vizin/pkg/auth"
	apperrors "vizin/pkg/errors"
	httputil "vizin/pkg/http"
	"vizin/pkg/logger"
	"vizin/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service   service.PaymentService
	validator *validator.PaymentValidator
	log       *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, validator *validator.PaymentValidator, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

// Pay answers 200 for both approved and declined charges; the result's
// success flag tells them apart.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	bookingID := ps.ByName("id")
	if !h.validator.ValidBookingID(bookingID) {
		h.writeError(w, apperrors.Validation("Invalid booking ID", map[string]any{"id": "id must be a valid UUID"}))
		return
	}

	var req model.PaymentRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if details := h.validator.Validate(&req); details != nil {
		h.writeError(w, apperrors.Validation("Invalid payment request", details))
		return
	}

	result, err := h.service.Process(r.Context(), bookingID, actor.ID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Pay", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/:id/payments", h.Pay)
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Pay", "operation", "WriteError", "error", writeErr)
	}
}
