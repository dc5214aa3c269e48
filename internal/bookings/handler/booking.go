package handler

import (
	"errors"
	"net/http"

	"vizin/internal/bookings/service"
	"vizin/internal/bookings/validator"
	"vizin/pkg/auth"
	"vizin/pkg/clock"
	apperrors "vizin/pkg/errors"
	httputil "vizin/pkg/http"
	"vizin/pkg/logger"
	"vizin/pkg/model"
	"vizin/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, validator *validator.BookingValidator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

type cancelResponse struct {
	ID       string `json:"id"`
	Canceled bool   `json:"canceled"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Authentication required"))
		return
	}
	if actor.IsHost() {
		h.writeError(w, "Create", apperrors.Forbidden("only guests can book a property"))
		return
	}

	propertyID := ps.ByName("id")
	if propertyID == "" {
		h.writeError(w, "Create", apperrors.InvalidInput("Property ID cannot be empty"))
		return
	}

	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	req.CheckIn = sanitizer.NormalizeDate(req.CheckIn)
	req.CheckOut = sanitizer.NormalizeDate(req.CheckOut)
	if err := h.validator.ValidateCreate(&req); err != nil {
		h.writeError(w, "Create", validationError("Invalid booking request", err))
		return
	}

	checkIn, err := clock.ParseDate(req.CheckIn)
	if err != nil {
		h.writeError(w, "Create", apperrors.InvalidDate("invalid check-in date"))
		return
	}
	checkOut, err := clock.ParseDate(req.CheckOut)
	if err != nil {
		h.writeError(w, "Create", apperrors.InvalidDate("invalid check-out date"))
		return
	}

	view, err := h.service.Create(r.Context(), model.CreateBookingInput{
		GuestID:    actor.ID,
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: req.GuestCount,
	})
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, view); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Authentication required"))
		return
	}

	id := ps.ByName("id")
	if err := h.validator.ValidateID("id", id); err != nil {
		h.writeError(w, "Cancel", validationError("Invalid booking ID", err))
		return
	}

	if err := h.service.Cancel(r.Context(), id, actor.ID); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, cancelResponse{ID: id, Canceled: true}); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) History(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "History", apperrors.Unauthorized("Authentication required"))
		return
	}

	history, err := h.service.History(r.Context(), actor.ID, actor.Role)
	if err != nil {
		h.writeError(w, "History", err)
		return
	}

	if err := httputil.WriteSuccess(w, history); err != nil {
		h.log.Error("failed to write success response", "handler", "History", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/properties/:id/bookings", h.Create)
	router.POST("/api/v1/bookings/:id/cancel", h.Cancel)
	router.GET("/api/v1/bookings/history", h.History)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
