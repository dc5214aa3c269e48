package service

import (
	"context"
	"errors"

	bookingserrors "vizin/internal/bookings/errors"
	"vizin/internal/bookings/repository"
	"vizin/internal/events"
	propertieserrors "vizin/internal/properties/errors"
	propertiesrepo "vizin/internal/properties/repository"
	"vizin/pkg/clock"
	"vizin/pkg/config"
	apperrors "vizin/pkg/errors"
	"vizin/pkg/model"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const cancelAttempts = 3

var tracer = otel.Tracer("vizin/internal/bookings")

type BookingService interface {
	Create(ctx context.Context, input model.CreateBookingInput) (*model.BookingView, error)
	Cancel(ctx context.Context, bookingID, requesterID string) error
	History(ctx context.Context, userID string, role model.Role) (*model.BookingHistory, error)
}

type bookingService struct {
	repo       repository.BookingRepository
	guards     repository.PropertyGuardRepository
	properties propertiesrepo.PropertyRepository
	publisher  events.Publisher
	clock      clock.Clock
	cfg        *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	guards repository.PropertyGuardRepository,
	properties propertiesrepo.PropertyRepository,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		guards:     guards,
		properties: properties,
		publisher:  publisher,
		clock:      clk,
		cfg:        cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, input model.CreateBookingInput) (*model.BookingView, error) {
	ctx, span := tracer.Start(ctx, "BookingService.Create", trace.WithAttributes(
		attribute.String("property.id", input.PropertyID),
		attribute.Int("booking.guest_count", input.GuestCount),
	))
	defer span.End()

	booking, property, err := s.create(ctx, input)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"booking_id", booking.ID,
		"property_id", booking.PropertyID,
		"guest_id", booking.GuestID,
		"check_in", booking.CheckIn.Format(model.DateLayout),
		"check_out", booking.CheckOut.Format(model.DateLayout),
		"total_cost", booking.TotalCost.String(),
	)

	event := events.New(events.BookingCreated, booking.ID, s.clock.Now())
	event.GuestID = booking.GuestID
	event.PropertyID = booking.PropertyID
	event.CheckIn = booking.CheckIn.Format(model.DateLayout)
	event.CheckOut = booking.CheckOut.Format(model.DateLayout)
	event.Amount = booking.TotalCost
	event.Status = booking.Status.String()
	s.publish(ctx, event)

	view := model.NewBookingView(booking, property.Title)
	return &view, nil
}

func (s *bookingService) create(ctx context.Context, input model.CreateBookingInput) (*model.Booking, *model.Property, error) {
	today := clock.Today(s.clock)
	checkIn := clock.DateOf(input.CheckIn)
	checkOut := clock.DateOf(input.CheckOut)

	if checkIn.Before(today) {
		return nil, nil, apperrors.InvalidDate("check-in in the past")
	}
	if !checkOut.After(checkIn) {
		return nil, nil, apperrors.InvalidDate("check-out must follow check-in")
	}

	property, err := s.properties.FindByID(ctx, input.PropertyID)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, nil, apperrors.NotFoundWithID("property", input.PropertyID)
		}
		s.cfg.Log.Error("Failed to load property", "property_id", input.PropertyID, "error", err)
		return nil, nil, apperrors.Internal("Failed to load property", err)
	}

	if input.GuestCount > property.Capacity {
		return nil, nil, apperrors.CapacityExceeded(input.GuestCount, property.Capacity)
	}

	stay := model.Stay{CheckIn: checkIn, CheckOut: checkOut}
	booking := &model.Booking{
		ID:         uuid.NewString(),
		GuestID:    input.GuestID,
		PropertyID: property.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: input.GuestCount,
		Status:     model.BookingCreated,
		TotalCost:  stay.Cost(property.NightlyPrice),
		CreatedAt:  s.clock.Now().UTC(),
	}

	// The guard write makes concurrent creations on one property conflict, so
	// the overlap check below always sees every committed booking.
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.guards.Touch(txCtx, property.ID); err != nil {
			return apperrors.Internal("Failed to lock property calendar", err)
		}

		overlapping, err := s.repo.FindActiveOverlapping(txCtx, property.ID, checkIn, checkOut)
		if err != nil {
			return apperrors.Internal("Failed to check availability", err)
		}
		if len(overlapping) > 0 {
			return apperrors.Conflict("already booked for this period")
		}

		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			s.cfg.Log.Warn("Booking rejected: period unavailable",
				"property_id", property.ID,
				"check_in", checkIn.Format(model.DateLayout),
				"check_out", checkOut.Format(model.DateLayout),
			)
			return nil, nil, err
		}
		s.cfg.Log.Error("Failed to create booking", "property_id", property.ID, "error", err)
		if apperrors.IsAppError(err) {
			return nil, nil, err
		}
		return nil, nil, apperrors.Internal("Failed to create booking", err)
	}

	return booking, property, nil
}

func (s *bookingService) Cancel(ctx context.Context, bookingID, requesterID string) error {
	ctx, span := tracer.Start(ctx, "BookingService.Cancel", trace.WithAttributes(
		attribute.String("booking.id", bookingID),
	))
	defer span.End()

	booking, err := s.cancel(ctx, bookingID, requesterID)
	if err != nil {
		recordError(span, err)
		return err
	}

	s.cfg.Log.Info("Booking canceled successfully", "booking_id", bookingID, "guest_id", requesterID)

	event := events.New(events.BookingCanceled, booking.ID, s.clock.Now())
	event.GuestID = booking.GuestID
	event.PropertyID = booking.PropertyID
	event.CheckIn = booking.CheckIn.Format(model.DateLayout)
	event.CheckOut = booking.CheckOut.Format(model.DateLayout)
	event.Amount = booking.TotalCost
	event.Status = model.BookingCanceled.String()
	s.publish(ctx, event)

	return nil
}

// cancel retries when a concurrent payment moves the booking between the read
// and the conditional update.
func (s *bookingService) cancel(ctx context.Context, bookingID, requesterID string) (*model.Booking, error) {
	for attempt := 1; ; attempt++ {
		booking, err := s.repo.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return nil, apperrors.NotFoundWithID("booking", bookingID)
			}
			s.cfg.Log.Error("Failed to load booking", "booking_id", bookingID, "error", err)
			return nil, apperrors.Internal("Failed to load booking", err)
		}

		if booking.GuestID != requesterID {
			s.cfg.Log.Warn("Cancel rejected: requester is not the guest",
				"booking_id", bookingID,
				"requester_id", requesterID,
			)
			return nil, apperrors.Forbidden("not authorized to cancel this booking")
		}

		next, err := booking.Status.Cancel()
		if err != nil {
			return nil, cancelError(err)
		}

		canceledAt := s.clock.Now().UTC()
		err = s.repo.UpdateStatus(ctx, booking.ID, booking.Status, next, &canceledAt)
		if err == nil {
			return booking, nil
		}
		if !errors.Is(err, bookingserrors.ErrStatusChanged) || attempt == cancelAttempts {
			s.cfg.Log.Error("Failed to cancel booking", "booking_id", bookingID, "error", err)
			return nil, apperrors.Internal("Failed to cancel booking", err)
		}
		s.cfg.Log.Debug("Booking changed during cancel, retrying", "booking_id", bookingID, "attempt", attempt)
	}
}

func cancelError(err error) error {
	switch {
	case errors.Is(err, model.ErrAlreadyCanceled):
		return apperrors.Conflict("already canceled")
	case errors.Is(err, model.ErrBookingFinished):
		return apperrors.Conflict("cannot cancel a finished booking")
	default:
		return apperrors.InvalidState(err.Error())
	}
}

func (s *bookingService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
