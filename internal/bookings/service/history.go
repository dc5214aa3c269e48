package service

import (
	"context"

	"vizin/pkg/clock"
	apperrors "vizin/pkg/errors"
	"vizin/pkg/model"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// History splits the user's bookings into ongoing and past. Guests see their
// own bookings; hosts see bookings of the properties they own. Bookings that
// start after today belong to neither list.
func (s *bookingService) History(ctx context.Context, userID string, role model.Role) (*model.BookingHistory, error) {
	role = role.Normalize()

	ctx, span := tracer.Start(ctx, "BookingService.History", trace.WithAttributes(
		attribute.String("user.role", string(role)),
	))
	defer span.End()

	bookings, err := s.bookingsFor(ctx, userID, role)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	titles, err := s.propertyTitles(ctx, bookings)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	today := clock.Today(s.clock)
	history := &model.BookingHistory{
		Ongoing: []model.BookingView{},
		Past:    []model.BookingView{},
	}
	for _, b := range bookings {
		stay := b.Stay()
		switch {
		case stay.Ongoing(today):
			history.Ongoing = append(history.Ongoing, model.NewBookingView(b, titles[b.PropertyID]))
		case stay.Past(today):
			history.Past = append(history.Past, model.NewBookingView(b, titles[b.PropertyID]))
		}
	}

	s.cfg.Log.Debug("Booking history loaded",
		"user_id", userID,
		"role", role,
		"ongoing", len(history.Ongoing),
		"past", len(history.Past),
	)
	return history, nil
}

func (s *bookingService) bookingsFor(ctx context.Context, userID string, role model.Role) ([]*model.Booking, error) {
	if role == model.RoleHost {
		propertyIDs, err := s.properties.FindIDsByOwner(ctx, userID)
		if err != nil {
			s.cfg.Log.Error("Failed to list host properties", "user_id", userID, "error", err)
			return nil, apperrors.Internal("Failed to load properties", err)
		}
		bookings, err := s.repo.FindByProperties(ctx, propertyIDs)
		if err != nil {
			s.cfg.Log.Error("Failed to list host bookings", "user_id", userID, "error", err)
			return nil, apperrors.Internal("Failed to load bookings", err)
		}
		return bookings, nil
	}

	bookings, err := s.repo.FindByGuest(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list guest bookings", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to load bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) propertyTitles(ctx context.Context, bookings []*model.Booking) (map[string]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, b := range bookings {
		if _, ok := seen[b.PropertyID]; !ok {
			seen[b.PropertyID] = struct{}{}
			ids = append(ids, b.PropertyID)
		}
	}

	properties, err := s.properties.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to load property titles", "error", err)
		return nil, apperrors.Internal("Failed to load properties", err)
	}

	titles := make(map[string]string, len(properties))
	for id, p := range properties {
		titles[id] = p.Title
	}
	return titles, nil
}
