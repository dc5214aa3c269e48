package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	bookingsrepo "vizin/internal/bookings/repository"
	propertiesrepo "vizin/internal/properties/repository"
	"vizin/pkg/config"
	apperrors "vizin/pkg/errors"
	"vizin/pkg/model"
	"vizin/pkg/sanitizer"
)

var header = []string{"Property", "Guest", "CheckIn", "CheckOut", "Amount", "Status"}

type Row struct {
	Property string
	Guest    string
	CheckIn  string
	CheckOut string
	Amount   string
	Status   string
}

type ReportService interface {
	HostBookings(ctx context.Context, hostID string) ([]Row, error)
}

type reportService struct {
	bookings   bookingsrepo.BookingRepository
	properties propertiesrepo.PropertyRepository
	cfg        *config.Config
}

func NewReportService(bookings bookingsrepo.BookingRepository, properties propertiesrepo.PropertyRepository, cfg *config.Config) ReportService {
	return &reportService{
		bookings:   bookings,
		properties: properties,
		cfg:        cfg,
	}
}

// HostBookings lists every booking of the host's properties, newest check-in
// first. It only reads committed data.
func (s *reportService) HostBookings(ctx context.Context, hostID string) ([]Row, error) {
	propertyIDs, err := s.properties.FindIDsByOwner(ctx, hostID)
	if err != nil {
		s.cfg.Log.Error("Failed to list host properties", "host_id", hostID, "error", err)
		return nil, apperrors.Internal("Failed to load properties", err)
	}

	bookings, err := s.bookings.FindByProperties(ctx, propertyIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to list host bookings", "host_id", hostID, "error", err)
		return nil, apperrors.Internal("Failed to load bookings", err)
	}

	properties, err := s.properties.FindByIDs(ctx, propertyIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load property titles", "host_id", hostID, "error", err)
		return nil, apperrors.Internal("Failed to load properties", err)
	}

	rows := make([]Row, 0, len(bookings))
	for _, b := range bookings {
		title := b.PropertyID
		if p, ok := properties[b.PropertyID]; ok {
			title = p.Title
		}
		rows = append(rows, Row{
			Property: sanitizer.NormalizeCell(title),
			Guest:    b.GuestID,
			CheckIn:  b.CheckIn.UTC().Format(model.DateLayout),
			CheckOut: b.CheckOut.UTC().Format(model.DateLayout),
			Amount:   b.TotalCost.StringFixed(2),
			Status:   b.Status.String(),
		})
	}

	s.cfg.Log.Debug("Booking report built", "host_id", hostID, "rows", len(rows))
	return rows, nil
}

// WriteCSV renders rows as a semicolon separated table with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Property, r.Guest, r.CheckIn, r.CheckOut, r.Amount, r.Status}); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
