package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vizin/internal/events"
	"vizin/internal/testutil"
	"vizin/pkg/clock"
	apperrors "vizin/pkg/errors"
	"vizin/pkg/model"

	"github.com/shopspring/decimal"
)

var now = time.Date(2030, 1, 10, 9, 30, 0, 0, time.UTC)

func date(s string) time.Time {
	d, err := clock.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	store     *testutil.Store
	publisher *testutil.RecordingPublisher
	service   BookingService
}

func newFixture() *fixture {
	store := testutil.NewStore()
	store.AddProperty(model.Property{
		ID:           "prop-1",
		OwnerID:      "host-1",
		Title:        "Beach House",
		Capacity:     4,
		NightlyPrice: decimal.RequireFromString("100.50"),
	})
	publisher := &testutil.RecordingPublisher{}

	svc := NewBookingService(
		store.BookingRepository(),
		store.GuardRepository(),
		store.PropertyRepository(),
		publisher,
		clock.Fixed(now),
		testutil.Config(),
	)
	return &fixture{store: store, publisher: publisher, service: svc}
}

func (f *fixture) addBooking(id, guest, in, out string, status model.BookingStatus) {
	f.store.AddBooking(model.Booking{
		ID:         id,
		GuestID:    guest,
		PropertyID: "prop-1",
		CheckIn:    date(in),
		CheckOut:   date(out),
		GuestCount: 2,
		Status:     status,
		TotalCost:  decimal.NewFromInt(300),
	})
}

func input(in, out string, guests int) model.CreateBookingInput {
	return model.CreateBookingInput{
		GuestID:    "guest-1",
		PropertyID: "prop-1",
		CheckIn:    date(in),
		CheckOut:   date(out),
		GuestCount: guests,
	}
}

func TestCreate_Success(t *testing.T) {
	f := newFixture()

	view, err := f.service.Create(context.Background(), input("2030-01-12", "2030-01-15", 2))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if view.TotalNights != 3 {
		t.Errorf("TotalNights = %d, want 3", view.TotalNights)
	}
	if !view.TotalCost.Equal(decimal.RequireFromString("301.50")) {
		t.Errorf("TotalCost = %s, want 301.50", view.TotalCost)
	}
	if view.Status != "Created" || view.PropertyTitle != "Beach House" {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.CheckIn != "2030-01-12" || view.CheckOut != "2030-01-15" {
		t.Errorf("unexpected dates: %s..%s", view.CheckIn, view.CheckOut)
	}

	stored, ok := f.store.Booking(view.ID)
	if !ok {
		t.Fatal("booking was not persisted")
	}
	if stored.Status != model.BookingCreated || stored.GuestID != "guest-1" {
		t.Errorf("unexpected stored booking: %+v", stored)
	}
	if !stored.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, now)
	}
	if f.store.GuardVersion("prop-1") != 1 {
		t.Errorf("guard was not touched")
	}

	if got := f.publisher.Types(); len(got) != 1 || got[0] != events.BookingCreated {
		t.Errorf("published %v, want [booking.created]", got)
	}
}

func TestCreate_CheckInTodayAllowed(t *testing.T) {
	f := newFixture()

	if _, err := f.service.Create(context.Background(), input("2030-01-10", "2030-01-11", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestCreate_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		input    model.CreateBookingInput
		existing func(f *fixture)
		wantCode string
		wantMsg  string
	}{
		{
			name:     "check-in in the past",
			input:    input("2030-01-09", "2030-01-12", 2),
			wantCode: apperrors.CodeInvalidDate,
			wantMsg:  "check-in in the past",
		},
		{
			name:     "check-out equals check-in",
			input:    input("2030-01-12", "2030-01-12", 2),
			wantCode: apperrors.CodeInvalidDate,
			wantMsg:  "check-out must follow check-in",
		},
		{
			name:     "past date checked before property",
			input:    model.CreateBookingInput{GuestID: "guest-1", PropertyID: "missing", CheckIn: date("2030-01-01"), CheckOut: date("2030-01-02"), GuestCount: 1},
			wantCode: apperrors.CodeInvalidDate,
		},
		{
			name:     "unknown property",
			input:    model.CreateBookingInput{GuestID: "guest-1", PropertyID: "missing", CheckIn: date("2030-01-12"), CheckOut: date("2030-01-13"), GuestCount: 1},
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "capacity exceeded",
			input:    input("2030-01-12", "2030-01-13", 5),
			wantCode: apperrors.CodeCapacityExceeded,
		},
		{
			name:  "capacity checked before overlap",
			input: input("2030-01-12", "2030-01-13", 5),
			existing: func(f *fixture) {
				f.addBooking("b-1", "guest-2", "2030-01-11", "2030-01-14", model.BookingConfirmed)
			},
			wantCode: apperrors.CodeCapacityExceeded,
		},
		{
			name:  "overlapping booking",
			input: input("2030-01-12", "2030-01-15", 2),
			existing: func(f *fixture) {
				f.addBooking("b-1", "guest-2", "2030-01-14", "2030-01-16", model.BookingCreated)
			},
			wantCode: apperrors.CodeConflict,
			wantMsg:  "already booked for this period",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.existing != nil {
				tt.existing(f)
			}
			before := f.store.BookingCount()

			_, err := f.service.Create(context.Background(), tt.input)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("Create() error = %v, want code %s", err, tt.wantCode)
			}
			if tt.wantMsg != "" && apperrors.AsAppError(err).Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apperrors.AsAppError(err).Message, tt.wantMsg)
			}
			if f.store.BookingCount() != before {
				t.Error("no booking should be persisted on failure")
			}
			if len(f.publisher.Events()) != 0 {
				t.Error("no event should be published on failure")
			}
		})
	}
}

func TestCreate_AdjacentAndCanceledDoNotConflict(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", "guest-2", "2030-01-10", "2030-01-12", model.BookingConfirmed)
	f.addBooking("b-2", "guest-2", "2030-01-12", "2030-01-20", model.BookingCanceled)
	f.addBooking("b-3", "guest-2", "2030-01-15", "2030-01-18", model.BookingCreated)

	if _, err := f.service.Create(context.Background(), input("2030-01-12", "2030-01-15", 2)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestCreate_StorageFailureIsInternal(t *testing.T) {
	f := newFixture()
	f.store.FailOn("bookings.Create", errors.New("connection reset"))

	_, err := f.service.Create(context.Background(), input("2030-01-12", "2030-01-15", 2))
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("Create() error = %v, want INTERNAL_ERROR", err)
	}
	if f.store.GuardVersion("prop-1") != 0 {
		t.Error("guard write should roll back with the transaction")
	}
}

func TestCreate_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture()
	f.publisher.Err = errors.New("broker down")

	if _, err := f.service.Create(context.Background(), input("2030-01-12", "2030-01-15", 2)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if f.store.BookingCount() != 1 {
		t.Error("booking should be persisted")
	}
}

func TestCreate_ConcurrentRequestsBookOnce(t *testing.T) {
	f := newFixture()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Create(context.Background(), input("2030-01-12", "2030-01-15", 2))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case apperrors.HasCode(err, apperrors.CodeConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != workers-1 {
		t.Errorf("ok=%d conflicts=%d, want 1 and %d", ok, conflicts, workers-1)
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name      string
		status    model.BookingStatus
		bookingID string
		requester string
		wantCode  string
		wantMsg   string
	}{
		{name: "created booking", status: model.BookingCreated, bookingID: "b-1", requester: "guest-1"},
		{name: "confirmed booking", status: model.BookingConfirmed, bookingID: "b-1", requester: "guest-1"},
		{name: "unknown booking", status: model.BookingCreated, bookingID: "nope", requester: "guest-1", wantCode: apperrors.CodeNotFound},
		{name: "other guest", status: model.BookingCreated, bookingID: "b-1", requester: "guest-2", wantCode: apperrors.CodeForbidden},
		{name: "already canceled", status: model.BookingCanceled, bookingID: "b-1", requester: "guest-1", wantCode: apperrors.CodeConflict, wantMsg: "already canceled"},
		{name: "finished", status: model.BookingFinished, bookingID: "b-1", requester: "guest-1", wantCode: apperrors.CodeConflict, wantMsg: "cannot cancel a finished booking"},
		{name: "ownership checked before status", status: model.BookingCanceled, bookingID: "b-1", requester: "guest-2", wantCode: apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.addBooking("b-1", "guest-1", "2030-01-12", "2030-01-15", tt.status)

			err := f.service.Cancel(context.Background(), tt.bookingID, tt.requester)

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Cancel() error = %v", err)
				}
				stored, _ := f.store.Booking("b-1")
				if stored.Status != model.BookingCanceled {
					t.Errorf("status = %s, want Canceled", stored.Status)
				}
				if stored.CanceledAt == nil || !stored.CanceledAt.Equal(now) {
					t.Errorf("CanceledAt = %v, want %v", stored.CanceledAt, now)
				}
				if got := f.publisher.Types(); len(got) != 1 || got[0] != events.BookingCanceled {
					t.Errorf("published %v, want [booking.canceled]", got)
				}
				return
			}

			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("Cancel() error = %v, want code %s", err, tt.wantCode)
			}
			if tt.wantMsg != "" && apperrors.AsAppError(err).Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apperrors.AsAppError(err).Message, tt.wantMsg)
			}
			stored, _ := f.store.Booking("b-1")
			if stored.Status != tt.status {
				t.Errorf("status changed to %s on failure", stored.Status)
			}
		})
	}
}

func TestCancel_SecondCallConflicts(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", "guest-1", "2030-01-12", "2030-01-15", model.BookingCreated)

	if err := f.service.Cancel(context.Background(), "b-1", "guest-1"); err != nil {
		t.Fatalf("first Cancel() error = %v", err)
	}
	err := f.service.Cancel(context.Background(), "b-1", "guest-1")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("second Cancel() error = %v, want CONFLICT", err)
	}
}

func TestCancel_FreesThePeriod(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", "guest-2", "2030-01-12", "2030-01-15", model.BookingConfirmed)

	if err := f.service.Cancel(context.Background(), "b-1", "guest-2"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if _, err := f.service.Create(context.Background(), input("2030-01-12", "2030-01-15", 2)); err != nil {
		t.Fatalf("Create() after cancel error = %v", err)
	}
}
