package service

import (
	"context"
	"errors"
	"testing"

	apperrors "vizin/pkg/errors"
	"vizin/pkg/model"

	"github.com/shopspring/decimal"
)

func viewIDs(views []model.BookingView) []string {
	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestHistory_Guest(t *testing.T) {
	f := newFixture()
	// today is 2030-01-10
	f.addBooking("past-1", "guest-1", "2029-12-01", "2029-12-05", model.BookingFinished)
	f.addBooking("past-2", "guest-1", "2029-12-20", "2030-01-09", model.BookingCanceled)
	f.addBooking("ends-today", "guest-1", "2030-01-08", "2030-01-10", model.BookingConfirmed)
	f.addBooking("starts-today", "guest-1", "2030-01-10", "2030-01-12", model.BookingCreated)
	f.addBooking("future", "guest-1", "2030-02-01", "2030-02-03", model.BookingCreated)
	f.addBooking("other-guest", "guest-2", "2029-12-01", "2029-12-03", model.BookingFinished)

	history, err := f.service.History(context.Background(), "guest-1", model.RoleGuest)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}

	if got, want := viewIDs(history.Ongoing), []string{"starts-today", "ends-today"}; !equalIDs(got, want) {
		t.Errorf("ongoing = %v, want %v", got, want)
	}
	if got, want := viewIDs(history.Past), []string{"past-2", "past-1"}; !equalIDs(got, want) {
		t.Errorf("past = %v, want %v", got, want)
	}
	for _, v := range append(history.Ongoing, history.Past...) {
		if v.PropertyTitle != "Beach House" {
			t.Errorf("booking %s has title %q", v.ID, v.PropertyTitle)
		}
	}
}

func TestHistory_EmptyRoleDefaultsToGuest(t *testing.T) {
	f := newFixture()
	f.addBooking("past-1", "guest-1", "2029-12-01", "2029-12-05", model.BookingFinished)

	history, err := f.service.History(context.Background(), "guest-1", "")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history.Past) != 1 {
		t.Errorf("past = %v, want [past-1]", viewIDs(history.Past))
	}
}

func TestHistory_Host(t *testing.T) {
	f := newFixture()
	f.store.AddProperty(model.Property{ID: "prop-2", OwnerID: "host-1", Title: "Cabin", Capacity: 2, NightlyPrice: decimal.NewFromInt(80)})
	f.store.AddProperty(model.Property{ID: "prop-3", OwnerID: "host-2", Title: "Loft", Capacity: 2, NightlyPrice: decimal.NewFromInt(80)})

	f.addBooking("b-1", "guest-1", "2030-01-09", "2030-01-11", model.BookingConfirmed)
	f.store.AddBooking(model.Booking{ID: "b-2", GuestID: "guest-2", PropertyID: "prop-2", CheckIn: date("2029-11-01"), CheckOut: date("2029-11-03"), Status: model.BookingFinished})
	f.store.AddBooking(model.Booking{ID: "b-3", GuestID: "guest-2", PropertyID: "prop-3", CheckIn: date("2029-11-01"), CheckOut: date("2029-11-03"), Status: model.BookingFinished})

	history, err := f.service.History(context.Background(), "host-1", model.RoleHost)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if got := viewIDs(history.Ongoing); !equalIDs(got, []string{"b-1"}) {
		t.Errorf("ongoing = %v, want [b-1]", got)
	}
	if got := viewIDs(history.Past); !equalIDs(got, []string{"b-2"}) {
		t.Errorf("past = %v, want [b-2]", got)
	}
	if history.Past[0].PropertyTitle != "Cabin" {
		t.Errorf("title = %q, want Cabin", history.Past[0].PropertyTitle)
	}
}

func TestHistory_HostWithoutProperties(t *testing.T) {
	f := newFixture()

	history, err := f.service.History(context.Background(), "host-9", model.RoleHost)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history.Ongoing) != 0 || len(history.Past) != 0 {
		t.Errorf("expected empty history, got %+v", history)
	}
}

func TestHistory_StorageFailure(t *testing.T) {
	f := newFixture()
	f.store.FailOn("bookings.FindByGuest", errors.New("timeout"))

	_, err := f.service.History(context.Background(), "guest-1", model.RoleGuest)
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("History() error = %v, want INTERNAL_ERROR", err)
	}
}
