package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(offset int) time.Time {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestStay_NightsAndCost(t *testing.T) {
	tests := []struct {
		name      string
		stay      Stay
		price     string
		wantNight int
		wantCost  string
	}{
		{"two nights", Stay{day(1), day(3)}, "100", 2, "200"},
		{"same day floors to one", Stay{day(1), day(1)}, "150.50", 1, "150.5"},
		{"fractional price", Stay{day(0), day(7)}, "89.99", 7, "629.93"},
		{"time of day ignored", Stay{day(1).Add(22 * time.Hour), day(2).Add(time.Hour)}, "80", 1, "80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stay.Nights(); got != tt.wantNight {
				t.Errorf("Nights() = %d, want %d", got, tt.wantNight)
			}
			got := tt.stay.Cost(decimal.RequireFromString(tt.price))
			if !got.Equal(decimal.RequireFromString(tt.wantCost)) {
				t.Errorf("Cost() = %s, want %s", got, tt.wantCost)
			}
		})
	}
}

func TestStay_Overlaps(t *testing.T) {
	base := Stay{day(2), day(5)}
	tests := []struct {
		name  string
		other Stay
		want  bool
	}{
		{"identical", Stay{day(2), day(5)}, true},
		{"inside", Stay{day(3), day(4)}, true},
		{"straddles start", Stay{day(0), day(3)}, true},
		{"straddles end", Stay{day(4), day(8)}, true},
		{"ends at check-in", Stay{day(0), day(2)}, false},
		{"starts at check-out", Stay{day(5), day(6)}, false},
		{"far before", Stay{day(-5), day(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps() not symmetric")
			}
		})
	}
}

func TestStay_Partition(t *testing.T) {
	today := day(0).Add(15 * time.Hour)
	tests := []struct {
		name        string
		stay        Stay
		wantOngoing bool
		wantPast    bool
	}{
		{"straddles today", Stay{day(-1), day(1)}, true, false},
		{"checks out today", Stay{day(-2), day(0)}, true, false},
		{"checks in today", Stay{day(0), day(2)}, true, false},
		{"ended yesterday", Stay{day(-3), day(-1)}, false, true},
		{"future", Stay{day(5), day(7)}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stay.Ongoing(today); got != tt.wantOngoing {
				t.Errorf("Ongoing() = %v, want %v", got, tt.wantOngoing)
			}
			if got := tt.stay.Past(today); got != tt.wantPast {
				t.Errorf("Past() = %v, want %v", got, tt.wantPast)
			}
		})
	}
}

func TestNewBookingView(t *testing.T) {
	b := &Booking{
		ID:         "b-1",
		PropertyID: "p-1",
		CheckIn:    day(1),
		CheckOut:   day(3),
		Status:     BookingCreated,
		TotalCost:  decimal.NewFromInt(200),
	}
	v := NewBookingView(b, "Beach House")
	if v.TotalNights != 2 {
		t.Errorf("expected 2 nights, got %d", v.TotalNights)
	}
	if v.CheckIn != "2026-03-11" || v.CheckOut != "2026-03-13" {
		t.Errorf("unexpected dates %s..%s", v.CheckIn, v.CheckOut)
	}
	if v.PropertyTitle != "Beach House" || v.Status != "Created" {
		t.Errorf("unexpected view %+v", v)
	}
}
