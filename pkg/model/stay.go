package model

import (
	"time"

	"github.com/shopspring/decimal"
	"vizin/pkg/clock"
)

// Stay is a half-open [CheckIn, CheckOut) interval of calendar dates.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Nights counts whole days between the two dates, with a floor of one.
func (s Stay) Nights() int {
	days := clock.DaysBetween(s.CheckIn, s.CheckOut)
	if days < 1 {
		return 1
	}
	return days
}

func (s Stay) Cost(nightlyPrice decimal.Decimal) decimal.Decimal {
	return nightlyPrice.Mul(decimal.NewFromInt(int64(s.Nights())))
}

func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(s.CheckOut)
}

// Ongoing holds when today lies within the stay, inclusive at both ends.
func (s Stay) Ongoing(today time.Time) bool {
	today = clock.DateOf(today)
	return !clock.DateOf(s.CheckIn).After(today) && !clock.DateOf(s.CheckOut).Before(today)
}

func (s Stay) Past(today time.Time) bool {
	return clock.DateOf(s.CheckOut).Before(clock.DateOf(today))
}
