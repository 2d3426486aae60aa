// Package calendar provides the date arithmetic behind theme day generation:
// Easter, ISO weekdays and weeks, month boundaries and astronomical events.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Supported range for CalculateEaster. The Gauss method is only defined for
// the Gregorian calendar (from 1583), and its century tables are commonly
// validated up to 4099.
const (
	MinEasterYear = 1583
	MaxEasterYear = 4099
)

// ErrYearOutOfRange is returned when a calculation is asked for a year it
// cannot answer reliably.
var ErrYearOutOfRange = errors.New("year out of supported range")

// CalculateEaster calculates the date of Easter Sunday for a given year
// using Gauss's Easter algorithm for the Gregorian calendar.
//
// The generic formula gives March 22 + d + e. Two parameter combinations
// would push that past April 25 and are replaced by fixed dates:
//   - d = 29 and e = 6 gives April 19
//   - d = 28 and e = 6 gives April 18, but only when (11M + 11) mod 30 < 19
//
// Without that last guard years such as 1734 and 1886 land a week early.
func CalculateEaster(year int) (time.Time, error) {
	if year < MinEasterYear || year > MaxEasterYear {
		return time.Time{}, fmt.Errorf("easter %d: %w", year, ErrYearOutOfRange)
	}

	a := year % 19
	b := year % 4
	c := year % 7

	p := year / 100
	q := (13 + 8*p) / 25
	m := (15 - q + p - p/4) % 30
	n := (4 + p - p/4) % 7
	d := (19*a + m) % 30
	e := (2*b + 4*c + 6*d + n) % 7
	days := 22 + d + e

	switch {
	case d == 29 && e == 6:
		return Date(year, time.April, 19), nil
	case d == 28 && e == 6 && (11*m+11)%30 < 19:
		return Date(year, time.April, 18), nil
	case days > 31:
		return Date(year, time.April, days-31), nil
	default:
		return Date(year, time.March, days), nil
	}
}

// EasterOffset returns Easter Sunday shifted by offset days.
func EasterOffset(year, offset int) (time.Time, error) {
	easter, err := CalculateEaster(year)
	if err != nil {
		return time.Time{}, err
	}
	return easter.AddDate(0, 0, offset), nil
}

// FourthAdvent returns the fourth Sunday of Advent: the Sunday on or before
// December 24.
func FourthAdvent(year int) time.Time {
	christmasEve := Date(year, time.December, 24)
	return christmasEve.AddDate(0, 0, -(ISOWeekday(christmasEve) % 7))
}

// CalculateAdvent calculates the date of the first Sunday of Advent
// (three weeks before the fourth).
func CalculateAdvent(year int) time.Time {
	return FourthAdvent(year).AddDate(0, 0, -21)
}
