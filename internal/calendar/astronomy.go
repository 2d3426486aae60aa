package calendar

import (
	"fmt"
	"math"
	"time"

	"github.com/mooncaker816/learnmeeus/v3/julian"
	"github.com/mooncaker816/learnmeeus/v3/moonphase"
	"github.com/mooncaker816/learnmeeus/v3/solstice"
)

// Season identifies one of the four yearly equinox/solstice events, in the
// order they occur within a calendar year.
type Season int

const (
	MarchEquinox Season = iota
	JuneSolstice
	SeptemberEquinox
	DecemberSolstice
)

// Seasons lists all season events in calendar order.
var Seasons = []Season{MarchEquinox, JuneSolstice, SeptemberEquinox, DecemberSolstice}

func (s Season) String() string {
	switch s {
	case MarchEquinox:
		return "March equinox"
	case JuneSolstice:
		return "June solstice"
	case SeptemberEquinox:
		return "September equinox"
	case DecemberSolstice:
		return "December solstice"
	}
	return fmt.Sprintf("Season(%d)", int(s))
}

// Ephemeris answers the astronomical questions theme generators need.
// Results are calendar dates (midnight UTC).
type Ephemeris interface {
	// SeasonEvent returns the date of the given equinox or solstice in year.
	SeasonEvent(year int, s Season) (time.Time, error)
	// NextFullMoon returns the date of the first full moon at or after from.
	NextFullMoon(from time.Time) (time.Time, error)
}

// Range in which the Meeus polynomials used by MeeusEphemeris are accurate.
const (
	MinEphemerisYear = 1000
	MaxEphemerisYear = 3000
)

// lunationsPerYear is the mean number of synodic months per Julian year used
// by Meeus to number lunations.
const lunationsPerYear = 12.3685

// MeeusEphemeris implements Ephemeris with the algorithms of Jean Meeus'
// Astronomical Algorithms. Event instants are taken as UTC; the difference
// between dynamical and universal time (about a minute today) is ignored.
type MeeusEphemeris struct{}

// NewMeeusEphemeris returns the default ephemeris.
func NewMeeusEphemeris() MeeusEphemeris {
	return MeeusEphemeris{}
}

// SeasonEvent implements Ephemeris.
func (MeeusEphemeris) SeasonEvent(year int, s Season) (time.Time, error) {
	if year < MinEphemerisYear || year > MaxEphemerisYear {
		return time.Time{}, fmt.Errorf("%s %d: %w", s, year, ErrYearOutOfRange)
	}

	var jde float64
	switch s {
	case MarchEquinox:
		jde = solstice.March(year)
	case JuneSolstice:
		jde = solstice.June(year)
	case SeptemberEquinox:
		jde = solstice.September(year)
	case DecemberSolstice:
		jde = solstice.December(year)
	default:
		return time.Time{}, fmt.Errorf("unknown season %d", int(s))
	}

	return Truncate(JDEToTime(jde)), nil
}

// NextFullMoon implements Ephemeris.
func (MeeusEphemeris) NextFullMoon(from time.Time) (time.Time, error) {
	if from.Year() < MinEphemerisYear || from.Year() > MaxEphemerisYear {
		return time.Time{}, fmt.Errorf("full moon after %s: %w", FormatDate(from), ErrYearOutOfRange)
	}

	// moonphase.Full numbers lunations from the decimal year, so start well
	// before from and step one lunation at a time.
	y := decimalYear(from.AddDate(0, 0, -40))
	for i := 0; i < 8; i++ {
		moment := JDEToTime(moonphase.Full(y))
		if !moment.Before(from) {
			return Truncate(moment), nil
		}
		y += 1 / lunationsPerYear
	}

	return time.Time{}, fmt.Errorf("no full moon found after %s", FormatDate(from))
}

// JDEToTime converts a Julian ephemeris day to a UTC time.
func JDEToTime(jde float64) time.Time {
	y, m, d := julian.JDToCalendar(jde)
	day := math.Floor(d)
	frac := d - day
	return Date(y, time.Month(m), int(day)).Add(time.Duration(frac * float64(24*time.Hour)))
}

// decimalYear returns t as a fractional year, e.g. 2024.5 for early July.
func decimalYear(t time.Time) float64 {
	start := Date(t.Year(), time.January, 1)
	end := Date(t.Year()+1, time.January, 1)
	return float64(t.Year()) + t.Sub(start).Hours()/end.Sub(start).Hours()
}
