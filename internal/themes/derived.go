package themes

import (
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// derived is a rule with exactly one date per year, computed from another
// movable day. It needs two samples to rule out coincidence.
type derived struct {
	name        string
	description string
	date        func(year int) (time.Time, error)
}

func (g derived) Name() string { return g.name }

func (g derived) Matches(_ string, dates []time.Time) bool {
	return hasSamples(dates, 2) && allOn(dates, g.date)
}

func (g derived) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	d := newDescriptor(theme, g.name)
	d.Description = g.description
	return d, nil
}

func (g derived) Generate(_ Descriptor, year int) (time.Time, error) {
	return g.date(year)
}

// Stockfish is the day before All Saints' Day.
func Stockfish() Generator {
	return derived{
		name:        "stockfish",
		description: "Dagen före alla helgons dag",
		date: func(year int) (time.Time, error) {
			return AllSaintsDay(year).AddDate(0, 0, -1), nil
		},
	}
}

// Caravan is six days before Midsummer Eve.
func Caravan() Generator {
	return derived{
		name:        "caravan",
		description: "Lördagen en vecka före midsommarafton",
		date: func(year int) (time.Time, error) {
			return MidsummerEve(year).AddDate(0, 0, -6), nil
		},
	}
}

// FuneralGreeting is the first full moon on or after November 1.
func FuneralGreeting(eph calendar.Ephemeris) Generator {
	return derived{
		name:        "funeral_greeting",
		description: "Första fullmånen från och med 1 november",
		date: func(year int) (time.Time, error) {
			return eph.NextFullMoon(calendar.Date(year, time.November, 1))
		},
	}
}

// NationalO is the first full moon on or after Midsummer Eve.
func NationalO(eph calendar.Ephemeris) Generator {
	return derived{
		name:        "national_o",
		description: "Första fullmånen från och med midsommarafton",
		date: func(year int) (time.Time, error) {
			return eph.NextFullMoon(MidsummerEve(year))
		},
	}
}
