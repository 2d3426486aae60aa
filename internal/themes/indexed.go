package themes

import (
	"fmt"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// indexed is a rule with a short list of candidate dates per year, such as
// the days of Easter. The descriptor records which candidate the history
// used so projection picks the same one in other years.
type indexed struct {
	name       string
	minSamples int
	candidates func(year int) ([]time.Time, error)
	describe   func(index int) string
}

func (g indexed) Name() string { return g.name }

// indexIn returns the position of t among its year's candidates, or -1.
func (g indexed) indexIn(t time.Time) int {
	dates, err := g.candidates(t.Year())
	if err != nil {
		return -1
	}
	return calendar.IndexOf(dates, t)
}

// Matches requires every date to sit at the same candidate position.
func (g indexed) Matches(_ string, dates []time.Time) bool {
	if !hasSamples(dates, g.minSamples) {
		return false
	}
	index := g.indexIn(dates[0])
	if index < 0 {
		return false
	}
	for _, d := range dates[1:] {
		if g.indexIn(d) != index {
			return false
		}
	}
	return true
}

func (g indexed) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	candidates, err := g.candidates(dates[0].Year())
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s config for %q: %w", g.name, theme, err)
	}
	index := calendar.IndexOf(candidates, dates[0])
	if index < 0 {
		return Descriptor{}, fmt.Errorf("%s config for %q: %s is not a candidate date",
			g.name, theme, calendar.FormatDate(dates[0]))
	}

	d := newDescriptor(theme, g.name)
	d.Params[ParamIndex] = index
	d.Description = g.describe(index)
	return d, nil
}

func (g indexed) Generate(d Descriptor, year int) (time.Time, error) {
	index, err := d.Param(ParamIndex)
	if err != nil {
		return time.Time{}, err
	}
	candidates, err := g.candidates(year)
	if err != nil {
		return time.Time{}, err
	}
	if index < 0 || index >= len(candidates) {
		return time.Time{}, invalidParam(d, ParamIndex, index)
	}
	return candidates[index], nil
}

// offsetsFrom returns a candidate function of anchor(year)+offset for each
// offset.
func offsetsFrom(anchor func(year int) (time.Time, error), offsets ...int) func(int) ([]time.Time, error) {
	return func(year int) ([]time.Time, error) {
		base, err := anchor(year)
		if err != nil {
			return nil, err
		}
		dates := make([]time.Time, len(offsets))
		for i, off := range offsets {
			dates[i] = base.AddDate(0, 0, off)
		}
		return dates, nil
	}
}

func countDescribed(suffix string) func(int) string {
	return func(index int) string {
		return calendar.CountDescriptor(index) + " " + suffix
	}
}

func labelled(labels ...string) func(int) string {
	return func(index int) string {
		if index < 0 || index >= len(labels) {
			return ""
		}
		return labels[index]
	}
}

// Easter covers Maundy Thursday through Easter Monday.
func Easter() Generator {
	return indexed{
		name:       "easter",
		minSamples: 1,
		candidates: offsetsFrom(calendar.CalculateEaster, -3, -2, -1, 0, 1),
		describe:   countDescribed("dagen i påsk"),
	}
}

// FastDays covers the four days of Shrovetide, Sunday to Ash Wednesday.
func FastDays() Generator {
	return indexed{
		name:       "fast_days",
		minSamples: 1,
		candidates: offsetsFrom(calendar.CalculateEaster, -49, -48, -47, -46),
		describe:   countDescribed("dagen i fastlagsdagarna"),
	}
}

// Ascension covers Ascension Day and the day after.
func Ascension() Generator {
	return indexed{
		name:       "ascension",
		minSamples: 1,
		candidates: offsetsFrom(calendar.CalculateEaster, 38, 39),
		describe:   countDescribed("dagen i Kristi himmelsfärd"),
	}
}

// Pentecost covers Whitsun Eve and Whit Sunday.
func Pentecost() Generator {
	return indexed{
		name:       "pentecost",
		minSamples: 1,
		candidates: offsetsFrom(calendar.CalculateEaster, 48, 49),
		describe:   countDescribed("dagen i pingst"),
	}
}

// Advent covers the four Sundays of Advent.
func Advent() Generator {
	return indexed{
		name:       "advent",
		minSamples: 1,
		candidates: offsetsFrom(func(year int) (time.Time, error) {
			return calendar.FourthAdvent(year), nil
		}, -21, -14, -7, 0),
		describe: countDescribed("advent"),
	}
}

// Thanksgiving covers Thanksgiving, Black Friday, Cyber Monday and Giving
// Tuesday.
func Thanksgiving() Generator {
	return indexed{
		name:       "thanksgiving",
		minSamples: 2,
		candidates: offsetsFrom(func(year int) (time.Time, error) {
			firstThursday := calendar.ShiftToWeekday(calendar.Date(year, time.November, 1), 4)
			return firstThursday.AddDate(0, 0, 21), nil
		}, 0, 1, 4, 5),
		describe: countDescribed("dagen i Thanksgiving"),
	}
}

// MidsummerEve is the Friday on or after June 19.
func MidsummerEve(year int) time.Time {
	return calendar.ShiftToWeekday(calendar.Date(year, time.June, 19), 5)
}

// Midsummer covers Midsummer Eve and Midsummer Day.
func Midsummer() Generator {
	return indexed{
		name:       "midsummer",
		minSamples: 2,
		candidates: offsetsFrom(func(year int) (time.Time, error) {
			return MidsummerEve(year), nil
		}, 0, 1),
		describe: labelled("Midsommarafton", "Midsommardagen"),
	}
}

// AllSaintsDay is the Saturday on or after October 31.
func AllSaintsDay(year int) time.Time {
	return calendar.ShiftToWeekday(calendar.Date(year, time.October, 31), 6)
}

// AllSaints covers All Saints' Day and the Sunday after.
func AllSaints() Generator {
	return indexed{
		name:       "all_saints",
		minSamples: 2,
		candidates: offsetsFrom(func(year int) (time.Time, error) {
			return AllSaintsDay(year), nil
		}, 0, 1),
		describe: countDescribed("dagen i alla helgons dag-helgen"),
	}
}

// EquinoxSolstice covers the four season events, in calendar order.
func EquinoxSolstice(eph calendar.Ephemeris) Generator {
	return indexed{
		name:       "equinox_solstice",
		minSamples: 1,
		candidates: func(year int) ([]time.Time, error) {
			dates := make([]time.Time, 0, len(calendar.Seasons))
			for _, s := range calendar.Seasons {
				d, err := eph.SeasonEvent(year, s)
				if err != nil {
					return nil, err
				}
				dates = append(dates, d)
			}
			return dates, nil
		},
		describe: labelled("Vårdagjämning", "Sommarsolstånd", "Höstdagjämning", "Vintersolstånd"),
	}
}
