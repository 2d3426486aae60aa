package themes

import (
	"fmt"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// SameDate falls on the same month and day every year.
type SameDate struct{}

func (SameDate) Name() string { return "same_date" }

func (SameDate) Matches(_ string, dates []time.Time) bool {
	if !hasSamples(dates, 1) {
		return false
	}
	for _, d := range dates {
		if d.Month() != dates[0].Month() || d.Day() != dates[0].Day() {
			return false
		}
	}
	return true
}

func (g SameDate) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	d := newDescriptor(theme, g.Name())
	d.Params[ParamMonth] = int(dates[0].Month())
	d.Params[ParamDay] = dates[0].Day()
	d.Description = dayMonth(dates[0]) + " varje år"
	return d, nil
}

// Generate returns ErrNoOccurrence for February 29 outside leap years.
func (SameDate) Generate(d Descriptor, year int) (time.Time, error) {
	month, err := d.paramInRange(ParamMonth, 1, 12)
	if err != nil {
		return time.Time{}, err
	}
	day, err := d.paramInRange(ParamDay, 1, 31)
	if err != nil {
		return time.Time{}, err
	}

	if !calendar.IsValidDate(year, time.Month(month), day) {
		if month == int(time.February) && day == 29 {
			return time.Time{}, ErrNoOccurrence
		}
		return time.Time{}, invalidParam(d, ParamDay, day)
	}
	return calendar.Date(year, time.Month(month), day), nil
}

// XthDayOfYear falls on the same ordinal day every year, counted from
// December 31 of the previous year.
type XthDayOfYear struct{}

func (XthDayOfYear) Name() string { return "xth_day_of_year" }

func (XthDayOfYear) Matches(_ string, dates []time.Time) bool {
	if !hasSamples(dates, 2) {
		return false
	}
	for _, d := range dates {
		if d.YearDay() != dates[0].YearDay() {
			return false
		}
	}
	return true
}

func (g XthDayOfYear) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	day := calendar.DayOfYear(dates[0])
	d := newDescriptor(theme, g.Name())
	d.Params[ParamDay] = day
	d.Description = fmt.Sprintf("Dag %d varje år", day)
	return d, nil
}

// Generate returns ErrNoOccurrence for day 366 outside leap years.
func (XthDayOfYear) Generate(d Descriptor, year int) (time.Time, error) {
	day, err := d.paramInRange(ParamDay, 1, 366)
	if err != nil {
		return time.Time{}, err
	}
	date := calendar.Date(year-1, time.December, 31).AddDate(0, 0, day)
	if date.Year() != year {
		return time.Time{}, ErrNoOccurrence
	}
	return date, nil
}

// AllBosses is October 16, moved to Friday when it falls on a Saturday and
// to Monday when it falls on a Sunday.
type AllBosses struct{}

func (AllBosses) Name() string { return "all_bosses" }

func (AllBosses) date(year int) (time.Time, error) {
	d := calendar.Date(year, time.October, 16)
	switch calendar.ISOWeekday(d) {
	case 6:
		return d.AddDate(0, 0, -1), nil
	case 7:
		return d.AddDate(0, 0, 1), nil
	}
	return d, nil
}

func (g AllBosses) Matches(_ string, dates []time.Time) bool {
	return hasSamples(dates, 2) && allOn(dates, g.date)
}

func (g AllBosses) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	d := newDescriptor(theme, g.Name())
	d.Description = "16 oktober, närmaste vardag"
	return d, nil
}

func (g AllBosses) Generate(_ Descriptor, year int) (time.Time, error) {
	return g.date(year)
}
