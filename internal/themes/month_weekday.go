package themes

import (
	"fmt"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// weekdayInMonth reads and validates the weekday and month parameters.
func weekdayInMonth(d Descriptor) (weekday int, month time.Month, err error) {
	weekday, err = d.paramInRange(ParamWeekday, 1, 7)
	if err != nil {
		return 0, 0, err
	}
	m, err := d.paramInRange(ParamMonth, 1, 12)
	if err != nil {
		return 0, 0, err
	}
	return weekday, time.Month(m), nil
}

// sameWeekdayAndMonth reports whether all dates share the first date's
// weekday and month, and each satisfies pred.
func sameWeekdayAndMonth(dates []time.Time, pred func(time.Time) bool) bool {
	for _, d := range dates {
		if d.Weekday() != dates[0].Weekday() || d.Month() != dates[0].Month() || !pred(d) {
			return false
		}
	}
	return true
}

// XthWeekdayOfMonth is the nth occurrence of a weekday in a month, such as
// the second Sunday of May.
type XthWeekdayOfMonth struct{}

func (XthWeekdayOfMonth) Name() string { return "xth_weekday_of_month" }

// occurrence returns which occurrence of its weekday t is within its month.
func occurrence(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

func (XthWeekdayOfMonth) Matches(_ string, dates []time.Time) bool {
	if !hasSamples(dates, 2) {
		return false
	}
	xth := occurrence(dates[0])
	return sameWeekdayAndMonth(dates, func(d time.Time) bool {
		return occurrence(d) == xth
	})
}

func (g XthWeekdayOfMonth) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	first := dates[0]
	xth := occurrence(first)

	d := newDescriptor(theme, g.Name())
	d.Params[ParamXth] = xth
	d.Params[ParamWeekday] = calendar.ISOWeekday(first)
	d.Params[ParamMonth] = int(first.Month())
	d.Description = fmt.Sprintf("%s %s i %s",
		calendar.CountDescriptor(xth-1), calendar.SwedishWeekday(calendar.ISOWeekday(first)), calendar.SwedishMonth(first.Month()))
	return d, nil
}

// Generate returns ErrNoOccurrence when a fifth weekday does not exist.
func (XthWeekdayOfMonth) Generate(d Descriptor, year int) (time.Time, error) {
	weekday, month, err := weekdayInMonth(d)
	if err != nil {
		return time.Time{}, err
	}
	xth, err := d.paramInRange(ParamXth, 1, 5)
	if err != nil {
		return time.Time{}, err
	}

	first := calendar.ShiftToWeekday(calendar.Date(year, month, 1), weekday)
	date := first.AddDate(0, 0, (xth-1)*7)
	if date.Month() != month {
		return time.Time{}, ErrNoOccurrence
	}
	return date, nil
}

// LastWeekdayOfMonth is the last occurrence of a weekday in a month.
type LastWeekdayOfMonth struct{}

func (LastWeekdayOfMonth) Name() string { return "last_weekday_of_month" }

func isLastWeekdayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 7).Month() != t.Month()
}

func (LastWeekdayOfMonth) Matches(_ string, dates []time.Time) bool {
	return hasSamples(dates, 2) && sameWeekdayAndMonth(dates, isLastWeekdayOfMonth)
}

func (g LastWeekdayOfMonth) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	first := dates[0]
	d := newDescriptor(theme, g.Name())
	d.Params[ParamWeekday] = calendar.ISOWeekday(first)
	d.Params[ParamMonth] = int(first.Month())
	d.Description = fmt.Sprintf("Sista %s i %s",
		calendar.SwedishWeekday(calendar.ISOWeekday(first)), calendar.SwedishMonth(first.Month()))
	return d, nil
}

func (LastWeekdayOfMonth) Generate(d Descriptor, year int) (time.Time, error) {
	weekday, month, err := weekdayInMonth(d)
	if err != nil {
		return time.Time{}, err
	}
	last := calendar.LastDayOfMonth(year, month)
	back := (calendar.ISOWeekday(last) - weekday + 7) % 7
	return last.AddDate(0, 0, -back), nil
}

// WeekdayOfLastFullWeekInMonth is a weekday inside the last Monday to Sunday
// week that lies entirely within a month.
type WeekdayOfLastFullWeekInMonth struct{}

func (WeekdayOfLastFullWeekInMonth) Name() string { return "weekday_of_last_full_week_in_month" }

func inLastFullWeek(t time.Time) bool {
	sunday := t.AddDate(0, 0, 7-calendar.ISOWeekday(t))
	nextSunday := sunday.AddDate(0, 0, 7)
	return sunday.Month() == t.Month() && nextSunday.Month() != t.Month()
}

func (WeekdayOfLastFullWeekInMonth) Matches(_ string, dates []time.Time) bool {
	return hasSamples(dates, 2) && sameWeekdayAndMonth(dates, inLastFullWeek)
}

func (g WeekdayOfLastFullWeekInMonth) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	first := dates[0]
	d := newDescriptor(theme, g.Name())
	d.Params[ParamWeekday] = calendar.ISOWeekday(first)
	d.Params[ParamMonth] = int(first.Month())
	d.Description = fmt.Sprintf("%s i sista hela veckan i %s",
		capitalize(calendar.SwedishWeekday(calendar.ISOWeekday(first))), calendar.SwedishMonth(first.Month()))
	return d, nil
}

func (WeekdayOfLastFullWeekInMonth) Generate(d Descriptor, year int) (time.Time, error) {
	weekday, month, err := weekdayInMonth(d)
	if err != nil {
		return time.Time{}, err
	}
	last := calendar.LastDayOfMonth(year, month)
	// Sunday closing the last full week.
	sunday := last.AddDate(0, 0, -(calendar.ISOWeekday(last) % 7))
	return sunday.AddDate(0, 0, weekday-7), nil
}

// WeekdayOfXthWeek is a weekday in a numbered ISO week, such as Wednesday of
// week 16.
type WeekdayOfXthWeek struct{}

func (WeekdayOfXthWeek) Name() string { return "weekday_of_xth_week" }

// Matches also requires each date's ISO year to equal its calendar year, so
// that projecting the config onto the date's year returns the date itself.
func (WeekdayOfXthWeek) Matches(_ string, dates []time.Time) bool {
	if !hasSamples(dates, 2) {
		return false
	}
	_, week := dates[0].ISOWeek()
	for _, d := range dates {
		y, w := d.ISOWeek()
		if y != d.Year() || w != week || d.Weekday() != dates[0].Weekday() {
			return false
		}
	}
	return true
}

func (g WeekdayOfXthWeek) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	_, week := dates[0].ISOWeek()
	weekday := calendar.ISOWeekday(dates[0])

	d := newDescriptor(theme, g.Name())
	d.Params[ParamWeek] = week
	d.Params[ParamWeekday] = weekday
	d.Description = fmt.Sprintf("%s i vecka %d", capitalize(calendar.SwedishWeekday(weekday)), week)
	return d, nil
}

// Generate returns ErrNoOccurrence for week 53 in years with 52 ISO weeks,
// and for dates of week 1 or the last week that fall in the neighbouring
// calendar year.
func (WeekdayOfXthWeek) Generate(d Descriptor, year int) (time.Time, error) {
	week, err := d.paramInRange(ParamWeek, 1, 53)
	if err != nil {
		return time.Time{}, err
	}
	weekday, err := d.paramInRange(ParamWeekday, 1, 7)
	if err != nil {
		return time.Time{}, err
	}
	if week > calendar.WeeksInISOYear(year) {
		return time.Time{}, ErrNoOccurrence
	}
	date := calendar.ISOWeekStart(year).AddDate(0, 0, (week-1)*7+weekday-1)
	if date.Year() != year {
		return time.Time{}, ErrNoOccurrence
	}
	return date, nil
}
