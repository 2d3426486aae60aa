package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the ISO 8601 calendar date layout used across the API.
const DateLayout = "2006-01-02"

// Date returns midnight UTC of the given calendar date. Out of range days
// normalize the same way time.Date does.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate strips the clock and location from t, keeping its calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// IsValidDate reports whether year-month-day exists, e.g. false for
// February 29 in a common year.
func IsValidDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 {
		return false
	}
	return day <= LastDayOfMonth(year, month).Day()
}

// ISOWeekday returns the ISO 8601 weekday: Monday=1 through Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DayOfYear returns the ordinal day: the number of days after December 31
// of the previous year.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// FirstOfNextMonth returns the first day of the month following month,
// rolling December over into January of the next year.
func FirstOfNextMonth(year int, month time.Month) time.Time {
	if month == time.December {
		return Date(year+1, time.January, 1)
	}
	return Date(year, month+1, 1)
}

// LastDayOfMonth returns the last day of the given month.
func LastDayOfMonth(year int, month time.Month) time.Time {
	return FirstOfNextMonth(year, month).AddDate(0, 0, -1)
}

// ShiftToWeekday moves t forward 0-6 days to the first date with the given
// ISO weekday.
func ShiftToWeekday(t time.Time, weekday int) time.Time {
	shift := mod(weekday-ISOWeekday(t), 7)
	return t.AddDate(0, 0, shift)
}

// ISOWeekStart returns the Monday of ISO week 1 of the given ISO year.
// Week 1 is the week containing January 4.
func ISOWeekStart(year int) time.Time {
	jan4 := Date(year, time.January, 4)
	return jan4.AddDate(0, 0, 1-ISOWeekday(jan4))
}

// WeeksInISOYear returns 52 or 53.
func WeeksInISOYear(year int) int {
	_, week := Date(year, time.December, 28).ISOWeek()
	return week
}

// SameDay reports whether a and b are the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IndexOf returns the index of the first element of dates on the same day
// as t, or -1.
func IndexOf(dates []time.Time, t time.Time) int {
	for i, d := range dates {
		if SameDay(d, t) {
			return i
		}
	}
	return -1
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Truncate(b).Sub(Truncate(a)).Hours() / 24)
}

// ParseDateString parses a date string in YYYY-MM-DD format
func ParseDateString(dateStr string) (time.Time, error) {
	return time.Parse(DateLayout, dateStr)
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

var (
	swedishWeekdays = []string{"måndag", "tisdag", "onsdag", "torsdag", "fredag", "lördag", "söndag"}
	swedishMonths   = []string{
		"januari", "februari", "mars", "april", "maj", "juni",
		"juli", "augusti", "september", "oktober", "november", "december",
	}
	countDescriptors = []string{"Första", "Andra", "Tredje", "Fjärde", "Femte", "Sjätte"}
)

// SwedishWeekday returns the lower case Swedish name of an ISO weekday.
func SwedishWeekday(isoWeekday int) string {
	if isoWeekday < 1 || isoWeekday > 7 {
		return ""
	}
	return swedishWeekdays[isoWeekday-1]
}

// SwedishMonth returns the lower case Swedish name of a month.
func SwedishMonth(month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	return swedishMonths[month-1]
}

// CountDescriptor returns the capitalized Swedish ordinal word for a zero
// based index ("Första", "Andra", ...). Indexes past the table fall back to
// a numeric ordinal.
func CountDescriptor(index int) string {
	if index < 0 || index >= len(countDescriptors) {
		return fmt.Sprintf("%d:e", index+1)
	}
	return countDescriptors[index]
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
