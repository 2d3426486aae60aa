package themes

import (
	"sort"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/se"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// PublicHolidays marks theme days that are public holidays or work-free
// days, using a rickar/cal business calendar.
type PublicHolidays struct {
	cal *cal.BusinessCalendar
}

// NewPublicHolidays returns a calendar with the given holidays and cal's
// default Monday to Friday work week.
func NewPublicHolidays(holidays ...*cal.Holiday) *PublicHolidays {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(holidays...)
	return &PublicHolidays{cal: c}
}

// SwedishPublicHolidays returns the Swedish public holidays, including the
// de facto work-free eves.
func SwedishPublicHolidays() *PublicHolidays {
	return NewPublicHolidays(se.Holidays...)
}

// On returns the name of the public holiday on date, if any, and whether
// date is work-free.
func (p *PublicHolidays) On(date time.Time) (name string, workFree bool) {
	actual, _, h := p.cal.IsHoliday(date)
	if actual && h != nil {
		name = h.Name
	}
	return name, actual || !p.cal.IsWorkday(date)
}

// Annotate sets Holiday and WorkFree on data and adds an entry without
// themes for every public holiday between start and end that has none.
// The result is sorted by date.
func (p *PublicHolidays) Annotate(data []ThemeData, start, end time.Time) []ThemeData {
	index := make(map[string]int, len(data))
	for i, td := range data {
		index[td.Date] = i
	}

	out := data
	for d := calendar.Truncate(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		key := calendar.FormatDate(d)
		name, workFree := p.On(d)

		i, ok := index[key]
		if !ok {
			if name == "" {
				continue
			}
			out = append(out, ThemeData{Date: key, Themes: []string{}})
			i = len(out) - 1
		}
		out[i].Holiday = name
		out[i].WorkFree = workFree
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}
