package themes

import (
	"context"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// Provider answers date range queries over a fixed catalogue. Both the
// dispatcher and the descriptors are shared read-only.
type Provider struct {
	dispatcher  *Dispatcher
	descriptors []Descriptor
	holidays    *PublicHolidays
}

// NewProvider returns a provider projecting descriptors with dispatcher.
func NewProvider(dispatcher *Dispatcher, descriptors []Descriptor) *Provider {
	return &Provider{dispatcher: dispatcher, descriptors: descriptors}
}

// WithPublicHolidays returns a copy of p whose results are annotated with
// holidays.
func (p *Provider) WithPublicHolidays(holidays *PublicHolidays) *Provider {
	cp := *p
	cp.holidays = holidays
	return &cp
}

// Descriptors returns the catalogue the provider serves.
func (p *Provider) Descriptors() []Descriptor {
	out := make([]Descriptor, len(p.descriptors))
	copy(out, p.descriptors)
	return out
}

// Dispatcher returns the provider's dispatcher.
func (p *Provider) Dispatcher() *Dispatcher {
	return p.dispatcher
}

// Fetch returns the theme days between start and end inclusive, sorted by
// date. The bounds may be given in either order.
func (p *Provider) Fetch(ctx context.Context, start, end time.Time) ([]ThemeData, error) {
	start, end = calendar.Truncate(start), calendar.Truncate(end)
	if end.Before(start) {
		start, end = end, start
	}

	days, err := p.dispatcher.ProjectAll(ctx, p.descriptors, YearRange(start.Year(), end.Year()))
	if err != nil {
		return nil, err
	}

	first, last := calendar.FormatDate(start), calendar.FormatDate(end)
	for key := range days {
		if key < first || key > last {
			delete(days, key)
		}
	}
	data := days.Sorted()
	if p.holidays != nil {
		data = p.holidays.Annotate(data, start, end)
	}
	return data, nil
}

// Day returns the theme data of a single date. Themes is empty, not nil,
// when no theme falls on date.
func (p *Provider) Day(ctx context.Context, date time.Time) (ThemeData, error) {
	data, err := p.Fetch(ctx, date, date)
	if err != nil {
		return ThemeData{}, err
	}
	if len(data) == 0 {
		td := ThemeData{Date: calendar.FormatDate(date), Themes: []string{}}
		if p.holidays != nil {
			_, td.WorkFree = p.holidays.On(date)
		}
		return td, nil
	}
	return data[0], nil
}
