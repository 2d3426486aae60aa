package themes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// ThemeData is every theme landing on one date. Holiday and WorkFree are
// only set by a provider with public holidays.
type ThemeData struct {
	Date     string   `json:"date"`
	Themes   []string `json:"themes"`
	Holiday  string   `json:"holiday,omitempty"`
	WorkFree bool     `json:"work_free,omitempty"`
}

// ThemeDays maps ISO dates (YYYY-MM-DD) to theme names in the order the
// descriptors were projected.
type ThemeDays map[string][]string

// Add appends theme to the themes on date.
func (td ThemeDays) Add(date time.Time, theme string) {
	key := calendar.FormatDate(date)
	td[key] = append(td[key], theme)
}

// Sorted returns the theme days ordered by date.
func (td ThemeDays) Sorted() []ThemeData {
	keys := make([]string, 0, len(td))
	for k := range td {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ThemeData, len(keys))
	for i, k := range keys {
		out[i] = ThemeData{Date: k, Themes: td[k]}
	}
	return out
}

// Dispatcher infers rules from history and projects them onto years. It is
// read-only after construction and safe for concurrent use.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher returns a dispatcher over registry.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Infer returns the descriptor of the first generator, in registry order,
// that matches the theme's history.
func (d *Dispatcher) Infer(theme string, dates []time.Time) (Descriptor, error) {
	days := make([]time.Time, len(dates))
	for i, t := range dates {
		days[i] = calendar.Truncate(t)
	}

	for _, g := range d.registry.generators {
		if !g.Matches(theme, days) {
			continue
		}
		desc, err := g.GenerateConfig(theme, days)
		if err != nil {
			return Descriptor{}, fmt.Errorf("infer %q with %s: %w", theme, g.Name(), err)
		}
		return desc, nil
	}

	return Descriptor{}, &NoMatchingGeneratorError{Theme: theme, Dates: days}
}

// ProjectYear returns the date of desc in year. ErrNoOccurrence means the
// rule has no date that year.
func (d *Dispatcher) ProjectYear(desc Descriptor, year int) (time.Time, error) {
	g, ok := d.registry.Lookup(desc.Generator)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q for theme %q", ErrUnknownGenerator, desc.Generator, desc.Theme)
	}
	return g.Generate(desc, year)
}

// ProjectAll projects every descriptor onto every year.
//
// A descriptor naming an unknown generator, or carrying invalid parameters,
// is logged once and skipped. Years without an occurrence are left out. Any
// other error aborts the projection.
func (d *Dispatcher) ProjectAll(ctx context.Context, descs []Descriptor, years []int) (ThemeDays, error) {
	days := ThemeDays{}

	for _, desc := range descs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		g, ok := d.registry.Lookup(desc.Generator)
		if !ok {
			d.logger.WarnContext(ctx, "theme has no matching generator, skipping",
				slog.String("theme", desc.Theme),
				slog.String("generator", desc.Generator),
			)
			continue
		}

		dates, err := projectYears(g, desc, years)
		if errors.Is(err, ErrInvalidDescriptor) {
			d.logger.WarnContext(ctx, "invalid theme descriptor, skipping",
				slog.String("theme", desc.Theme),
				slog.String("generator", desc.Generator),
				slog.Any("error", err),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", desc.Theme, err)
		}

		for _, date := range dates {
			days.Add(date, desc.Theme)
		}
	}

	return days, nil
}

func projectYears(g Generator, desc Descriptor, years []int) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(years))
	for _, year := range years {
		date, err := g.Generate(desc, year)
		if errors.Is(err, ErrNoOccurrence) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		dates = append(dates, date)
	}
	return dates, nil
}

// YearRange returns the years from first to last inclusive, in either order.
func YearRange(first, last int) []int {
	if first > last {
		first, last = last, first
	}
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}
