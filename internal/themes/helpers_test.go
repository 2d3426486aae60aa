package themes

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// day parses a YYYY-MM-DD date or fails the test.
func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDateString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func days(t *testing.T, ss ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		out[i] = day(t, s)
	}
	return out
}

// stubEphemeris places every season event on the 21st of its month and
// every full moon three days after the requested date.
type stubEphemeris struct{}

func (stubEphemeris) SeasonEvent(year int, s calendar.Season) (time.Time, error) {
	months := []time.Month{time.March, time.June, time.September, time.December}
	return calendar.Date(year, months[s], 21), nil
}

func (stubEphemeris) NextFullMoon(from time.Time) (time.Time, error) {
	return calendar.Truncate(from).AddDate(0, 0, 3), nil
}

// recordingHandler keeps every log record at or above Warn.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) warnings() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []slog.Record
	for _, r := range h.records {
		if r.Level == slog.LevelWarn {
			out = append(out, r)
		}
	}
	return out
}

// testDispatcher returns an inference dispatcher and the handler its logs go to.
func testDispatcher(t *testing.T) (*Dispatcher, *recordingHandler) {
	t.Helper()
	h := &recordingHandler{}
	return NewDispatcher(InferenceRegistry(calendar.NewMeeusEphemeris()), slog.New(h)), h
}

// mustGenerate projects d onto year with g or fails the test.
func mustGenerate(t *testing.T, g Generator, d Descriptor, year int) string {
	t.Helper()
	got, err := g.Generate(d, year)
	if err != nil {
		t.Fatalf("%s.Generate(%d) error = %v", g.Name(), year, err)
	}
	return calendar.FormatDate(got)
}

func mustConfig(t *testing.T, g Generator, theme string, dates []time.Time) Descriptor {
	t.Helper()
	d, err := g.GenerateConfig(theme, dates)
	if err != nil {
		t.Fatalf("%s.GenerateConfig(%q) error = %v", g.Name(), theme, err)
	}
	return d
}
