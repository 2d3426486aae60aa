package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/rickar/cal/v2"
)

func mustEaster(t *testing.T, year int) time.Time {
	t.Helper()
	easter, err := CalculateEaster(year)
	if err != nil {
		t.Fatalf("CalculateEaster(%d) error = %v", year, err)
	}
	return easter
}

// gaussTerms returns the d and e terms and the epact guard of the Gauss
// method for year.
func gaussTerms(year int) (d, e int, guard bool) {
	p := year / 100
	q := (13 + 8*p) / 25
	m := (15 - q + p - p/4) % 30
	n := (4 + p - p/4) % 7
	d = (19*(year%19) + m) % 30
	e = (2*(year%4) + 4*(year%7) + 6*d + n) % 7
	return d, e, (11*m+11)%30 < 19
}

// With d = 28 and e = 6 the plain rule always answers April 18. When the
// epact guard fails, as in 1734 and 1886, Easter is April 25 instead: the
// April 18 rule would put Easter before the paschal full moon.
func TestCalculateEaster_GuardedApril18(t *testing.T) {
	tests := []struct {
		year  int
		want  string
		guard bool
	}{
		{1734, "1734-04-25", false},
		{1886, "1886-04-25", false},
		{1954, "1954-04-18", true},
		{2049, "2049-04-18", true},
	}

	for _, tt := range tests {
		d, e, guard := gaussTerms(tt.year)
		if d != 28 || e != 6 || guard != tt.guard {
			t.Fatalf("%d: d=%d e=%d guard=%v, want d=28 e=6 guard=%v", tt.year, d, e, guard, tt.guard)
		}
		if got := FormatDate(mustEaster(t, tt.year)); got != tt.want {
			t.Errorf("CalculateEaster(%d) = %s, want %s", tt.year, got, tt.want)
		}
	}
}

func TestCalculateEaster(t *testing.T) {
	tests := []struct {
		year int
		want string
	}{
		{2023, "2023-04-09"},
		{2024, "2024-03-31"},
		{2025, "2025-04-20"},
		{2026, "2026-04-05"},
		{2000, "2000-04-23"},
		{1818, "1818-03-22"}, // earliest possible
		{1943, "1943-04-25"}, // latest possible
		{1981, "1981-04-19"}, // d=29, e=6
		{1954, "1954-04-18"}, // d=28, e=6 with guard satisfied
		{1886, "1886-04-25"}, // d=28, e=6 with guard failing
		{1734, "1734-04-25"},
	}

	for _, tt := range tests {
		got, err := CalculateEaster(tt.year)
		if err != nil {
			t.Fatalf("CalculateEaster(%d) error = %v", tt.year, err)
		}
		if FormatDate(got) != tt.want {
			t.Errorf("CalculateEaster(%d) = %s, want %s", tt.year, FormatDate(got), tt.want)
		}
		if got.Weekday() != time.Sunday {
			t.Errorf("CalculateEaster(%d) = %s is a %s", tt.year, FormatDate(got), got.Weekday())
		}
	}
}

func TestCalculateEaster_Window(t *testing.T) {
	for year := MinEasterYear; year <= MaxEasterYear; year++ {
		got := mustEaster(t, year)
		earliest := Date(year, time.March, 22)
		latest := Date(year, time.April, 25)
		if got.Before(earliest) || got.After(latest) {
			t.Fatalf("CalculateEaster(%d) = %s, outside March 22 - April 25", year, FormatDate(got))
		}
	}
}

// rickar/cal uses the anonymous Gregorian algorithm, which shares no code
// with the Gauss method.
func TestCalculateEaster_AgreesWithRickarCal(t *testing.T) {
	easter := &cal.Holiday{Name: "Easter", Type: cal.ObservanceReligious, Func: cal.CalcEasterOffset}

	for year := MinEasterYear; year <= MaxEasterYear; year++ {
		want, _ := easter.Calc(year)
		got := mustEaster(t, year)
		if !SameDay(got, want) {
			t.Errorf("CalculateEaster(%d) = %s, rickar/cal = %s", year, FormatDate(got), FormatDate(want))
		}
	}
}

func TestCalculateEaster_OutOfRange(t *testing.T) {
	for _, year := range []int{MinEasterYear - 1, MaxEasterYear + 1, 0} {
		if _, err := CalculateEaster(year); !errors.Is(err, ErrYearOutOfRange) {
			t.Errorf("CalculateEaster(%d) error = %v, want ErrYearOutOfRange", year, err)
		}
	}
}

func TestEasterOffset(t *testing.T) {
	got, err := EasterOffset(2024, 39)
	if err != nil {
		t.Fatalf("EasterOffset() error = %v", err)
	}
	if FormatDate(got) != "2024-05-09" {
		t.Errorf("EasterOffset(2024, 39) = %s, want 2024-05-09", FormatDate(got))
	}

	if _, err := EasterOffset(1200, 0); !errors.Is(err, ErrYearOutOfRange) {
		t.Errorf("EasterOffset(1200) error = %v, want ErrYearOutOfRange", err)
	}
}

func TestAdvent(t *testing.T) {
	tests := []struct {
		year   int
		first  string
		fourth string
	}{
		{2022, "2022-11-27", "2022-12-18"},
		{2023, "2023-12-03", "2023-12-24"}, // Christmas Eve on a Sunday
		{2024, "2024-12-01", "2024-12-22"},
	}

	for _, tt := range tests {
		if got := FormatDate(FourthAdvent(tt.year)); got != tt.fourth {
			t.Errorf("FourthAdvent(%d) = %s, want %s", tt.year, got, tt.fourth)
		}
		if got := FormatDate(CalculateAdvent(tt.year)); got != tt.first {
			t.Errorf("CalculateAdvent(%d) = %s, want %s", tt.year, got, tt.first)
		}
	}
}
