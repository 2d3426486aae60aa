// Package themes holds the theme day rule engine: generators that encode one
// kind of recurrence each, a registry of them, and a dispatcher that infers
// rules from historical dates and projects rules onto arbitrary years.
package themes

import (
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// Generator is one recurrence rule.
//
// Matches reports whether every historical date is consistent with the rule.
// It never panics and returns false for empty input and for inputs shorter
// than the generator's minimum sample count.
//
// GenerateConfig derives a Descriptor from the history, taking parameters
// from the first date. It assumes Matches returned true.
//
// Generate projects a descriptor onto year. It returns ErrNoOccurrence when
// the rule has no date that year.
type Generator interface {
	Name() string
	Matches(theme string, dates []time.Time) bool
	GenerateConfig(theme string, dates []time.Time) (Descriptor, error)
	Generate(d Descriptor, year int) (time.Time, error)
}

// hasSamples reports whether dates has at least min entries (and at least one).
func hasSamples(dates []time.Time, min int) bool {
	return len(dates) > 0 && len(dates) >= min
}

// allOn reports whether every date equals the rule's date for its own year.
func allOn(dates []time.Time, rule func(year int) (time.Time, error)) bool {
	for _, d := range dates {
		want, err := rule(d.Year())
		if err != nil || !calendar.SameDay(d, want) {
			return false
		}
	}
	return true
}

// capitalize upper cases the first letter of s.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// dayMonth formats a date as "24 december".
func dayMonth(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + calendar.SwedishMonth(t.Month())
}
