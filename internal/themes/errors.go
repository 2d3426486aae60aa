package themes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// Sentinel errors
var (
	// ErrNoMatchingGenerator is returned by Infer when no generator accepts
	// the historical dates of a theme.
	ErrNoMatchingGenerator = errors.New("no matching generator")

	// ErrUnknownGenerator is returned when a descriptor names a generator
	// that is not registered.
	ErrUnknownGenerator = errors.New("unknown generator")

	// ErrNoOccurrence signals that a rule defines no date in the requested
	// year, such as a parliamentary election in an off year. It is an
	// outcome, not a failure, and projection filters it out.
	ErrNoOccurrence = errors.New("no occurrence this year")

	// ErrInvalidDescriptor is returned when a descriptor lacks a parameter
	// its generator needs, or carries one out of range.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrNoDates is returned when a config is requested without any
	// historical dates to derive it from.
	ErrNoDates = errors.New("no historical dates")

	// ErrDuplicateGenerator is returned when two generators share a name.
	ErrDuplicateGenerator = errors.New("duplicate generator name")
)

// NoMatchingGeneratorError reports a theme whose history no registered
// generator recognises.
type NoMatchingGeneratorError struct {
	Theme string
	Dates []time.Time
}

func (e *NoMatchingGeneratorError) Error() string {
	dates := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		dates[i] = calendar.FormatDate(d)
	}
	return fmt.Sprintf("%s for %q [%s]", ErrNoMatchingGenerator, e.Theme, strings.Join(dates, ", "))
}

func (e *NoMatchingGeneratorError) Unwrap() error {
	return ErrNoMatchingGenerator
}

func invalidParam(d Descriptor, key string, value int) error {
	return fmt.Errorf("%w: %s %q has %s=%d", ErrInvalidDescriptor, d.Generator, d.Theme, key, value)
}
