package themes

import (
	"fmt"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// WeekdayAfterDate falls on the first given ISO weekday on or after a fixed
// anchor day. The anchor is a month and day, re-based onto each year.
type WeekdayAfterDate struct {
	name    string
	month   time.Month
	day     int
	weekday int
}

// NewWeekdayAfterDate returns a generator registered under name for the
// first weekday on or after month/day.
func NewWeekdayAfterDate(name string, month time.Month, day, weekday int) WeekdayAfterDate {
	return WeekdayAfterDate{name: name, month: month, day: day, weekday: weekday}
}

// Named theme days that follow the weekday-after-date rule.
var (
	Nettle                = NewWeekdayAfterDate("nettle", time.May, 2, 7)
	Grill                 = NewWeekdayAfterDate("grill", time.May, 2, 5)
	Bacon                 = NewWeekdayAfterDate("bacon", time.August, 30, 6)
	Grandparents          = NewWeekdayAfterDate("grandparents", time.September, 7, 7)
	NewsDeliverer         = NewWeekdayAfterDate("news_deliverer", time.October, 7, 6)
	SaferInternet         = NewWeekdayAfterDate("safer_internet", time.February, 5, 2)
	StartOfLobsterFishing = NewWeekdayAfterDate("start_of_lobster_fishing", time.September, 21, 1)
	HolyMikael            = NewWeekdayAfterDate("holy_mikael", time.September, 29, 7)
)

func (g WeekdayAfterDate) Name() string { return g.name }

// Date returns the rule's date in year.
func (g WeekdayAfterDate) Date(year int) time.Time {
	return calendar.ShiftToWeekday(calendar.Date(year, g.month, g.day), g.weekday)
}

func (g WeekdayAfterDate) date(year int) (time.Time, error) {
	return g.Date(year), nil
}

func (g WeekdayAfterDate) Matches(_ string, dates []time.Time) bool {
	return hasSamples(dates, 2) && allOn(dates, g.date)
}

func (g WeekdayAfterDate) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	d := newDescriptor(theme, g.Name())
	d.Description = g.describe()
	return d, nil
}

func (g WeekdayAfterDate) Generate(_ Descriptor, year int) (time.Time, error) {
	return g.Date(year), nil
}

func (g WeekdayAfterDate) describe() string {
	return fmt.Sprintf("Första %s från och med %d %s",
		calendar.SwedishWeekday(g.weekday), g.day, calendar.SwedishMonth(g.month))
}

// First year the election rule is defined for: the unicameral Riksdag.
const firstElectionYear = 1970

// SwedishParliamentaryElection is the second Sunday after September 1 in
// election years: every third year until 1994, every fourth year since.
type SwedishParliamentaryElection struct{}

var electionDay = NewWeekdayAfterDate("swedish_parliamentary_election", time.September, 9, 7)

func (SwedishParliamentaryElection) Name() string { return electionDay.Name() }

// IsElectionYear reports whether year has a parliamentary election.
func IsElectionYear(year int) (bool, error) {
	if year < firstElectionYear {
		return false, fmt.Errorf("election %d: %w", year, calendar.ErrYearOutOfRange)
	}
	if year < 1994 {
		return year%3 == 2, nil
	}
	return year%4 == 2, nil
}

func (SwedishParliamentaryElection) Matches(_ string, dates []time.Time) bool {
	if !hasSamples(dates, 1) {
		return false
	}
	for _, d := range dates {
		ok, err := IsElectionYear(d.Year())
		if err != nil || !ok || !calendar.SameDay(d, electionDay.Date(d.Year())) {
			return false
		}
	}
	return true
}

func (g SwedishParliamentaryElection) GenerateConfig(theme string, dates []time.Time) (Descriptor, error) {
	if len(dates) == 0 {
		return Descriptor{}, ErrNoDates
	}
	d := newDescriptor(theme, g.Name())
	d.Description = "Andra söndagen efter 1e september, vart fjärde år efter 1994"
	return d, nil
}

func (SwedishParliamentaryElection) Generate(_ Descriptor, year int) (time.Time, error) {
	ok, err := IsElectionYear(year)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, ErrNoOccurrence
	}
	return electionDay.Date(year), nil
}
