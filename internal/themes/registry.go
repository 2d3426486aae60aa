package themes

import (
	"fmt"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// Registry is an ordered set of generators with unique names. Order is the
// inference priority. A Registry must not be modified once it is shared.
type Registry struct {
	generators []Generator
	byName     map[string]Generator
}

// NewRegistry returns a registry holding gens in order.
func NewRegistry(gens ...Generator) (*Registry, error) {
	r := &Registry{byName: make(map[string]Generator, len(gens))}
	for _, g := range gens {
		if err := r.Register(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends g, rejecting a name already in use.
func (r *Registry) Register(g Generator) error {
	if _, ok := r.byName[g.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateGenerator, g.Name())
	}
	r.generators = append(r.generators, g)
	r.byName[g.Name()] = g
	return nil
}

// Lookup returns the generator registered under name.
func (r *Registry) Lookup(name string) (Generator, bool) {
	g, ok := r.byName[name]
	return g, ok
}

// Generators returns the generators in priority order.
func (r *Registry) Generators() []Generator {
	out := make([]Generator, len(r.generators))
	copy(out, r.generators)
	return out
}

// Names returns generator names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.generators))
	for i, g := range r.generators {
		names[i] = g.Name()
	}
	return names
}

// Len returns the number of registered generators.
func (r *Registry) Len() int {
	return len(r.generators)
}

// defaultGenerators lists the built-in generators in their established
// inference order. Catalogues were built with this order; changing it
// changes which rule short histories resolve to.
func defaultGenerators(eph calendar.Ephemeris) []Generator {
	return []Generator{
		Easter(),
		FastDays(),
		Advent(),
		Ascension(),
		Pentecost(),
		EquinoxSolstice(eph),
		Midsummer(),
		AllSaints(),
		LastWeekdayOfMonth{},
		WeekdayOfLastFullWeekInMonth{},
		XthWeekdayOfMonth{},
		WeekdayOfXthWeek{},
		SameDate{},
		Nettle,
		HolyMikael,
		Thanksgiving(),
		AllBosses{},
		Stockfish(),
		FuneralGreeting(eph),
		NationalO(eph),
		StartOfLobsterFishing,
		SwedishParliamentaryElection{},
		NewsDeliverer,
		Grill,
		Bacon,
		Caravan(),
		Grandparents,
		SaferInternet,
		XthDayOfYear{},
	}
}

// DefaultRegistry returns the projection registry of built-in generators.
func DefaultRegistry(eph calendar.Ephemeris) *Registry {
	r, err := NewRegistry(defaultGenerators(eph)...)
	if err != nil {
		panic(err)
	}
	return r
}

// InferenceRegistry returns the built-in generators preceded by the
// delegating generator, so overrides win over heuristic matches.
func InferenceRegistry(eph calendar.Ephemeris) *Registry {
	base := DefaultRegistry(eph)
	r, err := NewRegistry(append([]Generator{NewDelegating(base, DefaultOverrides())}, base.Generators()...)...)
	if err != nil {
		panic(err)
	}
	return r
}
