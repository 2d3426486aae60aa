package themes

import (
	"fmt"
	"sort"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// Override pins a theme to a generator, with the dates its config is derived
// from. Overrides exist for themes whose history is too short or too
// ambiguous for inference to pick the right rule.
type Override struct {
	Generator string
	Dates     []time.Time
}

// Delegating matches themes by name through an override table and hands the
// work to the generator each override names. Descriptors it produces carry
// the underlying generator's name, so projection never passes through it.
type Delegating struct {
	overrides map[string]Override
	registry  *Registry
}

// NewDelegating returns a Delegating generator resolving override generators
// in registry.
func NewDelegating(registry *Registry, overrides map[string]Override) *Delegating {
	return &Delegating{overrides: overrides, registry: registry}
}

func (*Delegating) Name() string { return "delegating" }

// Themes returns the overridden theme names, sorted.
func (g *Delegating) Themes() []string {
	names := make([]string, 0, len(g.overrides))
	for name := range g.overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Override returns the override for theme.
func (g *Delegating) Override(theme string) (Override, bool) {
	o, ok := g.overrides[theme]
	return o, ok
}

// Matches ignores dates: a theme with an override always matches.
func (g *Delegating) Matches(theme string, _ []time.Time) bool {
	_, ok := g.overrides[theme]
	return ok
}

func (g *Delegating) target(theme string) (Generator, Override, error) {
	o, ok := g.overrides[theme]
	if !ok {
		return nil, Override{}, fmt.Errorf("no override for %q", theme)
	}
	gen, ok := g.registry.Lookup(o.Generator)
	if !ok {
		return nil, Override{}, fmt.Errorf("override for %q: %w: %q", theme, ErrUnknownGenerator, o.Generator)
	}
	return gen, o, nil
}

// GenerateConfig derives the config from the override dates, not from dates.
func (g *Delegating) GenerateConfig(theme string, _ []time.Time) (Descriptor, error) {
	gen, o, err := g.target(theme)
	if err != nil {
		return Descriptor{}, err
	}
	return gen.GenerateConfig(theme, o.Dates)
}

func (g *Delegating) Generate(d Descriptor, year int) (time.Time, error) {
	gen, _, err := g.target(d.Theme)
	if err != nil {
		return time.Time{}, err
	}
	return gen.Generate(d, year)
}

func ymd(dates ...[3]int) []time.Time {
	out := make([]time.Time, len(dates))
	for i, v := range dates {
		out[i] = calendar.Date(v[0], time.Month(v[1]), v[2])
	}
	return out
}

// DefaultOverrides returns the built-in override table.
func DefaultOverrides() map[string]Override {
	return map[string]Override{
		"Världsvänskapsdagen": {
			Generator: "same_date",
			Dates:     ymd([3]int{2021, 7, 31}, [3]int{2022, 7, 31}, [3]int{2023, 7, 31}, [3]int{2024, 7, 31}),
		},
		"Alla helgons dag": {
			Generator: "all_saints",
			Dates:     ymd([3]int{2021, 11, 6}, [3]int{2022, 11, 5}, [3]int{2023, 11, 4}, [3]int{2024, 11, 2}),
		},
		"Alla själars dag": {
			Generator: "all_saints",
			Dates:     ymd([3]int{2021, 11, 7}, [3]int{2022, 11, 6}, [3]int{2023, 11, 5}, [3]int{2024, 11, 3}),
		},
		"Programmerarens dag": {
			Generator: "xth_day_of_year",
			Dates:     ymd([3]int{2021, 9, 13}, [3]int{2022, 9, 13}, [3]int{2024, 9, 12}),
		},
		"Internationella gin och tonic-dagen": {
			Generator: "same_date",
			Dates:     ymd([3]int{2022, 10, 19}, [3]int{2023, 10, 19}, [3]int{2024, 10, 19}),
		},
		"Ångans dag": {
			Generator: "xth_weekday_of_month",
			Dates:     ymd([3]int{2021, 6, 5}, [3]int{2023, 6, 3}, [3]int{2024, 6, 1}),
		},
		"Internationella champagnedagen": {
			Generator: "xth_weekday_of_month",
			Dates:     ymd([3]int{2021, 10, 22}, [3]int{2022, 10, 28}, [3]int{2023, 10, 27}, [3]int{2024, 10, 25}),
		},
		"Den helige Mikaels dag": {
			Generator: "holy_mikael",
			Dates:     ymd([3]int{2021, 10, 3}, [3]int{2022, 10, 2}, [3]int{2024, 9, 29}),
		},
		"Lutfiskens dag": {
			Generator: "stockfish",
			Dates:     ymd([3]int{2021, 11, 5}, [3]int{2022, 11, 4}, [3]int{2023, 11, 3}, [3]int{2024, 11, 1}),
		},
		"Lösgodisets dag": {
			Generator: "last_weekday_of_month",
			Dates:     ymd([3]int{2023, 9, 30}, [3]int{2024, 9, 28}),
		},
		"Int. dagen för begränsning av naturkatastrofer": {
			Generator: "xth_weekday_of_month",
			Dates:     ymd([3]int{2023, 10, 11}, [3]int{2024, 10, 9}),
		},
		"Uniform på jobbet-dagen": {
			Generator: "weekday_of_xth_week",
			Dates:     ymd([3]int{2023, 4, 19}, [3]int{2024, 4, 17}),
		},
		"Kälkåkningens dag": {
			Generator: "last_weekday_of_month",
			Dates:     ymd([3]int{2023, 2, 26}, [3]int{2024, 2, 25}),
		},
		"Ängens dag": {
			Generator: "xth_weekday_of_month",
			Dates:     ymd([3]int{2023, 8, 5}, [3]int{2024, 8, 3}),
		},
		"Östersjödagen": {
			Generator: "last_weekday_of_month",
			Dates:     ymd([3]int{2023, 8, 31}, [3]int{2024, 8, 29}),
		},
		"Tidningsbudens dag": {
			Generator: "news_deliverer",
			Dates:     ymd([3]int{2023, 10, 7}, [3]int{2024, 10, 12}),
		},
		"Unik butik-dagen": {
			Generator: "last_weekday_of_month",
			Dates:     ymd([3]int{2021, 10, 30}, [3]int{2023, 10, 28}),
		},
		"Dövas dag": {
			Generator: "xth_weekday_of_month",
			Dates:     ymd([3]int{2021, 9, 19}, [3]int{2022, 9, 18}),
		},
		"Internationella flyttfågeldagen": {
			Generator: "xth_weekday_of_month",
			Dates:     ymd([3]int{2021, 5, 8}, [3]int{2022, 5, 7}, [3]int{2023, 5, 13}, [3]int{2024, 5, 11}),
		},
		"Safer internet day": {
			Generator: "safer_internet",
			Dates:     ymd([3]int{2021, 2, 9}, [3]int{2022, 2, 8}, [3]int{2023, 2, 7}, [3]int{2024, 2, 6}),
		},
	}
}
