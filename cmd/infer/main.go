// Command infer derives a rule for every theme stored in the database and
// writes them as a Latin-1 catalogue.
//
// Usage:
//
//	go run ./cmd/infer -db data/themedays.db -o theme_days_config.json
//
// Themes no generator recognises are listed at the end and left out of the
// catalogue.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/zapponejosh/themedays-api/internal/calendar"
	"github.com/zapponejosh/themedays-api/internal/catalogue"
	"github.com/zapponejosh/themedays-api/internal/database"
	"github.com/zapponejosh/themedays-api/internal/logger"
	"github.com/zapponejosh/themedays-api/internal/themes"
)

func main() {
	dbPath := flag.String("db", "data/themedays.db", "Path to SQLite database")
	outPath := flag.String("o", "theme_days_config.json", "Catalogue file to write")
	store := flag.Bool("store", true, "Store inferred rules in the database")
	strict := flag.Bool("strict", false, "Exit non-zero when a theme has no matching generator")
	verbose := flag.Bool("v", false, "Verbose output")
	quiet := flag.Bool("quiet", false, "Suppress log output, print only the summary")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	log := logger.New(os.Stderr, level, "text")
	if *quiet {
		log = logger.Discard()
	}

	unmatched, err := run(context.Background(), *dbPath, *outPath, *store, log)
	if err != nil {
		log.Error("inference failed", slog.Any("error", err))
		os.Exit(1)
	}
	if *strict && unmatched > 0 {
		os.Exit(2)
	}
}

type inferred struct {
	desc    themes.Descriptor
	samples int
}

func run(ctx context.Context, dbPath, outPath string, store bool, log *slog.Logger) (int, error) {
	db, err := database.Open(database.DefaultConfig(dbPath), log)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	summaries, err := db.ListThemes(ctx)
	if err != nil {
		return 0, err
	}
	log.Info("inferring rules", slog.Int("themes", len(summaries)))

	registry := themes.InferenceRegistry(calendar.NewMeeusEphemeris())
	dispatcher := themes.NewDispatcher(registry, log)
	overrides := delegating(registry)

	var rules []inferred
	var unmatched []*themes.NoMatchingGeneratorError
	for _, s := range summaries {
		dates, err := db.OccurrenceDates(ctx, s.Theme)
		if err != nil {
			return 0, err
		}

		desc, err := dispatcher.Infer(s.Theme, dates)
		var noMatch *themes.NoMatchingGeneratorError
		if errors.As(err, &noMatch) {
			unmatched = append(unmatched, noMatch)
			continue
		}
		if err != nil {
			return 0, err
		}

		_, pinned := overrides.Override(s.Theme)
		log.Debug("rule inferred",
			slog.String("theme", desc.Theme),
			slog.String("generator", desc.Generator),
			slog.Int("samples", len(dates)),
			slog.Bool("override", pinned),
		)
		rules = append(rules, inferred{desc: desc, samples: len(dates)})
	}

	descs := make([]themes.Descriptor, len(rules))
	for i, r := range rules {
		descs[i] = r.desc
	}
	if err := catalogue.WriteFile(outPath, descs); err != nil {
		return 0, err
	}

	if store {
		err := db.WithTx(ctx, func(tx *database.Tx) error {
			for _, r := range rules {
				if err := tx.UpsertRule(ctx, r.desc, r.samples); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("store rules: %w", err)
		}
	}

	stored := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		stored[s.Theme] = true
	}
	var unused []string
	for _, theme := range overrides.Themes() {
		if !stored[theme] {
			unused = append(unused, theme)
		}
	}

	printSummary(outPath, registry.Names(), descs, unmatched, unused)
	return len(unmatched), nil
}

// delegating returns the override generator of registry.
func delegating(registry *themes.Registry) *themes.Delegating {
	g, ok := registry.Lookup("delegating")
	if !ok {
		return themes.NewDelegating(registry, nil)
	}
	return g.(*themes.Delegating)
}

// printSummary lists rule counts per generator in registry order.
func printSummary(outPath string, generators []string, descs []themes.Descriptor, unmatched []*themes.NoMatchingGeneratorError, unused []string) {
	byGenerator := map[string]int{}
	for _, d := range descs {
		byGenerator[d.Generator]++
	}

	fmt.Println()
	fmt.Println("=== Inference Summary ===")
	fmt.Printf("Catalogue:  %s\n", outPath)
	fmt.Printf("Rules:      %d\n", len(descs))
	fmt.Printf("Unmatched:  %d\n", len(unmatched))
	fmt.Println()
	for _, name := range generators {
		if n := byGenerator[name]; n > 0 {
			fmt.Printf("  %-36s %4d\n", name, n)
		}
	}

	if len(unmatched) > 0 {
		fmt.Println()
		fmt.Println("Themes without a matching generator:")
		for _, u := range unmatched {
			fmt.Printf("  %s\n", u.Error())
		}
	}

	if len(unused) > 0 {
		fmt.Println()
		fmt.Println("Overrides without stored history:")
		for _, theme := range unused {
			fmt.Printf("  %s\n", theme)
		}
	}
}
