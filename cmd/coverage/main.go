// Command coverage checks a catalogue against the stored history: every
// recorded occurrence of a theme must be reproduced by projecting the
// theme's rule onto that year.
//
// Usage:
//
//	go run ./cmd/coverage -db data/themedays.db [-catalogue file.json] [-o results.json]
//
// Without -catalogue the embedded catalogue plus CUSTOM_THEMES_DIR is used.
// The exit status is 1 when any occurrence is not reproduced.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
	"github.com/zapponejosh/themedays-api/internal/catalogue"
	"github.com/zapponejosh/themedays-api/internal/database"
	"github.com/zapponejosh/themedays-api/internal/logger"
	"github.com/zapponejosh/themedays-api/internal/themes"
)

// ThemeResult holds the outcome for one theme.
type ThemeResult struct {
	Theme     string   `json:"theme"`
	Generator string   `json:"generator,omitempty"`
	Checked   int      `json:"checked"`
	Matched   int      `json:"matched"`
	Missed    []string `json:"missed,omitempty"` // "stored -> projected"
}

// Analysis aggregates all theme results.
type Analysis struct {
	Themes        int           `json:"themes"`
	Checked       int           `json:"checked"`
	Matched       int           `json:"matched"`
	WithoutRule   []string      `json:"without_rule"`
	WithoutData   []string      `json:"without_history"`
	Failures      []ThemeResult `json:"failures"`
	GeneratedAt   time.Time     `json:"generated_at"`
	CataloguePath string        `json:"catalogue"`
}

func main() {
	dbPath := flag.String("db", "data/themedays.db", "Path to SQLite database")
	cataloguePath := flag.String("catalogue", "", "Catalogue file to check (default: embedded + custom dir)")
	customDir := flag.String("custom", os.Getenv("CUSTOM_THEMES_DIR"), "Custom catalogue directory")
	verbose := flag.Bool("v", false, "Verbose output (show each theme)")
	outputFile := flag.String("o", "", "Write results to JSON file")
	flag.Parse()

	log := logger.New(os.Stderr, "warn", "text")
	ctx := context.Background()

	descs, err := loadDescriptors(ctx, *cataloguePath, *customDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(database.DefaultConfig(*dbPath), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("================================================================")
	fmt.Println("Theme Days - Catalogue Coverage")
	fmt.Println("================================================================")
	fmt.Printf("Database:    %s\n", *dbPath)
	fmt.Printf("Catalogue:   %s\n", describeCatalogue(*cataloguePath))
	fmt.Printf("Rules:       %d\n", len(descs))
	fmt.Println()

	dispatcher := themes.NewDispatcher(themes.DefaultRegistry(calendar.NewMeeusEphemeris()), log)
	analysis, err := analyze(ctx, db, dispatcher, descs, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	analysis.CataloguePath = describeCatalogue(*cataloguePath)

	printSummary(analysis)

	if *outputFile != "" {
		if err := saveResults(*outputFile, analysis); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if len(analysis.Failures) > 0 {
		os.Exit(1)
	}
}

func describeCatalogue(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

func loadDescriptors(ctx context.Context, path, customDir string, log *slog.Logger) ([]themes.Descriptor, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		loader := &catalogue.Loader{Static: os.DirFS(filepath.Dir(abs)), StaticPath: filepath.Base(abs), Logger: log}
		cat, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		if len(cat.Problems) > 0 {
			return nil, cat.Problems[0]
		}
		return cat.Descriptors, nil
	}

	cat, err := catalogue.NewLoader(customDir, log, nil).Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range cat.Problems {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", p)
	}
	return cat.Descriptors, nil
}

func analyze(ctx context.Context, db *database.DB, dispatcher *themes.Dispatcher, descs []themes.Descriptor, verbose bool) (*Analysis, error) {
	rules := make(map[string][]themes.Descriptor, len(descs))
	for _, d := range descs {
		rules[d.Theme] = append(rules[d.Theme], d)
	}

	summaries, err := db.ListThemes(ctx)
	if err != nil {
		return nil, err
	}

	a := &Analysis{GeneratedAt: time.Now().UTC(), WithoutRule: []string{}, WithoutData: []string{}, Failures: []ThemeResult{}}
	stored := make(map[string]bool, len(summaries))

	for _, s := range summaries {
		stored[s.Theme] = true
		a.Themes++

		candidates, ok := rules[s.Theme]
		if !ok {
			a.WithoutRule = append(a.WithoutRule, s.Theme)
			continue
		}

		dates, err := db.OccurrenceDates(ctx, s.Theme)
		if err != nil {
			return nil, err
		}

		res := check(dispatcher, s.Theme, candidates, dates)
		a.Checked += res.Checked
		a.Matched += res.Matched
		if len(res.Missed) > 0 {
			a.Failures = append(a.Failures, res)
		}
		if verbose {
			status := "✓"
			if len(res.Missed) > 0 {
				status = "✗"
			}
			fmt.Printf("  %s %-50s %-32s %d/%d\n", status, res.Theme, res.Generator, res.Matched, res.Checked)
		}
	}

	for theme := range rules {
		if !stored[theme] {
			a.WithoutData = append(a.WithoutData, theme)
		}
	}
	sort.Strings(a.WithoutData)

	return a, nil
}

// check projects every rule of a theme onto the year of each stored date.
// A date is reproduced when any of the rules lands on it; a theme may have
// several rules, such as a custom file adding a second date.
func check(dispatcher *themes.Dispatcher, theme string, descs []themes.Descriptor, dates []time.Time) ThemeResult {
	generators := make([]string, len(descs))
	for i, desc := range descs {
		generators[i] = desc.Generator
	}
	res := ThemeResult{Theme: theme, Generator: strings.Join(generators, ",")}

	for _, d := range dates {
		res.Checked++
		projected := make([]string, 0, len(descs))
		matched := false
		for _, desc := range descs {
			got, err := dispatcher.ProjectYear(desc, d.Year())
			switch {
			case errors.Is(err, themes.ErrNoOccurrence):
				projected = append(projected, "none")
			case err != nil:
				projected = append(projected, "error: "+err.Error())
			case calendar.SameDay(got, d):
				matched = true
			default:
				projected = append(projected, calendar.FormatDate(got))
			}
		}
		if matched {
			res.Matched++
			continue
		}
		res.Missed = append(res.Missed, calendar.FormatDate(d)+" -> "+strings.Join(projected, " | "))
	}
	return res
}

func printSummary(a *Analysis) {
	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Themes in history:   %d\n", a.Themes)
	fmt.Printf("Occurrences checked: %d\n", a.Checked)
	if a.Checked > 0 {
		fmt.Printf("Reproduced:          %d (%.1f%%)\n", a.Matched, 100*float64(a.Matched)/float64(a.Checked))
	}
	fmt.Printf("Without rule:        %d\n", len(a.WithoutRule))
	fmt.Printf("Rules w/o history:   %d\n", len(a.WithoutData))

	if len(a.Failures) > 0 {
		fmt.Println()
		fmt.Println("=== Not reproduced ===")
		for _, f := range a.Failures {
			fmt.Printf("%s (%s)\n", f.Theme, f.Generator)
			fmt.Printf("  %s\n", strings.Join(f.Missed, "\n  "))
		}
	}

	if len(a.WithoutRule) > 0 {
		fmt.Println()
		fmt.Println("=== Themes without a rule ===")
		for _, t := range a.WithoutRule {
			fmt.Printf("  %s\n", t)
		}
	}
}

func saveResults(path string, a *Analysis) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Printf("\nResults written to %s\n", path)
	return nil
}
