// Command dategen prints every theme day of a year, preceded by the
// movable anchor dates the rules depend on.
//
// Usage:
//
//	go run ./cmd/dategen -year 2025 [-custom dir] [-json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
	"github.com/zapponejosh/themedays-api/internal/catalogue"
	"github.com/zapponejosh/themedays-api/internal/logger"
	"github.com/zapponejosh/themedays-api/internal/themes"
)

func main() {
	year := flag.Int("year", time.Now().Year(), "Year to generate theme days for")
	customDir := flag.String("custom", os.Getenv("CUSTOM_THEMES_DIR"), "Custom catalogue directory")
	asJSON := flag.Bool("json", false, "Print the theme days as JSON")
	flag.Parse()

	if err := run(*year, *customDir, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(year int, customDir string, asJSON bool) error {
	ctx := context.Background()
	log := logger.New(os.Stderr, "warn", "text")

	cat, err := catalogue.NewLoader(customDir, log, nil).Load(ctx)
	if err != nil {
		return err
	}

	eph := calendar.NewMeeusEphemeris()
	provider := themes.NewProvider(themes.NewDispatcher(themes.DefaultRegistry(eph), log), cat.Descriptors).
		WithPublicHolidays(themes.SwedishPublicHolidays())

	days, err := provider.Fetch(ctx, calendar.Date(year, time.January, 1), calendar.Date(year, time.December, 31))
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(days)
	}

	fmt.Printf("=== Temadagar %d ===\n\n", year)
	if err := printAnchors(year, eph); err != nil {
		return err
	}

	for _, td := range days {
		date, err := calendar.ParseDateString(td.Date)
		if err != nil {
			return err
		}
		line := strings.Join(td.Themes, ", ")
		if td.Holiday != "" {
			line = strings.TrimPrefix(line+" ["+td.Holiday+"]", " ")
		}
		fmt.Printf("  %s  %-8s %s\n", td.Date, calendar.SwedishWeekday(calendar.ISOWeekday(date)), line)
	}

	fmt.Printf("\n%d dagar, %d regler\n", len(days), len(cat.Descriptors))
	return nil
}

func printAnchors(year int, eph calendar.Ephemeris) error {
	fmt.Println("Rörliga datum:")
	for _, a := range []struct {
		name   string
		offset int
	}{
		{"Påskdagen", 0},
		{"Kristi himmelsfärd", 39},
		{"Pingstdagen", 49},
	} {
		date, err := calendar.EasterOffset(year, a.offset)
		if err != nil {
			return err
		}
		fmt.Printf("  %-19s %s\n", a.name+":", calendar.FormatDate(date))
	}
	fmt.Printf("  Midsommarafton:     %s\n", calendar.FormatDate(themes.MidsummerEve(year)))
	fmt.Printf("  Alla helgons dag:   %s\n", calendar.FormatDate(themes.AllSaintsDay(year)))
	fmt.Printf("  Första advent:      %s\n", calendar.FormatDate(calendar.CalculateAdvent(year)))

	for _, s := range calendar.Seasons {
		t, err := eph.SeasonEvent(year, s)
		if err != nil {
			return err
		}
		fmt.Printf("  %-19s %s\n", s.String()+":", calendar.FormatDate(t))
	}
	fmt.Println()
	return nil
}
