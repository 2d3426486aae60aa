// Command import loads a historical theme-day file into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -json data/specialThemes.json -db data/themedays.db
//
// Rows already present for the same theme and date are kept. With -replace,
// every row previously imported from the same source is removed first, so a
// corrected file can be reimported.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zapponejosh/themedays-api/internal/database"
)

func main() {
	jsonPath := flag.String("json", "data/specialThemes.json", "Path to history JSON file")
	dbPath := flag.String("db", "data/themedays.db", "Path to SQLite database")
	source := flag.String("source", "", "Source tag stored with each row (default: file name)")
	replace := flag.Bool("replace", false, "Delete rows previously imported from the same source")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if *source == "" {
		*source = filepath.Base(*jsonPath)
	}

	if err := run(*jsonPath, *dbPath, *source, *replace, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(jsonPath, dbPath, source string, replace bool, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	logger.Info("reading history file", slog.String("path", jsonPath))

	f, err := os.Open(jsonPath)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	occs, err := database.ParseHistory(f, source)
	if err != nil {
		return err
	}
	logger.Info("parsed history", slog.Int("occurrences", len(occs)))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	var inserted, skipped int
	var deleted int64
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		if replace {
			n, err := tx.DeleteSource(ctx, source)
			if err != nil {
				return err
			}
			deleted = n
		}

		for i, occ := range occs {
			ok, err := tx.InsertOccurrence(ctx, occ)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			} else {
				skipped++
				logger.Debug("already stored",
					slog.String("theme", occ.Theme),
					slog.String("date", occ.Date),
				)
			}

			if (i+1)%500 == 0 {
				logger.Debug("import progress", slog.Int("row", i+1), slog.Int("total", len(occs)))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import data: %w", err)
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Source:              %s\n", source)
	fmt.Printf("Rows deleted:        %d\n", deleted)
	fmt.Printf("Rows inserted:       %d\n", inserted)
	fmt.Printf("Rows already stored: %d\n", skipped)
	fmt.Printf("Stored occurrences:  %d\n", stats.Occurrences)
	fmt.Printf("Stored themes:       %d\n", stats.Themes)
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}
