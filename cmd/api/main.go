// Command api serves theme days over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/themedays-api/internal/api"
	"github.com/zapponejosh/themedays-api/internal/calendar"
	"github.com/zapponejosh/themedays-api/internal/catalogue"
	"github.com/zapponejosh/themedays-api/internal/config"
	"github.com/zapponejosh/themedays-api/internal/database"
	"github.com/zapponejosh/themedays-api/internal/logger"
	"github.com/zapponejosh/themedays-api/internal/themes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.Setup(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting theme days API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
	)

	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// There is no UI to notify, so catalogue problems surface as warnings.
	notifier := catalogue.NotifierFunc(func(ctx context.Context, title, message string) {
		log.WarnContext(ctx, title, slog.String("detail", message))
	})
	cat, err := catalogue.NewLoader(cfg.CustomThemesDir, log, notifier).Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}
	log.Info("catalogue loaded",
		slog.Int("descriptors", len(cat.Descriptors)),
		slog.Int("files", len(cat.Files)),
		slog.Int("problems", len(cat.Problems)),
	)

	dispatcher := themes.NewDispatcher(themes.InferenceRegistry(calendar.NewMeeusEphemeris()), log)
	provider := themes.NewProvider(dispatcher, cat.Descriptors).WithPublicHolidays(themes.SwedishPublicHolidays())
	handlers := api.NewHandlers(provider, cat, db, cfg, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Routes(handlers),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
