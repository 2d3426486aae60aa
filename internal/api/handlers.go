package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/themedays-api/internal/calendar"
	"github.com/zapponejosh/themedays-api/internal/catalogue"
	"github.com/zapponejosh/themedays-api/internal/config"
	"github.com/zapponejosh/themedays-api/internal/database"
	"github.com/zapponejosh/themedays-api/internal/logger"
	"github.com/zapponejosh/themedays-api/internal/themes"
)

// maxInferBody caps the request body of POST /rules/infer.
const maxInferBody = 1 << 20

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	provider  *themes.Provider
	catalogue *catalogue.Catalogue
	db        *database.DB
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandlers wires the handlers. cat is the catalogue provider serves and
// is only used for reporting.
func NewHandlers(provider *themes.Provider, cat *catalogue.Catalogue, db *database.DB, cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		provider:  provider,
		catalogue: cat,
		db:        db,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Health(ctx); err != nil {
		logger.FromContext(ctx, h.logger).Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", CodeUnhealthy)
		return
	}

	WriteSuccess(w, map[string]any{
		"status":      "healthy",
		"descriptors": len(h.catalogue.Descriptors),
		"problems":    len(h.catalogue.Problems),
	})
}

// GetToday handles GET /api/v1/themes/today
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	h.writeDay(w, r, calendar.Truncate(h.now()))
}

// GetDate handles GET /api/v1/themes/date/{date}
func (h *Handlers) GetDate(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	date, err := calendar.ParseDateString(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}
	h.writeDay(w, r, date)
}

func (h *Handlers) writeDay(w http.ResponseWriter, r *http.Request, date time.Time) {
	data, err := h.provider.Day(r.Context(), date)
	if err != nil {
		h.projectionError(w, r, err)
		return
	}
	WriteSuccess(w, data)
}

// GetRange handles GET /api/v1/themes/range?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handlers) GetRange(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		WriteBadRequest(w, "Both start and end date parameters are required")
		return
	}

	start, err := calendar.ParseDateString(startStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid start date format: %s. Use YYYY-MM-DD", startStr))
		return
	}
	end, err := calendar.ParseDateString(endStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid end date format: %s. Use YYYY-MM-DD", endStr))
		return
	}
	if start.After(end) {
		WriteBadRequest(w, "Start date must be before or equal to end date")
		return
	}
	if days := calendar.DaysBetween(start, end) + 1; days > h.cfg.MaxRangeDays {
		WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Date range cannot exceed %d days", h.cfg.MaxRangeDays), CodeRangeTooLarge)
		return
	}

	data, err := h.provider.Fetch(r.Context(), start, end)
	if err != nil {
		h.projectionError(w, r, err)
		return
	}
	WriteSuccess(w, data)
}

// GetYear handles GET /api/v1/themes/year/{year}
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	yearStr := chi.URLParam(r, "year")
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 || year > 9999 {
		WriteBadRequest(w, fmt.Sprintf("Invalid year: %s", yearStr))
		return
	}

	data, err := h.provider.Fetch(r.Context(), calendar.Date(year, time.January, 1), calendar.Date(year, time.December, 31))
	if err != nil {
		h.projectionError(w, r, err)
		return
	}
	WriteSuccess(w, data)
}

// projectionError maps provider failures to responses. Years the calendar
// functions cannot compute are the caller's problem; anything else is ours.
func (h *Handlers) projectionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, calendar.ErrYearOutOfRange) {
		WriteError(w, http.StatusBadRequest, err.Error(), CodeYearOutOfRange)
		return
	}
	logger.FromContext(r.Context(), h.logger).Error("theme projection failed", slog.Any("error", err))
	WriteInternalError(w, "Failed to compute theme days")
}

// ListRules handles GET /api/v1/rules
func (h *Handlers) ListRules(w http.ResponseWriter, r *http.Request) {
	problems := make([]string, len(h.catalogue.Problems))
	for i, p := range h.catalogue.Problems {
		problems[i] = p.Error()
	}

	WriteSuccess(w, map[string]any{
		"rules":    h.provider.Descriptors(),
		"files":    h.catalogue.Files,
		"problems": problems,
	})
}

// InferRequest is the body of POST /api/v1/rules/infer. Without dates, the
// stored history of the theme is used.
type InferRequest struct {
	Theme string   `json:"theme"`
	Dates []string `json:"dates"`
}

// InferResponse reports the inferred rule and the history it came from.
type InferResponse struct {
	Rule    themes.Descriptor `json:"rule"`
	Samples int               `json:"samples"`
}

// InferRule handles POST /api/v1/rules/infer
func (h *Handlers) InferRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, h.logger)

	var req InferRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInferBody)).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Theme == "" {
		WriteBadRequest(w, "theme is required")
		return
	}

	var dates []time.Time
	if len(req.Dates) > 0 {
		for _, s := range req.Dates {
			d, err := calendar.ParseDateString(s)
			if err != nil {
				WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", s))
				return
			}
			dates = append(dates, d)
		}
	} else {
		stored, err := h.db.OccurrenceDates(ctx, req.Theme)
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("No dates given and no history stored for %q", req.Theme))
			return
		}
		if err != nil {
			log.Error("failed to load theme history", slog.String("theme", req.Theme), slog.Any("error", err))
			WriteInternalError(w, "Failed to load theme history")
			return
		}
		dates = stored
	}

	rule, err := h.provider.Dispatcher().Infer(req.Theme, dates)
	var noMatch *themes.NoMatchingGeneratorError
	switch {
	case errors.As(err, &noMatch):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeNoMatchingRule)
		return
	case errors.Is(err, themes.ErrNoDates):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeNotEnoughDates)
		return
	case err != nil:
		log.Error("inference failed", slog.String("theme", req.Theme), slog.Any("error", err))
		WriteInternalError(w, "Failed to infer rule")
		return
	}

	if err := h.db.UpsertRule(ctx, rule, len(dates)); err != nil {
		log.Error("failed to store rule", slog.String("theme", req.Theme), slog.Any("error", err))
		WriteInternalError(w, "Failed to store rule")
		return
	}

	log.Info("rule inferred",
		slog.String("theme", rule.Theme),
		slog.String("generator", rule.Generator),
		slog.Int("samples", len(dates)),
	)
	WriteCreated(w, InferResponse{Rule: rule, Samples: len(dates)})
}

// ListHistory handles GET /api/v1/history/themes
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.db.ListThemes(r.Context())
	if err != nil {
		logger.FromContext(r.Context(), h.logger).Error("failed to list history", slog.Any("error", err))
		WriteInternalError(w, "Failed to list stored themes")
		return
	}
	WriteSuccess(w, summaries)
}
