package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rickar/cal/v2"

	"github.com/zapponejosh/themedays-api/internal/calendar"
	"github.com/zapponejosh/themedays-api/internal/catalogue"
	"github.com/zapponejosh/themedays-api/internal/config"
	"github.com/zapponejosh/themedays-api/internal/database"
	"github.com/zapponejosh/themedays-api/internal/themes"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

type testEnv struct {
	db       *database.DB
	cfg      *config.Config
	handlers *Handlers
	router   http.Handler
}

func testDescriptors() []themes.Descriptor {
	return []themes.Descriptor{
		{Theme: "Julafton", Generator: "same_date", Params: map[string]int{themes.ParamMonth: 12, themes.ParamDay: 24}},
		{Theme: "Nyårsafton", Generator: "same_date", Params: map[string]int{themes.ParamMonth: 12, themes.ParamDay: 31}},
		{Theme: "Påskdagen", Generator: "easter", Params: map[string]int{themes.ParamIndex: 3}},
		{Theme: "Riksdagsval", Generator: "swedish_parliamentary_election"},
	}
}

// setupTest builds handlers over an in-memory database and a small catalogue.
// An empty apiKey leaves inference open.
func setupTest(t *testing.T, apiKey string) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := database.Open(database.DefaultConfig(":memory:"), logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	cfg := &config.Config{
		Port:            8080,
		Env:             config.EnvDevelopment,
		ShutdownTimeout: time.Second,
		DatabasePath:    ":memory:",
		MaxRangeDays:    366,
		APIKey:          apiKey,
		LogLevel:        "error",
		LogFormat:       "text",
	}

	cat := &catalogue.Catalogue{
		Descriptors: testDescriptors(),
		Files:       []string{"test.json"},
		Problems:    []*catalogue.FileError{{Path: "broken.json", Custom: true, Err: io.ErrUnexpectedEOF}},
	}
	dispatcher := themes.NewDispatcher(themes.InferenceRegistry(calendar.NewMeeusEphemeris()), logger)
	provider := themes.NewProvider(dispatcher, cat.Descriptors)

	h := NewHandlers(provider, cat, db, cfg, logger)
	h.now = func() time.Time { return time.Date(2024, 12, 24, 15, 30, 0, 0, time.Local) }

	return &testEnv{db: db, cfg: cfg, handlers: h, router: Routes(h)}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the envelope and its data into out.
func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) Response {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *ErrorInfo      `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if out != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, out); err != nil {
			t.Fatalf("decode data %s: %v", raw.Data, err)
		}
	}
	return Response{Success: raw.Success, Error: raw.Error}
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d: %s", rec.Code, status, rec.Body.String())
	}
	resp := decode(t, rec, nil)
	if resp.Success || resp.Error == nil || resp.Error.Code != code {
		t.Errorf("error = %+v, want code %s", resp.Error, code)
	}
}

// =============================================================================
// THEME QUERIES
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t, "")
	rec := env.do(t, http.MethodGet, "/health", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data map[string]any
	decode(t, rec, &data)
	if data["status"] != "healthy" || data["descriptors"] != float64(4) || data["problems"] != float64(1) {
		t.Errorf("data = %v", data)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("X-Request-Id header missing")
	}
}

func TestGetToday(t *testing.T) {
	env := setupTest(t, "")
	rec := env.do(t, http.MethodGet, "/api/v1/themes/today", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data themes.ThemeData
	decode(t, rec, &data)
	if data.Date != "2024-12-24" || len(data.Themes) != 1 || data.Themes[0] != "Julafton" {
		t.Errorf("data = %+v", data)
	}
}

func TestGetDate(t *testing.T) {
	env := setupTest(t, "")

	tests := []struct {
		name   string
		path   string
		status int
		themes []string
	}{
		{"easter", "/api/v1/themes/date/2024-03-31", http.StatusOK, []string{"Påskdagen"}},
		{"empty day", "/api/v1/themes/date/2024-07-07", http.StatusOK, []string{}},
		{"bad format", "/api/v1/themes/date/20240331", http.StatusBadRequest, nil},
		{"impossible date", "/api/v1/themes/date/2023-02-29", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, nil, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.themes == nil {
				return
			}
			var data themes.ThemeData
			decode(t, rec, &data)
			if len(data.Themes) != len(tt.themes) {
				t.Fatalf("themes = %v, want %v", data.Themes, tt.themes)
			}
			for i := range tt.themes {
				if data.Themes[i] != tt.themes[i] {
					t.Errorf("themes = %v, want %v", data.Themes, tt.themes)
				}
			}
			if !strings.Contains(rec.Body.String(), `"themes":[`) {
				t.Errorf("themes not encoded as array: %s", rec.Body.String())
			}
		})
	}
}

func TestGetRange(t *testing.T) {
	env := setupTest(t, "")

	rec := env.do(t, http.MethodGet, "/api/v1/themes/range?start=2022-09-01&end=2022-12-31", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var data []themes.ThemeData
	decode(t, rec, &data)
	want := []string{"2022-09-11", "2022-12-24", "2022-12-31"}
	if len(data) != len(want) {
		t.Fatalf("data = %+v", data)
	}
	for i := range want {
		if data[i].Date != want[i] {
			t.Errorf("data[%d].Date = %s, want %s", i, data[i].Date, want[i])
		}
	}
}

func TestGetRange_Errors(t *testing.T) {
	env := setupTest(t, "")

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing end", "start=2024-01-01", CodeBadRequest},
		{"bad start", "start=2024/01/01&end=2024-01-31", CodeBadRequest},
		{"bad end", "start=2024-01-01&end=tomorrow", CodeBadRequest},
		{"reversed", "start=2024-02-01&end=2024-01-01", CodeBadRequest},
		{"too long", "start=2024-01-01&end=2025-01-01", CodeRangeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/themes/range?"+tt.query, nil, nil)
			assertError(t, rec, http.StatusBadRequest, tt.code)
		})
	}

	// A leap year is exactly 366 days.
	rec := env.do(t, http.MethodGet, "/api/v1/themes/range?start=2024-01-01&end=2024-12-31", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("full leap year status = %d", rec.Code)
	}
}

func TestGetYear(t *testing.T) {
	env := setupTest(t, "")

	rec := env.do(t, http.MethodGet, "/api/v1/themes/year/2022", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data []themes.ThemeData
	decode(t, rec, &data)
	if len(data) != 4 || data[0].Date != "2022-04-17" || data[1].Themes[0] != "Riksdagsval" {
		t.Errorf("data = %+v", data)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/themes/year/2023", nil, nil)
	decode(t, rec, &data)
	if len(data) != 3 {
		t.Errorf("2023 has %d theme days, want 3", len(data))
	}

	assertError(t, env.do(t, http.MethodGet, "/api/v1/themes/year/1500", nil, nil), http.StatusBadRequest, CodeYearOutOfRange)
	assertError(t, env.do(t, http.MethodGet, "/api/v1/themes/year/next", nil, nil), http.StatusBadRequest, CodeBadRequest)
}

func TestThemes_PublicHolidays(t *testing.T) {
	env := setupTest(t, "")
	juldagen := &cal.Holiday{Name: "Juldagen", Type: cal.ObservancePublic, Month: time.December, Day: 25, Func: cal.CalcDayOfMonth}
	env.handlers.provider = env.handlers.provider.WithPublicHolidays(themes.NewPublicHolidays(juldagen))

	var day themes.ThemeData
	decode(t, env.do(t, http.MethodGet, "/api/v1/themes/date/2022-12-25", nil, nil), &day)
	if day.Holiday != "Juldagen" || !day.WorkFree || len(day.Themes) != 0 {
		t.Errorf("date 2022-12-25 = %+v", day)
	}

	var eve themes.ThemeData
	rec := env.do(t, http.MethodGet, "/api/v1/themes/date/2024-12-24", nil, nil)
	decode(t, rec, &eve)
	if eve.Holiday != "" || eve.WorkFree || !strings.Contains(rec.Body.String(), `"themes":["Julafton"]`) {
		t.Errorf("date 2024-12-24 = %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "work_free") {
		t.Errorf("workday encodes work_free: %s", rec.Body.String())
	}

	var data []themes.ThemeData
	decode(t, env.do(t, http.MethodGet, "/api/v1/themes/range?start=2022-12-20&end=2022-12-31", nil, nil), &data)
	want := []themes.ThemeData{
		{Date: "2022-12-24", Themes: []string{"Julafton"}, WorkFree: true},
		{Date: "2022-12-25", Themes: []string{}, Holiday: "Juldagen", WorkFree: true},
		{Date: "2022-12-31", Themes: []string{"Nyårsafton"}, WorkFree: true},
	}
	if !reflect.DeepEqual(data, want) {
		t.Errorf("range = %+v, want %+v", data, want)
	}

	var year []themes.ThemeData
	decode(t, env.do(t, http.MethodGet, "/api/v1/themes/year/2023", nil, nil), &year)
	if len(year) != 4 || year[2].Date != "2023-12-25" || year[2].Holiday != "Juldagen" {
		t.Errorf("year 2023 = %+v", year)
	}
}

func TestListRules(t *testing.T) {
	env := setupTest(t, "")
	rec := env.do(t, http.MethodGet, "/api/v1/rules", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data struct {
		Rules    []themes.Descriptor `json:"rules"`
		Files    []string            `json:"files"`
		Problems []string            `json:"problems"`
	}
	decode(t, rec, &data)
	if len(data.Rules) != 4 || data.Rules[0].Theme != "Julafton" || data.Rules[0].Params[themes.ParamDay] != 24 {
		t.Errorf("rules = %+v", data.Rules)
	}
	if len(data.Problems) != 1 || !strings.Contains(data.Problems[0], "broken.json") {
		t.Errorf("problems = %v", data.Problems)
	}
}

// =============================================================================
// INFERENCE
// =============================================================================

func TestInferRule_WithDates(t *testing.T) {
	env := setupTest(t, "")

	rec := env.do(t, http.MethodPost, "/api/v1/rules/infer", InferRequest{
		Theme: "Kanelbullens dag",
		Dates: []string{"2021-10-04", "2022-10-04", "2023-10-04"},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var data InferResponse
	decode(t, rec, &data)
	if data.Rule.Generator != "same_date" || data.Rule.Params[themes.ParamMonth] != 10 || data.Samples != 3 {
		t.Errorf("data = %+v", data)
	}

	stored, err := env.db.GetRule(context.Background(), "Kanelbullens dag")
	if err != nil {
		t.Fatalf("GetRule() error = %v", err)
	}
	if stored.Descriptor.Generator != "same_date" || stored.SampleCount != 3 {
		t.Errorf("stored = %+v", stored)
	}
}

func TestInferRule_FromHistory(t *testing.T) {
	env := setupTest(t, "")
	ctx := context.Background()
	for _, d := range []string{"2022-05-29", "2023-05-28", "2024-05-26"} {
		if err := env.db.CreateOccurrence(ctx, &database.Occurrence{Theme: "Mors dag", Date: d}); err != nil {
			t.Fatal(err)
		}
	}

	rec := env.do(t, http.MethodPost, "/api/v1/rules/infer", InferRequest{Theme: "Mors dag"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var data InferResponse
	decode(t, rec, &data)
	if data.Rule.Generator != "last_weekday_of_month" {
		t.Errorf("generator = %q, want last_weekday_of_month", data.Rule.Generator)
	}
}

func TestInferRule_Errors(t *testing.T) {
	env := setupTest(t, "")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"no theme", InferRequest{Dates: []string{"2024-01-01"}}, http.StatusBadRequest, CodeBadRequest},
		{"bad date", InferRequest{Theme: "X", Dates: []string{"2024-13-01"}}, http.StatusBadRequest, CodeBadRequest},
		{"no history", InferRequest{Theme: "Okänd"}, http.StatusNotFound, CodeNotFound},
		{"no match", InferRequest{Theme: "Slumpdagen", Dates: []string{"2021-03-03", "2022-07-19", "2023-11-02"}}, http.StatusUnprocessableEntity, CodeNoMatchingRule},
		{"not json", "nope", http.StatusBadRequest, CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertError(t, env.do(t, http.MethodPost, "/api/v1/rules/infer", tt.body, nil), tt.status, tt.code)
		})
	}
}

func TestInferRule_RequiresAPIKey(t *testing.T) {
	env := setupTest(t, "secret")
	body := InferRequest{Theme: "Julafton", Dates: []string{"2022-12-24", "2023-12-24"}}

	assertError(t, env.do(t, http.MethodPost, "/api/v1/rules/infer", body, nil), http.StatusUnauthorized, CodeUnauthorized)
	assertError(t, env.do(t, http.MethodPost, "/api/v1/rules/infer", body, map[string]string{"X-API-Key": "wrong"}), http.StatusUnauthorized, CodeUnauthorized)

	rec := env.do(t, http.MethodPost, "/api/v1/rules/infer", body, map[string]string{"X-API-Key": "secret"})
	if rec.Code != http.StatusCreated {
		t.Errorf("status with key = %d", rec.Code)
	}

	// Reads stay public.
	if rec := env.do(t, http.MethodGet, "/api/v1/rules", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("GET /rules status = %d", rec.Code)
	}
}

func TestListHistory(t *testing.T) {
	env := setupTest(t, "")
	if err := env.db.CreateOccurrence(context.Background(), &database.Occurrence{Theme: "Julafton", Date: "2023-12-24"}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/history/themes", nil, nil)
	var data []database.ThemeSummary
	decode(t, rec, &data)
	if len(data) != 1 || data[0].Theme != "Julafton" || data[0].Count != 1 {
		t.Errorf("data = %+v", data)
	}
}

// =============================================================================
// ROUTING AND MIDDLEWARE
// =============================================================================

func TestRoutes_NotFound(t *testing.T) {
	env := setupTest(t, "")
	assertError(t, env.do(t, http.MethodGet, "/api/v1/readings/today", nil, nil), http.StatusNotFound, CodeNotFound)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	env := setupTest(t, "")
	rec := env.do(t, http.MethodOptions, "/api/v1/themes/today", nil, nil)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assertError(t, rec, http.StatusInternalServerError, CodeInternal)
}
