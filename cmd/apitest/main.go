// Command apitest runs smoke checks against a running theme days API.
//
// Usage:
//
//	go run ./cmd/apitest -url http://localhost:8080 [-key API_KEY] [-v]
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"
)

// =============================================================================
// Response Types - mirror the API envelope
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ThemeData struct {
	Date   string   `json:"date"`
	Themes []string `json:"themes"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Descriptors int    `json:"descriptors"`
	Problems    int    `json:"problems"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Theme Days API Smoke Test")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n\n", tr.baseURL)

	tr.testHealth()
	tr.testToday()
	tr.testFixedDates()
	tr.testMovableDates()
	tr.testRangeAndYear()
	tr.testErrors()
	tr.testRules()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.getData("/health", http.StatusOK, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}
	if health.Status != "healthy" {
		tr.recordError("Health", "unexpected status "+health.Status)
		return
	}
	tr.recordSuccess(fmt.Sprintf("healthy, %d rules, %d catalogue problems", health.Descriptors, health.Problems))
}

func (tr *TestRunner) testToday() {
	tr.printSection("Today")

	var day ThemeData
	if err := tr.getData("/api/v1/themes/today", http.StatusOK, &day); err != nil {
		tr.recordError("Today", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("%s: %v", day.Date, day.Themes))
}

func (tr *TestRunner) testFixedDates() {
	tr.printSection("Fixed Dates")

	tr.expectTheme("2024-12-24", "Julafton")
	tr.expectTheme("2025-12-31", "Nyårsafton")
	tr.expectTheme("2024-10-04", "Kanelbullens dag")
}

func (tr *TestRunner) testMovableDates() {
	tr.printSection("Movable Dates")

	tr.expectTheme("2024-03-31", "Påskdagen")
	tr.expectTheme("2025-04-20", "Påskdagen")
	tr.expectTheme("2024-06-21", "Midsommarafton")
	tr.expectTheme("2022-09-11", "Riksdagsval")
}

func (tr *TestRunner) testRangeAndYear() {
	tr.printSection("Range and Year")

	var days []ThemeData
	if err := tr.getData("/api/v1/themes/range?start=2024-12-01&end=2024-12-31", http.StatusOK, &days); err != nil {
		tr.recordError("Range", err.Error())
	} else if len(days) == 0 {
		tr.recordError("Range", "no theme days in December 2024")
	} else {
		tr.recordSuccess(fmt.Sprintf("December 2024 has %d theme days", len(days)))
	}

	if err := tr.getData("/api/v1/themes/year/2025", http.StatusOK, &days); err != nil {
		tr.recordError("Year", err.Error())
	} else {
		tr.recordSuccess(fmt.Sprintf("2025 has %d theme days", len(days)))
	}
}

func (tr *TestRunner) testErrors() {
	tr.printSection("Error Handling")

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/v1/themes/date/2024-02-30", http.StatusBadRequest, "BAD_REQUEST"},
		{"/api/v1/themes/range?start=2024-01-01&end=2026-01-01", http.StatusBadRequest, "RANGE_TOO_LARGE"},
		{"/api/v1/themes/year/1200", http.StatusBadRequest, "YEAR_OUT_OF_RANGE"},
		{"/api/v1/nothing", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, c := range cases {
		resp, status, err := tr.do(http.MethodGet, c.path, nil)
		switch {
		case err != nil:
			tr.recordError(c.path, err.Error())
		case status != c.status || resp.Error == nil || resp.Error.Code != c.code:
			tr.recordError(c.path, fmt.Sprintf("got %d %+v, want %d %s", status, resp.Error, c.status, c.code))
		default:
			tr.recordSuccess(fmt.Sprintf("%s -> %s", c.path, c.code))
		}
	}
}

func (tr *TestRunner) testRules() {
	tr.printSection("Rules")

	var rules struct {
		Rules []json.RawMessage `json:"rules"`
	}
	if err := tr.getData("/api/v1/rules", http.StatusOK, &rules); err != nil {
		tr.recordError("Rules", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("%d rules loaded", len(rules.Rules)))

	body, _ := json.Marshal(map[string]any{
		"theme": "Smoke test day",
		"dates": []string{"2022-11-02", "2023-11-02", "2024-11-02"},
	})
	resp, status, err := tr.do(http.MethodPost, "/api/v1/rules/infer", body)
	switch {
	case err != nil:
		tr.recordError("Infer", err.Error())
	case status == http.StatusUnauthorized && tr.apiKey == "":
		tr.recordSuccess("infer requires an API key (pass -key to exercise it)")
	case status != http.StatusCreated:
		tr.recordError("Infer", fmt.Sprintf("status %d: %+v", status, resp.Error))
	default:
		tr.recordSuccess("infer -> " + string(resp.Data))
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (tr *TestRunner) expectTheme(date, theme string) {
	var day ThemeData
	if err := tr.getData("/api/v1/themes/date/"+date, http.StatusOK, &day); err != nil {
		tr.recordError(date, err.Error())
		return
	}
	if !slices.Contains(day.Themes, theme) {
		tr.recordError(date, fmt.Sprintf("%q missing from %v", theme, day.Themes))
		return
	}
	tr.recordSuccess(fmt.Sprintf("%s: %s", date, theme))
}

func (tr *TestRunner) do(method, path string, body []byte) (*APIResponse, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, tr.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tr.apiKey != "" {
		req.Header.Set("X-API-Key", tr.apiKey)
	}

	resp, err := tr.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("invalid JSON: %w", err)
	}
	return &apiResp, resp.StatusCode, nil
}

func (tr *TestRunner) getData(path string, wantStatus int, out any) error {
	resp, status, err := tr.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != wantStatus {
		return fmt.Errorf("status %d, want %d (%+v)", status, wantStatus, resp.Error)
	}
	if !resp.Success {
		return fmt.Errorf("API error: %+v", resp.Error)
	}
	return json.Unmarshal(resp.Data, out)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Printf("\n--- %s ---\n", name)
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	if tr.verbose {
		fmt.Printf("  ✓ %s\n", msg)
	}
}

func (tr *TestRunner) recordError(test, msg string) {
	tr.errors = append(tr.errors, fmt.Sprintf("%s: %s", test, msg))
	fmt.Printf("  ✗ %s: %s\n", test, msg)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Printf("Passed: %d  Failed: %d\n", tr.successCount, len(tr.errors))
	fmt.Println("==============================================")
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key for inference")
	verbose := flag.Bool("v", false, "Show passing checks")
	flag.Parse()

	tr := NewTestRunner(*baseURL, *apiKey, *verbose)
	tr.Run()

	if len(tr.errors) > 0 {
		os.Exit(1)
	}
}
