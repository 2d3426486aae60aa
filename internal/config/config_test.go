package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvDevelopment)
	}
	if cfg.DatabasePath != "./data/themedays.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.CustomThemesDir != "" {
		t.Errorf("CustomThemesDir = %q, want empty", cfg.CustomThemesDir)
	}
	if cfg.MaxRangeDays != 366 {
		t.Errorf("MaxRangeDays = %d, want 366", cfg.MaxRangeDays)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging = %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	custom := t.TempDir()

	t.Setenv("PORT", "3000")
	t.Setenv("ENV", "production")
	t.Setenv("SHUTDOWN_TIMEOUT", "30")
	t.Setenv("DATABASE_PATH", "/data/test.db")
	t.Setenv("CUSTOM_THEMES_DIR", custom)
	t.Setenv("MAX_RANGE_DAYS", "31")
	t.Setenv("API_KEY", "secret-key-123")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvProduction)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 30s", cfg.ShutdownTimeout)
	}
	if cfg.DatabasePath != "/data/test.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.CustomThemesDir != custom {
		t.Errorf("CustomThemesDir = %q, want %q", cfg.CustomThemesDir, custom)
	}
	if cfg.MaxRangeDays != 31 {
		t.Errorf("MaxRangeDays = %d, want 31", cfg.MaxRangeDays)
	}
	if cfg.APIKey != "secret-key-123" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("logging = %q/%q, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("LOG_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want validation error")
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 5 * time.Second},
		{"90s", 90 * time.Second},
		{"2m", 2 * time.Minute},
		{"15", 15 * time.Second},
		{"soon", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getEnvDuration("TEST_DURATION", 5*time.Second); got != tt.want {
				t.Errorf("getEnvDuration(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func validConfig() Config {
	return Config{
		Port:            8080,
		Env:             EnvDevelopment,
		ShutdownTimeout: 10 * time.Second,
		DatabasePath:    "./data/test.db",
		MaxRangeDays:    366,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "themes.json")
	if err := os.WriteFile(file, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid development config", func(*Config) {}, false},
		{"valid production config", func(c *Config) { c.Env = EnvProduction; c.APIKey = "required-in-prod" }, false},
		{"production requires API key", func(c *Config) { c.Env = EnvProduction }, true},
		{"invalid port - too low", func(c *Config) { c.Port = 0 }, true},
		{"invalid port - too high", func(c *Config) { c.Port = 70000 }, true},
		{"invalid environment", func(c *Config) { c.Env = "invalid" }, true},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, true},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, true},
		{"missing custom dir is allowed", func(c *Config) { c.CustomThemesDir = filepath.Join(t.TempDir(), "none") }, false},
		{"custom dir is a file", func(c *Config) { c.CustomThemesDir = file }, true},
		{"range too short", func(c *Config) { c.MaxRangeDays = 0 }, true},
		{"range too long", func(c *Config) { c.MaxRangeDays = 5000 }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"invalid log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Env: EnvDevelopment}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}

	cfg.Env = EnvProduction
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{Env: EnvProduction}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}

	cfg.Env = EnvDevelopment
	if cfg.IsProduction() {
		t.Error("IsProduction() = true, want false")
	}
}

// clearEnv blanks every config variable for the duration of the test.
// Empty values fall back to defaults, so this also masks a local .env file.
func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"PORT", "ENV", "SHUTDOWN_TIMEOUT", "DATABASE_PATH", "CUSTOM_THEMES_DIR",
		"MAX_RANGE_DAYS", "API_KEY", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, v := range vars {
		t.Setenv(v, "")
	}
}
