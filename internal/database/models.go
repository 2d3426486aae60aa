package database

import (
	"time"

	"github.com/zapponejosh/themedays-api/internal/themes"
)

// Occurrence is one historical observation of a theme on a date.
type Occurrence struct {
	ID        int64     `json:"id"`
	Theme     string    `json:"theme"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// ThemeSummary aggregates the stored occurrences of one theme.
type ThemeSummary struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// StoredRule is a descriptor persisted after inference.
type StoredRule struct {
	Descriptor  themes.Descriptor `json:"descriptor"`
	SampleCount int               `json:"sample_count"`
	InferredAt  time.Time         `json:"inferred_at"`
}

// Stats counts the stored rows.
type Stats struct {
	Occurrences int `json:"occurrences"`
	Themes      int `json:"themes"`
	Rules       int `json:"rules"`
}
