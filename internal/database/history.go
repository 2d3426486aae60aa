package database

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
)

// historyKeyLayout is the date key layout of history files.
const historyKeyLayout = "20060102"

// HistoryFile is the historical theme-day export:
//
//	{"themeDays": {"20231224": [{"event": "Julafton"}]}}
type HistoryFile struct {
	ThemeDays map[string][]HistoryEvent `json:"themeDays"`
}

// HistoryEvent is one theme observed on a date.
type HistoryEvent struct {
	Event string `json:"event"`
}

// ParseHistory reads a history file into occurrences tagged with source,
// ordered by date and then by their order in the file.
func ParseHistory(r io.Reader, source string) ([]Occurrence, error) {
	var file HistoryFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	if file.ThemeDays == nil {
		return nil, fmt.Errorf("parse history: missing themeDays")
	}

	keys := make([]string, 0, len(file.ThemeDays))
	for k := range file.ThemeDays {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var occs []Occurrence
	for _, key := range keys {
		date, err := time.Parse(historyKeyLayout, key)
		if err != nil {
			return nil, fmt.Errorf("parse history: date key %q: %w", key, err)
		}
		for i, ev := range file.ThemeDays[key] {
			if ev.Event == "" {
				return nil, fmt.Errorf("parse history: %s event %d has no name", key, i)
			}
			occs = append(occs, Occurrence{
				Theme:  ev.Event,
				Date:   calendar.FormatDate(date),
				Source: source,
			})
		}
	}
	return occs, nil
}
