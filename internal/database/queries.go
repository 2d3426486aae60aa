package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zapponejosh/themedays-api/internal/calendar"
	"github.com/zapponejosh/themedays-api/internal/themes"
)

// parseTimestamp reads SQLite datetime('now') output or RFC 3339 text.
// Unparseable values give the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// Occurrences
// =============================================================================

const insertOccurrenceSQL = `
	INSERT INTO theme_occurrences (theme, date, source)
	VALUES (?, ?, ?)
`

// CreateOccurrence inserts occ and fills in its ID.
// Returns ErrDuplicate if the theme is already recorded on that date.
func (db *DB) CreateOccurrence(ctx context.Context, occ *Occurrence) error {
	if _, err := calendar.ParseDateString(occ.Date); err != nil {
		return fmt.Errorf("occurrence %q: %w", occ.Theme, err)
	}

	res, err := db.ExecContext(ctx, insertOccurrenceSQL, occ.Theme, occ.Date, occ.Source)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("occurrence %q on %s: %w", occ.Theme, occ.Date, ErrDuplicate)
		}
		return fmt.Errorf("insert occurrence: %w", err)
	}

	occ.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get occurrence id: %w", err)
	}
	return nil
}

// InsertOccurrence records occ unless the (theme, date) pair already exists.
// It reports whether a row was written.
func (tx *Tx) InsertOccurrence(ctx context.Context, occ Occurrence) (bool, error) {
	return insertOccurrenceIgnore(ctx, tx, occ)
}

func insertOccurrenceIgnore(ctx context.Context, e execer, occ Occurrence) (bool, error) {
	if _, err := calendar.ParseDateString(occ.Date); err != nil {
		return false, fmt.Errorf("occurrence %q: %w", occ.Theme, err)
	}

	res, err := e.ExecContext(ctx, `
		INSERT OR IGNORE INTO theme_occurrences (theme, date, source)
		VALUES (?, ?, ?)
	`, occ.Theme, occ.Date, occ.Source)
	if err != nil {
		return false, fmt.Errorf("insert occurrence: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteSource removes every occurrence imported from source.
func (tx *Tx) DeleteSource(ctx context.Context, source string) (int64, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM theme_occurrences WHERE source = ?", source)
	if err != nil {
		return 0, fmt.Errorf("delete source %q: %w", source, err)
	}
	return res.RowsAffected()
}

// OccurrenceDates returns the dates a theme was observed on, ascending.
// Returns ErrNotFound if the theme has no occurrences.
func (db *DB) OccurrenceDates(ctx context.Context, theme string) ([]time.Time, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT date FROM theme_occurrences
		WHERE theme = ?
		ORDER BY date ASC
	`, theme)
	if err != nil {
		return nil, fmt.Errorf("query occurrence dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan occurrence date: %w", err)
		}
		d, err := calendar.ParseDateString(s)
		if err != nil {
			return nil, fmt.Errorf("stored date for %q: %w", theme, err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occurrence dates: %w", err)
	}

	if len(dates) == 0 {
		return nil, ErrNotFound
	}
	return dates, nil
}

// OccurrencesInRange returns occurrences between start and end inclusive,
// ordered by date then ID. Both bounds are YYYY-MM-DD.
func (db *DB) OccurrencesInRange(ctx context.Context, start, end string) ([]Occurrence, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, theme, date, source, created_at
		FROM theme_occurrences
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, id ASC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("query occurrences by range: %w", err)
	}
	defer rows.Close()

	occs := []Occurrence{}
	for rows.Next() {
		var occ Occurrence
		var createdAt string
		if err := rows.Scan(&occ.ID, &occ.Theme, &occ.Date, &occ.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan occurrence row: %w", err)
		}
		occ.CreatedAt = parseTimestamp(createdAt)
		occs = append(occs, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occurrences: %w", err)
	}
	return occs, nil
}

// ListThemes summarises every stored theme, alphabetically.
func (db *DB) ListThemes(ctx context.Context) ([]ThemeSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT theme, COUNT(*), MIN(date), MAX(date)
		FROM theme_occurrences
		GROUP BY theme
		ORDER BY theme ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query themes: %w", err)
	}
	defer rows.Close()

	summaries := []ThemeSummary{}
	for rows.Next() {
		var s ThemeSummary
		if err := rows.Scan(&s.Theme, &s.Count, &s.First, &s.Last); err != nil {
			return nil, fmt.Errorf("scan theme row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate themes: %w", err)
	}
	return summaries, nil
}

// =============================================================================
// Rules
// =============================================================================

// UpsertRule stores the descriptor for its theme, replacing any earlier one.
func (db *DB) UpsertRule(ctx context.Context, desc themes.Descriptor, samples int) error {
	return upsertRule(ctx, db, desc, samples)
}

// UpsertRule is the transactional form of DB.UpsertRule.
func (tx *Tx) UpsertRule(ctx context.Context, desc themes.Descriptor, samples int) error {
	return upsertRule(ctx, tx, desc, samples)
}

func upsertRule(ctx context.Context, e execer, desc themes.Descriptor, samples int) error {
	data, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("marshal rule %q: %w", desc.Theme, err)
	}

	_, err = e.ExecContext(ctx, `
		INSERT INTO theme_rules (theme, generator, descriptor, sample_count, inferred_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT (theme) DO UPDATE SET
			generator = excluded.generator,
			descriptor = excluded.descriptor,
			sample_count = excluded.sample_count,
			inferred_at = excluded.inferred_at
	`, desc.Theme, desc.Generator, string(data), samples)
	if err != nil {
		return fmt.Errorf("upsert rule %q: %w", desc.Theme, err)
	}
	return nil
}

// GetRule returns the stored rule for theme or ErrNotFound.
func (db *DB) GetRule(ctx context.Context, theme string) (*StoredRule, error) {
	var data, inferredAt string
	rule := &StoredRule{}

	err := db.QueryRowContext(ctx, `
		SELECT descriptor, sample_count, inferred_at
		FROM theme_rules
		WHERE theme = ?
	`, theme).Scan(&data, &rule.SampleCount, &inferredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query rule: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &rule.Descriptor); err != nil {
		return nil, fmt.Errorf("decode rule %q: %w", theme, err)
	}
	rule.InferredAt = parseTimestamp(inferredAt)
	return rule, nil
}

// ListRules returns every stored rule ordered by theme.
func (db *DB) ListRules(ctx context.Context) ([]StoredRule, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT theme, descriptor, sample_count, inferred_at
		FROM theme_rules
		ORDER BY theme ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	rules := []StoredRule{}
	for rows.Next() {
		var theme, data, inferredAt string
		var rule StoredRule
		if err := rows.Scan(&theme, &data, &rule.SampleCount, &inferredAt); err != nil {
			return nil, fmt.Errorf("scan rule row: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rule.Descriptor); err != nil {
			return nil, fmt.Errorf("decode rule %q: %w", theme, err)
		}
		rule.InferredAt = parseTimestamp(inferredAt)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

// Descriptors returns the stored rules as a catalogue.
func (db *DB) Descriptors(ctx context.Context) ([]themes.Descriptor, error) {
	rules, err := db.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	descs := make([]themes.Descriptor, len(rules))
	for i, r := range rules {
		descs[i] = r.Descriptor
	}
	return descs, nil
}

// Stats counts occurrences, distinct themes and rules.
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM theme_occurrences),
			(SELECT COUNT(DISTINCT theme) FROM theme_occurrences),
			(SELECT COUNT(*) FROM theme_rules)
	`).Scan(&s.Occurrences, &s.Themes, &s.Rules)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}
