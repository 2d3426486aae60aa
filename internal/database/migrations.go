package database

// migrationsSQL holds forward-only migrations keyed by version.
var migrationsSQL = map[int]string{
	1: migrationV1Occurrences,
	2: migrationV2Rules,
}

// migrationV1Occurrences stores one row per theme per date. Dates are ISO
// strings so lexical order is date order.
const migrationV1Occurrences = `
CREATE TABLE IF NOT EXISTS theme_occurrences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    theme TEXT NOT NULL,
    date TEXT NOT NULL CHECK (date GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]'),
    -- file or tool the row came from, e.g. "specialThemes.json"
    source TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    UNIQUE (theme, date)
);

CREATE INDEX IF NOT EXISTS idx_theme_occurrences_date
    ON theme_occurrences(date);
`

// migrationV2Rules keeps the latest inferred descriptor per theme as JSON in
// catalogue form.
const migrationV2Rules = `
CREATE TABLE IF NOT EXISTS theme_rules (
    theme TEXT PRIMARY KEY,
    generator TEXT NOT NULL,
    descriptor TEXT NOT NULL,
    sample_count INTEGER NOT NULL DEFAULT 0,
    inferred_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_theme_rules_generator
    ON theme_rules(generator);
`
