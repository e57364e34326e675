package storage

import "database/sql"

// migrateV001 creates the initial fact schema: categories, activities,
// facts and tags with their indexes. Every statement uses IF NOT EXISTS for
// idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS categories (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS activities (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
			created_at  TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, category_id)
		)`,

		`CREATE TABLE IF NOT EXISTS facts (
			id          TEXT PRIMARY KEY,
			activity_id INTEGER NOT NULL REFERENCES activities(id),
			start_ts    TEXT NOT NULL,
			end_ts      TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS tags (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS fact_tags (
			fact_id TEXT NOT NULL REFERENCES facts(id) ON DELETE CASCADE,
			tag_id  INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (fact_id, tag_id)
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_facts_start       ON facts(start_ts)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_end         ON facts(end_ts)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_activity    ON facts(activity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_name   ON activities(name)`,
		`CREATE INDEX IF NOT EXISTS idx_fact_tags_tag     ON fact_tags(tag_id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
