package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStep is one versioned change to the fact schema.
type schemaStep struct {
	version int
	name    string
	up      func(tx *sql.Tx) error
}

// schemaSteps lists every step in version order. Append only.
var schemaSteps = []schemaStep{
	{version: 1, name: "fact_schema", up: migrateV001},
}

// connectionPragmas are set on the database before migrating.
var connectionPragmas = []string{
	"journal_mode = WAL",
	"foreign_keys = ON",
	"busy_timeout = 5000",
}

// MigrationRunner brings a SQLite database up to the current fact schema
// and records every applied step in schema_migrations.
type MigrationRunner struct {
	db    *sql.DB
	steps []schemaStep
}

// NewMigrationRunner creates a MigrationRunner for db.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{db: db, steps: schemaSteps}
}

// Run is RunContext with a background context.
func (r *MigrationRunner) Run() error {
	return r.RunContext(context.Background())
}

// RunContext applies every step newer than the stored version, each in its
// own transaction. Running an up to date database is a no-op.
func (r *MigrationRunner) RunContext(ctx context.Context) error {
	for _, p := range connectionPragmas {
		if _, err := r.db.ExecContext(ctx, "PRAGMA "+p); err != nil {
			return fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	current, err := r.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > r.Latest() {
		return fmt.Errorf("database schema v%d is newer than this build (v%d)", current, r.Latest())
	}

	for _, step := range r.steps {
		if step.version <= current {
			continue
		}
		if err := r.applyStep(ctx, step); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", step.version, step.name, err)
		}
	}
	return nil
}

// Version returns the highest applied step, or 0 on a fresh database.
func (r *MigrationRunner) Version() (int, error) {
	var version sql.NullInt64
	if err := r.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

// Latest returns the version the runner migrates to.
func (r *MigrationRunner) Latest() int {
	if len(r.steps) == 0 {
		return 0
	}
	return r.steps[len(r.steps)-1].version
}

func (r *MigrationRunner) applyStep(ctx context.Context, step schemaStep) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := step.up(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		step.version, step.name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
