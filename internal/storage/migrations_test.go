package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db")+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// sqliteObject reports whether a table or index with name exists.
func sqliteObject(t *testing.T, db *sql.DB, kind, name string) bool {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", kind, name,
	).Scan(&count))
	return count == 1
}

func TestMigrationRunner_CreatesFactSchema(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	for _, table := range []string{"categories", "activities", "facts", "tags", "fact_tags", "schema_migrations"} {
		assert.True(t, sqliteObject(t, db, "table", table), "table %s", table)
	}
	for _, idx := range []string{"idx_facts_start", "idx_facts_end", "idx_facts_activity", "idx_activities_name", "idx_fact_tags_tag"} {
		assert.True(t, sqliteObject(t, db, "index", idx), "index %s", idx)
	}
}

func TestMigrationRunner_RerunIsNoop(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	require.NoError(t, runner.Run())
	require.NoError(t, runner.RunContext(context.Background()))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(schemaSteps), count)
}

func TestMigrationRunner_Version(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	assert.Equal(t, 1, runner.Latest())

	require.NoError(t, runner.Run())

	version, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, runner.Latest(), version)

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM schema_migrations WHERE version = 1").Scan(&name))
	assert.Equal(t, "fact_schema", name)
}

func TestMigrationRunner_RejectsNewerSchema(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	_, err := db.Exec("INSERT INTO schema_migrations (version, name) VALUES (99, 'future')")
	require.NoError(t, err)

	err = runner.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than this build")
}

func TestMigrationRunner_FailedStepRollsBack(t *testing.T) {
	db := openTestDB(t)
	runner := &MigrationRunner{db: db, steps: []schemaStep{
		{version: 1, name: "fact_schema", up: migrateV001},
		{version: 2, name: "broken", up: func(tx *sql.Tx) error {
			if _, err := tx.Exec("CREATE TABLE half_done (id INTEGER)"); err != nil {
				return err
			}
			_, err := tx.Exec("THIS IS NOT SQL")
			return err
		}},
	}}

	err := runner.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply migration 2 (broken)")

	version, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.False(t, sqliteObject(t, db, "table", "half_done"))
}

func TestMigrationRunner_Pragmas(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	_, err := db.Exec("INSERT INTO fact_tags (fact_id, tag_id) VALUES ('FCT-missing', 42)")
	assert.Error(t, err, "foreign keys reject orphan tag links")
}

func TestMigrationRunner_ActivityUniquePerCategory(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	_, err := db.Exec("INSERT INTO categories (id, name) VALUES (1, 'work')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO activities (name, category_id) VALUES ('coding', 1)")
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO activities (name, category_id) VALUES ('coding', 1)")
	assert.Error(t, err, "activity names are unique within a category")
}
