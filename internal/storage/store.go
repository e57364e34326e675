package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a fact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFact is returned when a fact cannot be stored as given.
	ErrInvalidFact = errors.New("invalid fact")
)

// Store defines the interface for fact data operations.
type Store interface {
	AddFact(ctx context.Context, fact *Fact) error
	GetFact(ctx context.Context, id string) (*Fact, error)
	ListFacts(ctx context.Context, query FactQuery) ([]Fact, error)
	DeleteFact(ctx context.Context, id string) error
	RecentActivities(ctx context.Context, since time.Time) ([]Activity, error)
	Categories(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	PurgeAll(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	getFact    *sql.Stmt
	getTags    *sql.Stmt
	deleteFact *sql.Stmt
	unlinkTags *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

const factColumns = `
	f.id, f.start_ts, f.end_ts, f.description,
	a.id, a.name, COALESCE(c.name, '')
`

const factJoins = `
	FROM facts f
	JOIN activities a ON a.id = f.activity_id
	LEFT JOIN categories c ON c.id = a.category_id
`

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getFact, err = s.db.Prepare(`SELECT ` + factColumns + factJoins + ` WHERE f.id = ?`)
	if err != nil {
		return err
	}

	s.getTags, err = s.db.Prepare(`
		SELECT t.name FROM fact_tags ft
		JOIN tags t ON t.id = ft.tag_id
		WHERE ft.fact_id = ?
		ORDER BY t.name
	`)
	if err != nil {
		return err
	}

	s.deleteFact, err = s.db.Prepare(`DELETE FROM facts WHERE id = ?`)
	if err != nil {
		return err
	}

	s.unlinkTags, err = s.db.Prepare(`DELETE FROM fact_tags WHERE fact_id = ?`)
	if err != nil {
		return err
	}

	return nil
}

// generateID creates a fact ID: FCT- + 8 random hex chars.
func generateID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "FCT-" + hex.EncodeToString(b), nil
}

// formatTimestamp is the stored form of every fact timestamp. Fixed width
// UTC keeps string comparison in SQL chronological.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// AddFact stores a finished fact. Its activity, category and tags are
// created on first use. The fact's ID and Activity.ID are populated.
func (s *SQLiteStore) AddFact(ctx context.Context, fact *Fact) error {
	fact.Activity.Name = strings.TrimSpace(fact.Activity.Name)
	switch {
	case fact.Activity.Name == "":
		return fmt.Errorf("%w: missing activity", ErrInvalidFact)
	case fact.Start.IsZero():
		return fmt.Errorf("%w: missing start", ErrInvalidFact)
	case fact.End.IsZero():
		return fmt.Errorf("%w: missing end", ErrInvalidFact)
	case fact.End.Before(fact.Start):
		return fmt.Errorf("%w: end before start", ErrInvalidFact)
	}

	id, err := generateID()
	if err != nil {
		return fmt.Errorf("generate ID: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	activityID, err := ensureActivity(ctx, tx, fact.Activity)
	if err != nil {
		return fmt.Errorf("ensure activity: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO facts (id, activity_id, start_ts, end_ts, description) VALUES (?, ?, ?, ?, ?)`,
		id, activityID, formatTimestamp(fact.Start), formatTimestamp(fact.End), fact.Description,
	)
	if err != nil {
		return fmt.Errorf("insert fact: %w", err)
	}

	for _, tag := range fact.Tags {
		tagID, err := ensureTag(ctx, tx, tag)
		if err != nil {
			return fmt.Errorf("ensure tag %q: %w", tag, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO fact_tags (fact_id, tag_id) VALUES (?, ?)", id, tagID,
		); err != nil {
			return fmt.Errorf("link tag %q: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	fact.ID = id
	fact.Activity.ID = activityID
	return nil
}

// ensureActivity returns the ID of the activity, creating it and its
// category if needed.
func ensureActivity(ctx context.Context, tx *sql.Tx, a Activity) (int64, error) {
	var categoryID sql.NullInt64
	if a.Category != "" {
		id, err := ensureNamed(ctx, tx, "categories", a.Category)
		if err != nil {
			return 0, err
		}
		categoryID = sql.NullInt64{Int64: id, Valid: true}
	}

	var id int64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM activities WHERE name = ? AND category_id IS ?", a.Name, categoryID,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO activities (name, category_id) VALUES (?, ?)", a.Name, categoryID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func ensureTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	return ensureNamed(ctx, tx, "tags", name)
}

// ensureNamed returns the ID of the row with the given unique name in
// table, inserting it if needed. table is never user input.
func ensureNamed(ctx context.Context, tx *sql.Tx, table, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO "+table+" (name) VALUES (?)", name,
	); err != nil {
		return 0, err
	}
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE name = ?", name).Scan(&id)
	return id, err
}

// GetFact retrieves a single fact by ID.
func (s *SQLiteStore) GetFact(ctx context.Context, id string) (*Fact, error) {
	f, err := scanFact(s.getFact.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("fact %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get fact: %w", err)
	}

	if f.Tags, err = s.factTags(ctx, f.ID); err != nil {
		return nil, err
	}
	return f, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFact(row rowScanner) (*Fact, error) {
	var f Fact
	var startStr, endStr string
	if err := row.Scan(
		&f.ID, &startStr, &endStr, &f.Description,
		&f.Activity.ID, &f.Activity.Name, &f.Activity.Category,
	); err != nil {
		return nil, err
	}
	f.Start, _ = parseTimestamp(startStr)
	f.End, _ = parseTimestamp(endStr)
	return &f, nil
}

func (s *SQLiteStore) factTags(ctx context.Context, factID string) ([]string, error) {
	rows, err := s.getTags.QueryContext(ctx, factID)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// ListFacts returns facts matching the query, oldest first.
func (s *SQLiteStore) ListFacts(ctx context.Context, q FactQuery) ([]Fact, error) {
	var clauses []string
	var args []interface{}

	if q.Search != "" {
		like := "%" + q.Search + "%"
		clauses = append(clauses, "(a.name LIKE ? OR c.name LIKE ? OR f.description LIKE ?)")
		args = append(args, like, like, like)
	}
	if q.Activity != "" {
		clauses = append(clauses, "a.name = ?")
		args = append(args, q.Activity)
	}
	if q.Category != "" {
		clauses = append(clauses, "c.name = ?")
		args = append(args, q.Category)
	}
	if q.Tag != "" {
		clauses = append(clauses, `f.id IN (
			SELECT ft.fact_id FROM fact_tags ft JOIN tags t ON t.id = ft.tag_id WHERE t.name = ?
		)`)
		args = append(args, q.Tag)
	}
	if !q.Since.IsZero() {
		clauses = append(clauses, "f.end_ts > ?")
		args = append(args, formatTimestamp(q.Since))
	}
	if !q.Until.IsZero() {
		clauses = append(clauses, "f.start_ts < ?")
		args = append(args, formatTimestamp(q.Until))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT ` + factColumns + factJoins + where + ` ORDER BY f.start_ts ASC LIMIT ? OFFSET ?`
	args = append(args, limit, q.Offset)

	facts, err := s.scanFacts(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	for i := range facts {
		if facts[i].Tags, err = s.factTags(ctx, facts[i].ID); err != nil {
			return nil, err
		}
	}
	return facts, nil
}

// scanFacts executes a query and scans results into Fact slices.
func (s *SQLiteStore) scanFacts(ctx context.Context, query string, args ...interface{}) ([]Fact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	facts := []Fact{}
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		facts = append(facts, *f)
	}

	return facts, rows.Err()
}

// DeleteFact removes a fact by ID together with its tag links.
func (s *SQLiteStore) DeleteFact(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.StmtContext(ctx, s.unlinkTags).ExecContext(ctx, id); err != nil {
		return fmt.Errorf("delete tag links: %w", err)
	}

	res, err := tx.StmtContext(ctx, s.deleteFact).ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("delete fact: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("fact %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// RecentActivities returns every activity used by a fact starting at or
// after since, most recently used first, each activity once. A zero since
// returns all used activities.
func (s *SQLiteStore) RecentActivities(ctx context.Context, since time.Time) ([]Activity, error) {
	query := `
		SELECT a.id, a.name, COALESCE(c.name, ''), MAX(f.start_ts) AS last_used
		FROM activities a
		JOIN facts f ON f.activity_id = a.id
		LEFT JOIN categories c ON c.id = a.category_id
	`
	var args []interface{}
	if !since.IsZero() {
		query += " WHERE f.start_ts >= ?"
		args = append(args, formatTimestamp(since))
	}
	query += " GROUP BY a.id ORDER BY last_used DESC, a.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		var a Activity
		var lastUsed string
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &lastUsed); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// Categories returns all category names, sorted.
func (s *SQLiteStore) Categories(ctx context.Context) ([]string, error) {
	return s.names(ctx, "SELECT name FROM categories ORDER BY name")
}

// Tags returns all tag names, sorted.
func (s *SQLiteStore) Tags(ctx context.Context) ([]string, error) {
	return s.names(ctx, "SELECT name FROM tags ORDER BY name")
}

func (s *SQLiteStore) names(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PurgeAll deletes all facts, activities, categories and tags.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	stmts := []string{
		"DELETE FROM fact_tags",
		"DELETE FROM facts",
		"DELETE FROM tags",
		"DELETE FROM activities",
		"DELETE FROM categories",
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return tx.Commit()
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM facts", &stats.TotalFacts},
		{"SELECT COUNT(*) FROM activities", &stats.TotalActivities},
		{"SELECT COUNT(*) FROM categories", &stats.TotalCategories},
		{"SELECT COUNT(*) FROM tags", &stats.TotalTags},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count (%s): %w", c.query, err)
		}
	}

	if stats.TotalFacts == 0 {
		return stats, nil
	}

	facts, err := s.scanFacts(ctx, `SELECT `+factColumns+factJoins+` ORDER BY f.start_ts ASC`)
	if err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}

	totals := make(map[int64]*ActivityTotal)
	for _, f := range facts {
		d := f.Duration()
		stats.TrackedTime += d

		if stats.OldestFact.IsZero() || f.Start.Before(stats.OldestFact) {
			stats.OldestFact = f.Start
		}
		if f.End.After(stats.NewestFact) {
			stats.NewestFact = f.End
		}

		t, ok := totals[f.Activity.ID]
		if !ok {
			t = &ActivityTotal{Activity: f.Activity}
			totals[f.Activity.ID] = t
		}
		t.Facts++
		t.Duration += d
	}

	for _, t := range totals {
		stats.TopActivities = append(stats.TopActivities, *t)
	}
	sort.Slice(stats.TopActivities, func(i, j int) bool {
		a, b := stats.TopActivities[i], stats.TopActivities[j]
		if a.Duration != b.Duration {
			return a.Duration > b.Duration
		}
		return a.Activity.String() < b.Activity.String()
	})
	if len(stats.TopActivities) > 10 {
		stats.TopActivities = stats.TopActivities[:10]
	}

	return stats, nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.getFact, s.getTags, s.deleteFact, s.unlinkTags,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
