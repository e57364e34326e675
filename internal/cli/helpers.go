package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/runnerr0/hamster/internal/config"
	"github.com/runnerr0/hamster/internal/rawfact"
	"github.com/runnerr0/hamster/internal/storage"
	"github.com/runnerr0/hamster/internal/timeutil"
)

// session bundles everything a tracking command works with.
type session struct {
	cfg      *config.Config
	dbPath   string
	db       *sql.DB
	store    *storage.SQLiteStore
	ongoing  *storage.OngoingFile
	log      *logrus.Logger
	dayStart time.Duration
	now      func() time.Time
}

// configPath returns the --config path, or the expanded default.
func configPath(globals *GlobalFlags) (string, error) {
	if globals != nil && globals.Config != "" {
		return globals.Config, nil
	}
	return config.ExpandPath(config.DefaultConfigPath)
}

// loadConfig loads (or creates) the config file the global flags point at.
func loadConfig(globals *GlobalFlags) (*config.Config, string, error) {
	path, err := configPath(globals)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadOrCreateAt(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}

// newLogger builds the stderr logger for the configured level. Verbose
// forces debug.
func newLogger(level string, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	return log
}

// openSession loads the config, opens the fact database, runs migrations
// and returns a ready-to-use session.
func openSession(globals *GlobalFlags) (*session, error) {
	cfg, _, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	verbose := globals != nil && globals.Verbose
	log := newLogger(cfg.Logging.Level, verbose)

	if cfg.Storage.DBEngine != "sqlite" {
		return nil, fmt.Errorf("db_engine %q is not supported by this build, use sqlite", cfg.Storage.DBEngine)
	}

	dbPath, err := cfg.Storage.DatabasePath()
	if err != nil {
		return nil, err
	}
	if globals != nil && globals.DB != "" {
		dbPath = globals.DB
	}
	ongoingPath, err := cfg.Storage.OngoingPath()
	if err != nil {
		return nil, err
	}

	s, err := newSession(cfg, dbPath, storage.NewOngoingFile(ongoingPath), log)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"db": dbPath, "ongoing": ongoingPath}).Debug("session opened")
	return s, nil
}

// newSession opens the database at dbPath and wires the session together.
func newSession(cfg *config.Config, dbPath string, ongoing *storage.OngoingFile, log *logrus.Logger) (*session, error) {
	dayStart, err := cfg.Tracking.DayStartOffset()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create store: %w", err)
	}

	return &session{
		cfg:      cfg,
		dbPath:   dbPath,
		db:       db,
		store:    store,
		ongoing:  ongoing,
		log:      log,
		dayStart: dayStart,
		now:      time.Now,
	}, nil
}

// Close releases the store and database.
func (s *session) Close() {
	s.store.Close()
	s.db.Close()
}

// parseOptions returns the options raw facts are resolved with.
func (s *session) parseOptions() rawfact.ParseOptions {
	return rawfact.ParseOptions{Now: s.now(), DayStart: s.dayStart}
}

// parseRawFact resolves the command line arguments as one raw fact line.
func (s *session) parseRawFact(args []string) (*rawfact.Fact, error) {
	raw := strings.TrimSpace(strings.Join(args, " "))
	if raw == "" {
		return nil, fmt.Errorf("missing raw fact, e.g. \"12:00 - 13:00 coding@work #go, parser\"")
	}

	fact, err := rawfact.Parse(raw, s.parseOptions())
	switch {
	case errors.Is(err, rawfact.ErrNoMatch):
		return nil, fmt.Errorf("could not interpret this entry: %q", raw)
	case err != nil:
		return nil, fmt.Errorf("could not interpret this entry: %w", err)
	}
	return fact, nil
}

// trackingDay returns the bounds of the tracking day containing t. A
// tracking day runs from day start to day start of the next day.
func trackingDay(t time.Time, dayStart time.Duration) (time.Time, time.Time) {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start := midnight.Add(dayStart)
	if t.Before(start) {
		start = midnight.AddDate(0, 0, -1).Add(dayStart)
	}
	end := time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, start.Location()).Add(dayStart)
	return start, end
}

// localize moves a stored fact's timestamps into the session's time zone.
func (s *session) localize(f *storage.Fact) {
	loc := s.now().Location()
	f.Start = f.Start.In(loc)
	f.End = f.End.In(loc)
}

// toStored converts a resolved raw fact into a storage fact.
func toStored(f *rawfact.Fact) *storage.Fact {
	return &storage.Fact{
		Activity:    storage.Activity{Name: f.Activity, Category: f.Category},
		Start:       f.Start,
		End:         f.End,
		Tags:        f.Tags,
		Description: f.Description,
	}
}

// toRaw converts a storage fact back into a raw fact.
func toRaw(f *storage.Fact) *rawfact.Fact {
	return &rawfact.Fact{
		Start:       f.Start,
		End:         f.End,
		Activity:    f.Activity.Name,
		Category:    f.Activity.Category,
		Tags:        f.Tags,
		Description: f.Description,
	}
}

// factJSON is the JSON output structure for a single fact.
type factJSON struct {
	ID          string   `json:"id,omitempty"`
	Activity    string   `json:"activity"`
	Category    string   `json:"category,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end,omitempty"`
	Duration    string   `json:"duration"`
	Minutes     int64    `json:"minutes"`
	Tags        []string `json:"tags"`
	Description string   `json:"description,omitempty"`
	Raw         string   `json:"raw"`
}

// newFactJSON renders f for JSON output. Ongoing facts are measured up to now.
func newFactJSON(f *storage.Fact, now time.Time) factJSON {
	raw := toRaw(f)
	d := raw.Duration(now)
	out := factJSON{
		ID:          f.ID,
		Activity:    f.Activity.Name,
		Category:    f.Activity.Category,
		Start:       f.Start.Format(time.RFC3339),
		Duration:    timeutil.FormatDelta(d),
		Minutes:     int64(d / time.Minute),
		Tags:        f.Tags,
		Description: f.Description,
		Raw:         raw.String(),
	}
	if !f.End.IsZero() {
		out.End = f.End.Format(time.RFC3339)
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonOutput(globals *GlobalFlags) bool {
	return globals != nil && globals.JSON
}
