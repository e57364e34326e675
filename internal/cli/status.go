package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/runnerr0/hamster/internal/storage"
	"github.com/runnerr0/hamster/internal/timeutil"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string              `json:"version"`
	DatabasePath      string              `json:"database_path"`
	DatabaseSizeBytes int64               `json:"database_size_bytes"`
	SchemaVersion     int                 `json:"schema_version"`
	TotalFacts        int64               `json:"total_facts"`
	TotalActivities   int64               `json:"total_activities"`
	TotalCategories   int64               `json:"total_categories"`
	TotalTags         int64               `json:"total_tags"`
	TrackedMinutes    int64               `json:"tracked_minutes"`
	OldestFact        string              `json:"oldest_fact,omitempty"`
	NewestFact        string              `json:"newest_fact,omitempty"`
	TopActivities     []activityTotalJSON `json:"top_activities"`
	Ongoing           *factJSON           `json:"ongoing"`
}

type activityTotalJSON struct {
	Activity string `json:"activity"`
	Facts    int64  `json:"facts"`
	Minutes  int64  `json:"minutes"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s)
}

// executeWithSession runs status against a provided session (for testing).
func (c *StatusCommand) executeWithSession(s *session) error {
	stats, err := s.store.GetStats(context.Background())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	schema, err := storage.NewMigrationRunner(s.db).Version()
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}

	ongoing, err := s.ongoing.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrNoOngoing) {
			s.log.WithError(err).Warn("ongoing fact unreadable")
		}
		ongoing = nil
	}

	dbSize := databaseSize(s.dbPath)

	if jsonOutput(c.globals) {
		return c.printStatusJSON(s, stats, schema, dbSize, ongoing)
	}
	return c.printStatusHuman(s, stats, schema, dbSize, ongoing)
}

func (c *StatusCommand) printStatusHuman(s *session, stats *storage.Stats, schema int, dbSize int64, ongoing *storage.Fact) error {
	printTitle("Hamster Status")

	tbl := newTable()
	tbl.AddRow("Version:", c.version)
	tbl.AddRow("Database:", fmt.Sprintf("%s (%s, schema v%d)", s.dbPath, formatBytes(dbSize), schema))
	tbl.AddRow("Facts:", formatNumber(stats.TotalFacts))
	tbl.AddRow("Activities:", formatNumber(stats.TotalActivities))
	tbl.AddRow("Categories:", formatNumber(stats.TotalCategories))
	tbl.AddRow("Tags:", formatNumber(stats.TotalTags))
	tbl.AddRow("Tracked:", timeutil.FormatDelta(stats.TrackedTime))
	if stats.TotalFacts > 0 {
		loc := s.now().Location()
		tbl.AddRow("Oldest:", stats.OldestFact.In(loc).Format("2006-01-02"))
		tbl.AddRow("Newest:", stats.NewestFact.In(loc).Format("2006-01-02"))
	}
	fmt.Println(tbl)

	if len(stats.TopActivities) > 0 {
		fmt.Println()
		printTitle("Top Activities")
		top := newTable()
		for _, a := range stats.TopActivities {
			top.AddRow(a.Activity.String(), timeutil.FormatDelta(a.Duration), faintColor.Sprintf("%d facts", a.Facts))
		}
		fmt.Println(top)
	}

	fmt.Println()
	if ongoing != nil {
		elapsed := toRaw(ongoing).Duration(s.now())
		fmt.Printf("Tracking:      %s (%s)\n", headerColor.Sprint(ongoing.Activity.String()), timeutil.FormatDelta(elapsed))
	} else {
		fmt.Println("Tracking:      nothing")
	}
	return nil
}

func (c *StatusCommand) printStatusJSON(s *session, stats *storage.Stats, schema int, dbSize int64, ongoing *storage.Fact) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      s.dbPath,
		DatabaseSizeBytes: dbSize,
		SchemaVersion:     schema,
		TotalFacts:        stats.TotalFacts,
		TotalActivities:   stats.TotalActivities,
		TotalCategories:   stats.TotalCategories,
		TotalTags:         stats.TotalTags,
		TrackedMinutes:    int64(stats.TrackedTime / time.Minute),
		TopActivities:     make([]activityTotalJSON, len(stats.TopActivities)),
	}

	if stats.TotalFacts > 0 {
		out.OldestFact = stats.OldestFact.UTC().Format(time.RFC3339)
		out.NewestFact = stats.NewestFact.UTC().Format(time.RFC3339)
	}
	for i, a := range stats.TopActivities {
		out.TopActivities[i] = activityTotalJSON{
			Activity: a.Activity.String(),
			Facts:    a.Facts,
			Minutes:  int64(a.Duration / time.Minute),
		}
	}
	if ongoing != nil {
		f := newFactJSON(ongoing, s.now())
		out.Ongoing = &f
	}

	return printJSON(out)
}

// databaseSize returns the database file size in bytes, or 0 when it
// cannot be read.
func databaseSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// formatBytes renders b with a binary unit and one decimal.
func formatBytes(b int64) string {
	if b < 1024 {
		return strconv.FormatInt(b, 10) + " B"
	}
	size := float64(b) / 1024
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size /= 1024
		unit++
	}
	return strconv.FormatFloat(size, 'f', 1, 64) + " " + byteUnits[unit]
}

// formatNumber groups the digits of n in thousands.
func formatNumber(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	for i := len(digits) - 3; i > 0; i -= 3 {
		digits = digits[:i] + "," + digits[i:]
	}
	return sign + digits
}
