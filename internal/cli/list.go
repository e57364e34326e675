package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/hamster/internal/storage"
	"github.com/runnerr0/hamster/internal/timeutil"
)

// listJSON is the JSON output structure for the list command.
type listJSON struct {
	Since   string     `json:"since"`
	Until   string     `json:"until,omitempty"`
	Total   string     `json:"total"`
	Minutes int64      `json:"minutes"`
	Facts   []factJSON `json:"facts"`
}

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s)
}

// executeWithSession runs list against a provided session (for testing).
func (c *ListCommand) executeWithSession(s *session) error {
	since, until, err := resolveWindow(s, c.Date, c.Since)
	if err != nil {
		return err
	}

	facts, err := s.store.ListFacts(context.Background(), storage.FactQuery{
		Search:   c.Search,
		Activity: c.Activity,
		Category: c.Category,
		Tag:      c.Tag,
		Since:    since,
		Until:    until,
		Limit:    c.Limit,
		Offset:   c.Offset,
	})
	if err != nil {
		return fmt.Errorf("list facts: %w", err)
	}
	s.log.WithField("count", len(facts)).Debug("facts listed")
	for i := range facts {
		s.localize(&facts[i])
	}

	var total time.Duration
	for _, f := range facts {
		total += f.Duration()
	}

	if jsonOutput(c.globals) {
		out := listJSON{
			Since:   since.Format(time.RFC3339),
			Total:   timeutil.FormatDelta(total),
			Minutes: int64(total / time.Minute),
			Facts:   make([]factJSON, len(facts)),
		}
		if !until.IsZero() {
			out.Until = until.Format(time.RFC3339)
		}
		for i := range facts {
			out.Facts[i] = newFactJSON(&facts[i], s.now())
		}
		return printJSON(out)
	}

	if len(facts) == 0 {
		fmt.Println("No facts found.")
		return nil
	}

	printTitle(c.title(since, until))
	tbl := newTable()
	tbl.AddRow("ID", "TIME", "DURATION", "ACTIVITY", "TAGS", "DESCRIPTION")
	for _, f := range facts {
		tbl.AddRow(
			faintColor.Sprint(f.ID),
			formatSpan(f.Start, f.End),
			timeutil.FormatDelta(f.Duration()),
			f.Activity.String(),
			strings.Join(f.Tags, ", "),
			f.Description,
		)
	}
	fmt.Println(tbl)
	fmt.Printf("\n%d facts, %s\n", len(facts), headerColor.Sprint(timeutil.FormatDelta(total)))
	return nil
}

// resolveWindow returns the facts window of a --date or --since flag pair.
// With neither set it is the current tracking day; a --since window has no
// upper bound.
func resolveWindow(s *session, date, since string) (time.Time, time.Time, error) {
	if date != "" && since != "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--date and --since cannot be combined")
	}
	now := s.now()

	if since != "" {
		d, err := timeutil.ParseWindow(since)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return now.Add(-d), time.Time{}, nil
	}

	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", date)
		}
		start, end := trackingDay(day.Add(s.dayStart), s.dayStart)
		return start, end, nil
	}

	start, end := trackingDay(now, s.dayStart)
	return start, end, nil
}

func (c *ListCommand) title(since, until time.Time) string {
	if until.IsZero() {
		return "Since " + since.Format("2006-01-02 15:04")
	}
	return since.Format("Monday, 2006-01-02")
}

// formatSpan renders a fact's time span compactly, repeating the date only
// when the fact crosses midnight.
func formatSpan(start, end time.Time) string {
	from := start.Format("2006-01-02 15:04")
	if end.IsZero() {
		return from
	}
	if end.YearDay() == start.YearDay() && end.Year() == start.Year() {
		return from + " - " + end.Format("15:04")
	}
	return from + " - " + end.Format("2006-01-02 15:04")
}
