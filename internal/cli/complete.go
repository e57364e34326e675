package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/hamster/internal/completion"
)

// Execute implements the go-flags Commander interface for CompleteCommand.
func (c *CompleteCommand) Execute(args []string) error {
	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s, args)
}

// executeWithSession runs complete against a provided session (for testing).
func (c *CompleteCommand) executeWithSession(s *session, args []string) error {
	var since time.Time
	if days := s.cfg.Autocomplete.ActivitiesRange; days > 0 {
		since = s.now().AddDate(0, 0, -days)
	}

	activities, err := s.store.RecentActivities(context.Background(), since)
	if err != nil {
		return fmt.Errorf("recent activities: %w", err)
	}

	comp := completion.New(activities, s.cfg.Autocomplete.SplitActivity)
	suggestions := comp.Complete(strings.Join(args, " "))
	s.log.WithField("count", len(suggestions)).Debug("completions")

	if jsonOutput(c.globals) {
		if suggestions == nil {
			suggestions = []string{}
		}
		return printJSON(suggestions)
	}
	for _, line := range suggestions {
		fmt.Println(line)
	}
	return nil
}
