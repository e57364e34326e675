package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/runnerr0/hamster/internal/export"
	"github.com/runnerr0/hamster/internal/storage"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s)
}

// executeWithSession runs export against a provided session (for testing).
func (c *ExportCommand) executeWithSession(s *session) error {
	since, until, err := resolveWindow(s, c.Date, c.Since)
	if err != nil {
		return err
	}

	facts, err := s.store.ListFacts(context.Background(), storage.FactQuery{
		Activity: c.Activity,
		Category: c.Category,
		Tag:      c.Tag,
		Since:    since,
		Until:    until,
	})
	if err != nil {
		return fmt.Errorf("list facts: %w", err)
	}
	for i := range facts {
		s.localize(&facts[i])
	}

	var w io.Writer = os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, c.Format, facts); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"format": c.Format,
		"count":  len(facts),
	}).Info("facts exported")

	if c.Output != "" {
		fmt.Fprintf(os.Stderr, "Exported %d facts to %s\n", len(facts), c.Output)
	}
	return nil
}
