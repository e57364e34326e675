package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/runnerr0/hamster/internal/storage"
)

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required")
	}

	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s)
}

// executeWithSession runs show against a provided session (for testing).
func (c *ShowCommand) executeWithSession(s *session) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required")
	}

	fact, err := s.store.GetFact(context.Background(), c.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("fact not found: %s", c.ID)
	}
	if err != nil {
		return fmt.Errorf("get fact: %w", err)
	}
	s.localize(fact)

	if jsonOutput(c.globals) {
		return printJSON(newFactJSON(fact, s.now()))
	}
	printFact("Fact", fact, s)
	fmt.Printf("  Raw:         %s\n", toRaw(fact).String())
	return nil
}

// Execute implements the go-flags Commander interface for RemoveCommand.
func (c *RemoveCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required")
	}

	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s)
}

// executeWithSession runs remove against a provided session (for testing).
func (c *RemoveCommand) executeWithSession(s *session) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required")
	}

	err := s.store.DeleteFact(context.Background(), c.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("fact not found: %s", c.ID)
	}
	if err != nil {
		return fmt.Errorf("remove fact: %w", err)
	}
	s.log.WithField("fact_id", c.ID).Info("fact removed")

	if jsonOutput(c.globals) {
		return printJSON(map[string]interface{}{
			"removed": true,
			"id":      c.ID,
		})
	}
	fmt.Printf("Removed fact %s\n", c.ID)
	return nil
}
