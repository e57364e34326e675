package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/runnerr0/hamster/internal/storage"
	"github.com/runnerr0/hamster/internal/timeutil"
)

// Execute implements the go-flags Commander interface for AddCommand.
func (c *AddCommand) Execute(args []string) error {
	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s, args)
}

// executeWithSession runs add against a provided session (for testing).
func (c *AddCommand) executeWithSession(s *session, args []string) error {
	fact, err := s.parseRawFact(args)
	if err != nil {
		return err
	}

	if fact.Ongoing() {
		s.log.WithField("activity", fact.Activity).Debug("fact has no end, starting it")
		return startFact(s, toStored(fact), c.globals)
	}

	stored := toStored(fact)
	if err := s.store.AddFact(context.Background(), stored); err != nil {
		return fmt.Errorf("add fact: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"fact_id":  stored.ID,
		"activity": stored.Activity.String(),
	}).Info("fact added")

	if jsonOutput(c.globals) {
		return printJSON(newFactJSON(stored, s.now()))
	}
	printFact("Added", stored, s)
	return nil
}

// printFact prints the human summary of a fact.
func printFact(verb string, f *storage.Fact, s *session) {
	s.localize(f)
	raw := toRaw(f)
	span := formatSpan(f.Start, f.End)

	if f.ID != "" {
		fmt.Printf("%s %s\n", verb, headerColor.Sprint(f.ID))
	} else {
		fmt.Printf("%s\n", verb)
	}
	fmt.Printf("  Activity:    %s\n", f.Activity.String())
	fmt.Printf("  Time:        %s (%s)\n", span, timeutil.FormatDelta(raw.Duration(s.now())))
	if len(f.Tags) > 0 {
		fmt.Printf("  Tags:        %s\n", strings.Join(f.Tags, ", "))
	}
	if f.Description != "" {
		fmt.Printf("  Description: %s\n", f.Description)
	}
}
