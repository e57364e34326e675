package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/runnerr0/hamster/internal/storage"
	"github.com/runnerr0/hamster/internal/timeutil"
)

// Execute implements the go-flags Commander interface for StartCommand.
func (c *StartCommand) Execute(args []string) error {
	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s, args)
}

// executeWithSession runs start against a provided session (for testing).
func (c *StartCommand) executeWithSession(s *session, args []string) error {
	fact, err := s.parseRawFact(args)
	if err != nil {
		return err
	}
	if !fact.Ongoing() {
		return fmt.Errorf("start takes a start time only, use add for a finished fact")
	}
	return startFact(s, toStored(fact), c.globals)
}

// startFact makes f the ongoing fact. A fact already running is stopped
// where f starts.
func startFact(s *session, f *storage.Fact, globals *GlobalFlags) error {
	if _, _, err := stopOngoing(s, f.Start); err != nil && !errors.Is(err, storage.ErrNoOngoing) {
		return err
	}

	if err := s.ongoing.Save(f); err != nil {
		return fmt.Errorf("start fact: %w", err)
	}
	s.log.WithField("activity", f.Activity.String()).Info("fact started")

	if jsonOutput(globals) {
		return printJSON(newFactJSON(f, s.now()))
	}
	printFact("Started", f, s)
	return nil
}

// stopOngoing ends the ongoing fact at end and stores it. Facts shorter
// than fact_min_delta are dropped; saved reports which happened.
func stopOngoing(s *session, end time.Time) (*storage.Fact, bool, error) {
	fact, err := s.ongoing.Load()
	if err != nil {
		return nil, false, err
	}

	if end.Before(fact.Start) {
		end = fact.Start
	}
	fact.End = end

	saved := fact.Duration() >= s.cfg.Tracking.MinDelta()
	if saved {
		if err := s.store.AddFact(context.Background(), fact); err != nil {
			return nil, false, fmt.Errorf("save stopped fact: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"fact_id":  fact.ID,
			"activity": fact.Activity.String(),
		}).Info("fact stopped")
	} else {
		s.log.WithField("activity", fact.Activity.String()).Info("fact too short, discarded")
	}

	if err := s.ongoing.Clear(); err != nil {
		return nil, false, err
	}
	return fact, saved, nil
}

// stopJSON is the JSON output structure for the stop command.
type stopJSON struct {
	Saved bool     `json:"saved"`
	Fact  factJSON `json:"fact"`
}

// Execute implements the go-flags Commander interface for StopCommand.
func (c *StopCommand) Execute(args []string) error {
	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s)
}

// executeWithSession runs stop against a provided session (for testing).
func (c *StopCommand) executeWithSession(s *session) error {
	if c.Discard {
		fact, err := s.ongoing.Load()
		if errors.Is(err, storage.ErrNoOngoing) {
			return fmt.Errorf("no fact is being tracked")
		}
		if err != nil {
			return err
		}
		if err := s.ongoing.Clear(); err != nil {
			return err
		}
		if jsonOutput(c.globals) {
			return printJSON(stopJSON{Saved: false, Fact: newFactJSON(fact, s.now())})
		}
		fmt.Printf("Discarded %s\n", fact.Activity.String())
		return nil
	}

	fact, saved, err := stopOngoing(s, s.now())
	if errors.Is(err, storage.ErrNoOngoing) {
		return fmt.Errorf("no fact is being tracked")
	}
	if err != nil {
		return err
	}

	if jsonOutput(c.globals) {
		return printJSON(stopJSON{Saved: saved, Fact: newFactJSON(fact, s.now())})
	}
	if !saved {
		fmt.Printf("Discarded %s: shorter than %d min\n", fact.Activity.String(), s.cfg.Tracking.FactMinDelta)
		return nil
	}
	printFact("Stopped", fact, s)
	return nil
}

// Execute implements the go-flags Commander interface for CurrentCommand.
func (c *CurrentCommand) Execute(args []string) error {
	s, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.executeWithSession(s)
}

// executeWithSession runs current against a provided session (for testing).
func (c *CurrentCommand) executeWithSession(s *session) error {
	fact, err := s.ongoing.Load()
	if errors.Is(err, storage.ErrNoOngoing) {
		if jsonOutput(c.globals) {
			return printJSON(nil)
		}
		fmt.Println("No fact is being tracked.")
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOutput(c.globals) {
		return printJSON(newFactJSON(fact, s.now()))
	}
	elapsed := toRaw(fact).Duration(s.now())
	fmt.Printf("%s since %s (%s)\n", headerColor.Sprint(fact.Activity.String()),
		fact.Start.Format("15:04"), timeutil.FormatDelta(elapsed))
	return nil
}
