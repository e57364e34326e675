package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hamster/internal/config"
	"github.com/runnerr0/hamster/internal/storage"
)

func init() {
	color.NoColor = true
}

// testNow is the fixed clock of every test session.
var testNow = time.Date(2016, 2, 20, 16, 30, 0, 0, time.UTC)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testSession opens a session on a temporary database with default
// preferences and the clock fixed at testNow.
func testSession(t *testing.T) *session {
	t.Helper()

	dir := t.TempDir()
	log := logrus.New()
	log.SetOutput(io.Discard)

	s, err := newSession(
		config.DefaultConfig(),
		filepath.Join(dir, "hamster.sqlite"),
		storage.NewOngoingFile(filepath.Join(dir, "hamster.fact")),
		log,
	)
	require.NoError(t, err)
	s.now = func() time.Time { return testNow }
	t.Cleanup(s.Close)
	return s
}

// seedFact stores a finished fact on 2016-02-20 between the given clock
// times (minutes after midnight UTC).
func seedFact(t *testing.T, s *session, name, category string, fromMin, toMin int, tags ...string) *storage.Fact {
	t.Helper()
	day := time.Date(2016, 2, 20, 0, 0, 0, 0, time.UTC)
	f := &storage.Fact{
		Activity: storage.Activity{Name: name, Category: category},
		Start:    day.Add(time.Duration(fromMin) * time.Minute),
		End:      day.Add(time.Duration(toMin) * time.Minute),
		Tags:     tags,
	}
	require.NoError(t, s.store.AddFact(context.Background(), f))
	return f
}

// allFacts returns every stored fact.
func allFacts(t *testing.T, s *session) []storage.Fact {
	t.Helper()
	facts, err := s.store.ListFacts(context.Background(), storage.FactQuery{})
	require.NoError(t, err)
	return facts
}
