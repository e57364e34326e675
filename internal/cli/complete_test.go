package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hamster/internal/storage"
)

func TestCompleteCommand(t *testing.T) {
	s := testSession(t)
	seedFact(t, s, "coding", "work", 9*60, 10*60)
	seedFact(t, s, "cooking", "home", 18*60, 19*60)
	seedFact(t, s, "email", "work", 11*60, 12*60)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"co"}, "cooking@home\ncoding@work\n"},
		{[]string{"12:00", "-", "13:00", "em"}, "12:00 - 13:00 email@work\n"},
		{[]string{"coding@"}, "coding@work\n"},
		{[]string{"coding,", "notes"}, ""},
	}
	for _, tc := range tests {
		output := captureOutput(t, func() {
			require.NoError(t, (&CompleteCommand{globals: &GlobalFlags{}}).executeWithSession(s, tc.args))
		})
		assert.Equal(t, tc.want, output, "completing %q", tc.args)
	}
}

func TestCompleteCommand_Split(t *testing.T) {
	s := testSession(t)
	s.cfg.Autocomplete.SplitActivity = true
	seedFact(t, s, "coding", "work", 9*60, 10*60)
	seedFact(t, s, "email", "home", 11*60, 12*60)

	output := captureOutput(t, func() {
		require.NoError(t, (&CompleteCommand{globals: &GlobalFlags{}}).executeWithSession(s, []string{"co"}))
	})
	assert.Equal(t, "coding\n", output)

	output = captureOutput(t, func() {
		require.NoError(t, (&CompleteCommand{globals: &GlobalFlags{}}).executeWithSession(s, []string{"coding@"}))
	})
	assert.Equal(t, "coding@home\ncoding@work\n", output)
}

func TestCompleteCommand_ActivitiesRange(t *testing.T) {
	s := testSession(t)
	seedFact(t, s, "coding", "work", 9*60, 10*60)

	old := &storage.Fact{
		Activity: storage.Activity{Name: "cooking"},
		Start:    testNow.AddDate(0, -3, 0),
		End:      testNow.AddDate(0, -3, 0).Add(time.Hour),
	}
	require.NoError(t, s.store.AddFact(context.Background(), old))

	output := captureOutput(t, func() {
		require.NoError(t, (&CompleteCommand{globals: &GlobalFlags{}}).executeWithSession(s, []string{"co"}))
	})
	assert.Equal(t, "coding@work\n", output)

	s.cfg.Autocomplete.ActivitiesRange = 0
	output = captureOutput(t, func() {
		require.NoError(t, (&CompleteCommand{globals: &GlobalFlags{}}).executeWithSession(s, []string{"co"}))
	})
	assert.Equal(t, "coding@work\ncooking\n", output)
}

func TestCompleteCommand_JSON(t *testing.T) {
	s := testSession(t)

	output := captureOutput(t, func() {
		require.NoError(t, (&CompleteCommand{globals: &GlobalFlags{JSON: true}}).executeWithSession(s, []string{"co"}))
	})

	var result []string
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Empty(t, result)
	assert.NotNil(t, result)
}
