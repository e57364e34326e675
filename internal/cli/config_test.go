package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hamster/internal/config"
)

func testConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "hamster", "config.yaml")
}

func TestConfigCommand_ListsPages(t *testing.T) {
	path := testConfigPath(t)

	output := captureOutput(t, func() {
		require.NoError(t, (&ConfigCommand{globals: &GlobalFlags{}}).executeWithConfig(config.DefaultConfig(), path))
	})

	for _, want := range []string{"Tracking", "Storage", "Miscellaneous", "day_start", "05:00:00", "Minimal Fact Duration", "autocomplete_split_activity"} {
		assert.Contains(t, output, want)
	}
}

func TestConfigCommand_JSON(t *testing.T) {
	output := captureOutput(t, func() {
		require.NoError(t, (&ConfigCommand{globals: &GlobalFlags{JSON: true}}).executeWithConfig(config.DefaultConfig(), testConfigPath(t)))
	})

	var values map[string]string
	require.NoError(t, json.Unmarshal([]byte(output), &values))
	assert.Equal(t, "05:00:00", values["day_start"])
	assert.Equal(t, "sqlite", values["db_engine"])
	assert.Len(t, values, len(config.Keys()))
}

func TestConfigCommand_Get(t *testing.T) {
	output := captureOutput(t, func() {
		require.NoError(t, (&ConfigCommand{Get: "fact_min_delta", globals: &GlobalFlags{}}).executeWithConfig(config.DefaultConfig(), testConfigPath(t)))
	})
	assert.Equal(t, "1\n", output)

	err := (&ConfigCommand{Get: "colour", globals: &GlobalFlags{}}).executeWithConfig(config.DefaultConfig(), testConfigPath(t))
	assert.ErrorIs(t, err, config.ErrUnknownPreference)
}

func TestConfigCommand_Path(t *testing.T) {
	path := testConfigPath(t)
	output := captureOutput(t, func() {
		require.NoError(t, (&ConfigCommand{Path: true, globals: &GlobalFlags{}}).executeWithConfig(config.DefaultConfig(), path))
	})
	assert.Equal(t, path+"\n", output)
}

func TestConfigCommand_SetSaves(t *testing.T) {
	path := testConfigPath(t)
	cmd := &ConfigCommand{
		Set:     []string{"day_start=06:30:00", "autocomplete_split_activity = true"},
		globals: &GlobalFlags{},
	}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithConfig(config.DefaultConfig(), path))
	})
	assert.Equal(t, "autocomplete_split_activity = true\nday_start = 06:30:00\n", output)

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "06:30:00", saved.Tracking.DayStart)
	assert.True(t, saved.Autocomplete.SplitActivity)
	assert.Equal(t, 1, saved.Tracking.FactMinDelta)
}

func TestConfigCommand_SetRejectsAll(t *testing.T) {
	path := testConfigPath(t)
	cfg := config.DefaultConfig()
	cmd := &ConfigCommand{
		Set:     []string{"day_start=06:30:00", "fact_min_delta=soon"},
		globals: &GlobalFlags{},
	}

	err := cmd.executeWithConfig(cfg, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fact_min_delta")
	assert.Equal(t, "05:00:00", cfg.Tracking.DayStart)
	assert.NoFileExists(t, path)
}

func TestConfigCommand_SetErrors(t *testing.T) {
	tests := []struct {
		name string
		set  []string
		want string
	}{
		{"no equals sign", []string{"day_start"}, "expected key=value"},
		{"empty key", []string{"=06:00:00"}, "expected key=value"},
		{"unknown key", []string{"colour=blue"}, "unknown preference"},
		{"bad engine", []string{"db_engine=cassandra"}, "db_engine"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &ConfigCommand{Set: tc.set, globals: &GlobalFlags{}}
			err := cmd.executeWithConfig(config.DefaultConfig(), testConfigPath(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
