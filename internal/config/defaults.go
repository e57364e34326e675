package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Tracking: TrackingConfig{
			DayStart:     "05:00:00",
			FactMinDelta: 1,
		},
		Storage: StorageConfig{
			Store:       "sqlite",
			DBEngine:    "sqlite",
			DBPath:      "~/.local/share/hamster/hamster.sqlite",
			TmpfilePath: "~/.local/share/hamster/hamster.fact",
		},
		Autocomplete: AutocompleteConfig{
			ActivitiesRange: 30,
			SplitActivity:   false,
		},
		Logging: LoggingConfig{
			Level: "warning",
		},
	}
}

// Stores lists the storage backends with their display names.
func Stores() []Choice {
	return []Choice{
		{"sqlite", "SQLite"},
	}
}

// DBEngines lists the database engines with their display names.
func DBEngines() []Choice {
	return []Choice{
		{"sqlite", "SQLite"},
		{"postgresql", "PostgreSQL"},
		{"mysql", "MySQL"},
		{"oracle", "Oracle"},
		{"mssql", "MSSQL"},
	}
}
