package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoValues is returned by SetValues when given nothing to apply.
	ErrNoValues = errors.New("no values provided")

	// ErrUnknownPreference is returned for keys no preferences page owns.
	ErrUnknownPreference = errors.New("unknown preference")
)

// Choice is one allowed value of a preference, with its display name.
type Choice struct {
	Value string
	Name  string
}

// Kind tells a front end which kind of input a preference takes.
type Kind string

const (
	KindTime   Kind = "time"
	KindNumber Kind = "number"
	KindChoice Kind = "choice"
	KindPath   Kind = "path"
	KindSwitch Kind = "switch"
)

// Field is a single labelled preference bound to a Config value.
type Field struct {
	Key     string
	Label   string
	Kind    Kind
	Choices []Choice

	get func(*Config) string
	set func(*Config, string) error
}

// Value returns the field's current value in c.
func (f Field) Value(c *Config) string {
	return f.get(c)
}

// Set parses value and stores it in c.
func (f Field) Set(c *Config, value string) error {
	if err := f.set(c, value); err != nil {
		return fmt.Errorf("%s: %w", f.Key, err)
	}
	return nil
}

// Page is an ordered group of preferences. The order of Fields is the
// display order.
type Page struct {
	Title  string
	Fields []Field
}

// Values collects the current value of every field on the page.
func (p Page) Values(c *Config) map[string]string {
	out := make(map[string]string, len(p.Fields))
	for _, f := range p.Fields {
		out[f.Key] = f.Value(c)
	}
	return out
}

// SetValues stores every value whose key belongs to this page. Keys of
// other pages are ignored.
func (p Page) SetValues(c *Config, values map[string]string) error {
	for _, f := range p.Fields {
		v, ok := values[f.Key]
		if !ok {
			continue
		}
		if err := f.Set(c, v); err != nil {
			return err
		}
	}
	return nil
}

// Pages returns the preference pages in display order.
func Pages() []Page {
	return []Page{
		{Title: "Tracking", Fields: []Field{
			{
				Key: "day_start", Label: "Day Start (HH:MM:SS)", Kind: KindTime,
				get: func(c *Config) string { return c.Tracking.DayStart },
				set: func(c *Config, v string) error {
					if _, err := (TrackingConfig{DayStart: v}).DayStartOffset(); err != nil {
						return err
					}
					c.Tracking.DayStart = v
					return nil
				},
			},
			{
				Key: "fact_min_delta", Label: "Minimal Fact Duration", Kind: KindNumber,
				get: func(c *Config) string { return strconv.Itoa(c.Tracking.FactMinDelta) },
				set: func(c *Config, v string) error { return setCount(&c.Tracking.FactMinDelta, v) },
			},
		}},
		{Title: "Storage", Fields: []Field{
			{
				Key: "store", Label: "Store", Kind: KindChoice, Choices: Stores(),
				get: func(c *Config) string { return c.Storage.Store },
				set: func(c *Config, v string) error { return setChoice(&c.Storage.Store, v, Stores()) },
			},
			{
				Key: "db_engine", Label: "DB Engine", Kind: KindChoice, Choices: DBEngines(),
				get: func(c *Config) string { return c.Storage.DBEngine },
				set: func(c *Config, v string) error { return setChoice(&c.Storage.DBEngine, v, DBEngines()) },
			},
			{
				Key: "db_path", Label: "DB Path", Kind: KindPath,
				get: func(c *Config) string { return c.Storage.DBPath },
				set: func(c *Config, v string) error { return setPath(&c.Storage.DBPath, v) },
			},
			{
				Key: "tmpfile_path", Label: "Temporary file", Kind: KindPath,
				get: func(c *Config) string { return c.Storage.TmpfilePath },
				set: func(c *Config, v string) error { return setPath(&c.Storage.TmpfilePath, v) },
			},
		}},
		{Title: "Miscellaneous", Fields: []Field{
			{
				Key: "autocomplete_activities_range", Label: "Autocomplete Activities Range", Kind: KindNumber,
				get: func(c *Config) string { return strconv.Itoa(c.Autocomplete.ActivitiesRange) },
				set: func(c *Config, v string) error { return setCount(&c.Autocomplete.ActivitiesRange, v) },
			},
			{
				Key: "autocomplete_split_activity", Label: "Autocomplete activities and categories separately", Kind: KindSwitch,
				get: func(c *Config) string { return strconv.FormatBool(c.Autocomplete.SplitActivity) },
				set: func(c *Config, v string) error {
					b, err := strconv.ParseBool(v)
					if err != nil {
						return fmt.Errorf("expected true or false, got %q", v)
					}
					c.Autocomplete.SplitActivity = b
					return nil
				},
			},
		}},
	}
}

// Keys returns every preference key, sorted.
func Keys() []string {
	var keys []string
	for _, p := range Pages() {
		for _, f := range p.Fields {
			keys = append(keys, f.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Values collects the values of all preference pages into one flat map.
func (c *Config) Values() map[string]string {
	out := make(map[string]string)
	for _, p := range Pages() {
		for k, v := range p.Values(c) {
			out[k] = v
		}
	}
	return out
}

// SetValues applies the given preference values. Either all values are
// applied or, on any error, none are.
func (c *Config) SetValues(values map[string]string) error {
	if len(values) == 0 {
		return ErrNoValues
	}

	known := make(map[string]bool)
	for _, k := range Keys() {
		known[k] = true
	}
	for k := range values {
		if !known[k] {
			return fmt.Errorf("%w: %q", ErrUnknownPreference, k)
		}
	}

	next := *c
	for _, p := range Pages() {
		if err := p.SetValues(&next, values); err != nil {
			return err
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*c = next
	return nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if _, err := c.Tracking.DayStartOffset(); err != nil {
		return err
	}
	if c.Tracking.FactMinDelta < 0 {
		return fmt.Errorf("fact_min_delta must not be negative")
	}
	if !isChoice(c.Storage.Store, Stores()) {
		return fmt.Errorf("unknown store %q", c.Storage.Store)
	}
	if !isChoice(c.Storage.DBEngine, DBEngines()) {
		return fmt.Errorf("unknown db_engine %q", c.Storage.DBEngine)
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.Storage.TmpfilePath == "" {
		return fmt.Errorf("tmpfile_path must not be empty")
	}
	if c.Autocomplete.ActivitiesRange < 0 {
		return fmt.Errorf("autocomplete_activities_range must not be negative")
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	return nil
}

func setCount(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", v)
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	*dst = n
	return nil
}

func setChoice(dst *string, v string, choices []Choice) error {
	if !isChoice(v, choices) {
		return fmt.Errorf("unsupported value %q", v)
	}
	*dst = v
	return nil
}

func setPath(dst *string, v string) error {
	if v == "" {
		return fmt.Errorf("path must not be empty")
	}
	*dst = v
	return nil
}

func isChoice(v string, choices []Choice) bool {
	for _, c := range choices {
		if c.Value == v {
			return true
		}
	}
	return false
}
