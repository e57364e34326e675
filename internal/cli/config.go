package cli

import (
	"fmt"
	"strings"

	"github.com/runnerr0/hamster/internal/config"
)

// Execute implements the go-flags Commander interface for ConfigCommand.
func (c *ConfigCommand) Execute(args []string) error {
	cfg, path, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithConfig(cfg, path)
}

// executeWithConfig runs config against a loaded config stored at path
// (for testing).
func (c *ConfigCommand) executeWithConfig(cfg *config.Config, path string) error {
	switch {
	case c.Path:
		fmt.Println(path)
		return nil
	case len(c.Set) > 0:
		return c.set(cfg, path)
	case c.Get != "":
		return c.get(cfg)
	}

	if jsonOutput(c.globals) {
		return printJSON(cfg.Values())
	}
	for i, page := range config.Pages() {
		if i > 0 {
			fmt.Println()
		}
		printTitle(page.Title)
		tbl := newTable()
		for _, f := range page.Fields {
			tbl.AddRow(f.Key, f.Value(cfg), faintColor.Sprint(f.Label))
		}
		fmt.Println(tbl)
	}
	return nil
}

func (c *ConfigCommand) get(cfg *config.Config) error {
	value, ok := cfg.Values()[c.Get]
	if !ok {
		return fmt.Errorf("%w: %s", config.ErrUnknownPreference, c.Get)
	}
	if jsonOutput(c.globals) {
		return printJSON(map[string]string{c.Get: value})
	}
	fmt.Println(value)
	return nil
}

// set applies every key=value pair at once and saves the file. Nothing is
// written if any pair is rejected.
func (c *ConfigCommand) set(cfg *config.Config, path string) error {
	values := make(map[string]string, len(c.Set))
	for _, pair := range c.Set {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid --set %q: expected key=value", pair)
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := cfg.SetValues(values); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if jsonOutput(c.globals) {
		return printJSON(cfg.Values())
	}
	for _, key := range config.Keys() {
		if _, ok := values[key]; ok {
			fmt.Printf("%s = %s\n", key, cfg.Values()[key])
		}
	}
	return nil
}
