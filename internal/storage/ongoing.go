package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoOngoing is returned by OngoingFile.Load when no fact is running.
var ErrNoOngoing = errors.New("no ongoing fact")

// ongoingRecord is the on-disk form of the ongoing fact.
type ongoingRecord struct {
	Activity    string   `yaml:"activity"`
	Category    string   `yaml:"category,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Start       string   `yaml:"start"`
}

// OngoingFile keeps the single running fact in a small YAML file until it is
// stopped and moved into the database.
type OngoingFile struct {
	path string
}

// NewOngoingFile returns an OngoingFile stored at path.
func NewOngoingFile(path string) *OngoingFile {
	return &OngoingFile{path: path}
}

// Path returns the file location.
func (o *OngoingFile) Path() string {
	return o.path
}

// Load returns the ongoing fact. Its End is always zero.
func (o *OngoingFile) Load() (*Fact, error) {
	data, err := os.ReadFile(o.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoOngoing
		}
		return nil, fmt.Errorf("reading ongoing fact: %w", err)
	}

	var rec ongoingRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing ongoing fact: %w", err)
	}

	start, err := time.Parse(time.RFC3339Nano, rec.Start)
	if err != nil {
		return nil, fmt.Errorf("parsing ongoing fact start: %w", err)
	}

	return &Fact{
		Activity:    Activity{Name: rec.Activity, Category: rec.Category},
		Start:       start,
		Tags:        rec.Tags,
		Description: rec.Description,
	}, nil
}

// Save replaces the ongoing fact.
func (o *OngoingFile) Save(f *Fact) error {
	if f.Activity.Name == "" {
		return fmt.Errorf("%w: missing activity", ErrInvalidFact)
	}

	data, err := yaml.Marshal(ongoingRecord{
		Activity:    f.Activity.Name,
		Category:    f.Activity.Category,
		Tags:        f.Tags,
		Description: f.Description,
		Start:       f.Start.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshaling ongoing fact: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(o.path), 0755); err != nil {
		return fmt.Errorf("creating ongoing fact directory: %w", err)
	}

	tmp := o.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing ongoing fact: %w", err)
	}
	return os.Rename(tmp, o.path)
}

// Clear removes the ongoing fact. Clearing when nothing runs is not an error.
func (o *OngoingFile) Clear() error {
	if err := os.Remove(o.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing ongoing fact: %w", err)
	}
	return nil
}
