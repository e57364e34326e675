// Package completion suggests how to finish a partially typed raw fact from
// the activities the user tracked before.
package completion

import (
	"strings"

	"github.com/runnerr0/hamster/internal/rawfact"
	"github.com/runnerr0/hamster/internal/storage"
)

// Segment model names.
const (
	ModelActivity = "activity"
	ModelCategory = "category"
	ModelCombined = "activity@category"
)

// Completion holds one suggestion list per raw fact segment. Lists keep the
// order of the activities they were built from.
type Completion struct {
	split  bool
	models map[string][]string
}

// New builds the segment models from activities, typically the result of
// Store.RecentActivities. With split, activities and categories complete
// separately; otherwise the activity segment completes "activity@category"
// pairs.
func New(activities []storage.Activity, split bool) *Completion {
	c := &Completion{
		split:  split,
		models: make(map[string][]string, 3),
	}

	seen := map[string]map[string]bool{
		ModelActivity: {},
		ModelCategory: {},
		ModelCombined: {},
	}
	add := func(model, value string) {
		if value == "" || seen[model][value] {
			return
		}
		seen[model][value] = true
		c.models[model] = append(c.models[model], value)
	}

	for _, a := range activities {
		add(ModelActivity, a.Name)
		if a.Category != "" {
			add(ModelCategory, "@"+a.Category)
		}
		add(ModelCombined, a.String())
	}
	return c
}

// Model returns a copy of the named segment model.
func (c *Completion) Model(name string) []string {
	return append([]string(nil), c.models[name]...)
}

// Complete returns full raw fact lines that extend text. Only the last
// segment of text is completed; once tags or a description are being typed
// there is nothing to suggest. Unparsable text yields no suggestions.
func (c *Completion) Complete(text string) []string {
	fields, err := rawfact.Decompose(text)
	if err != nil && strings.HasSuffix(text, "@") {
		// A lone '@' is not a category yet, but is where one starts.
		fields, err = rawfact.Decompose(strings.TrimSuffix(text, "@"))
		if err == nil && fields.Category == "" {
			fields.Category = "@"
		} else {
			err = rawfact.ErrNoMatch
		}
	}
	if err != nil {
		return nil
	}
	if fields.Tags != "" || fields.Description != "" {
		return nil
	}

	switch {
	case fields.Category != "" && c.split:
		return complete(fields.TimeInfo+fields.Activity, fields.Category, c.models[ModelCategory])
	case fields.Category != "":
		return complete(fields.TimeInfo, fields.Activity+fields.Category, c.models[ModelCombined])
	case c.split:
		return complete(fields.TimeInfo, fields.Activity, c.models[ModelActivity])
	default:
		return complete(fields.TimeInfo, fields.Activity, c.models[ModelCombined])
	}
}

// complete returns head+candidate for every candidate starting with
// partial, ignoring case.
func complete(head, partial string, candidates []string) []string {
	prefix := strings.ToLower(partial)
	var out []string
	for _, cand := range candidates {
		if strings.HasPrefix(strings.ToLower(cand), prefix) {
			out = append(out, head+cand)
		}
	}
	return out
}
