package rawfact

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidTime is returned when the time segment has the right shape
	// but names an impossible date or clock time, e.g. "2016-13-01".
	ErrInvalidTime = errors.New("raw fact: invalid date or time")

	// ErrInvalidRange is returned when a fact ends before it starts.
	ErrInvalidRange = errors.New("raw fact: end before start")

	// ErrMissingActivity is returned by Parse when the line has no activity.
	ErrMissingActivity = errors.New("raw fact: missing activity")
)

const (
	layoutDate     = "2006-01-02"
	layoutTime     = "15:04"
	layoutDateTime = layoutDate + " " + layoutTime
)

// Fact is a fully resolved raw fact.
type Fact struct {
	Start       time.Time
	End         time.Time // zero while the fact is ongoing
	Activity    string
	Category    string
	Tags        []string
	Description string
}

// ParseOptions controls how relative parts of the time segment are resolved.
type ParseOptions struct {
	// Now anchors bare clock times and facts without a time segment.
	// Defaults to time.Now().
	Now time.Time

	// DayStart is the offset from midnight at which a tracking day begins.
	// Bare dates start at DayStart; a bare date as range end covers the
	// whole day, up to DayStart of the next day.
	DayStart time.Duration
}

// Ongoing reports whether the fact has no end yet.
func (f *Fact) Ongoing() bool {
	return f.End.IsZero()
}

// Duration returns the length of the fact. Ongoing facts are measured up to
// now.
func (f *Fact) Duration(now time.Time) time.Duration {
	end := f.End
	if end.IsZero() {
		end = now
	}
	if end.Before(f.Start) {
		return 0
	}
	return end.Sub(f.Start)
}

// String renders the fact as a canonical raw fact line that Parse accepts.
func (f *Fact) String() string {
	var b strings.Builder
	if !f.Start.IsZero() {
		b.WriteString(f.Start.Format(layoutDateTime))
		if !f.End.IsZero() {
			b.WriteString(" - ")
			b.WriteString(f.End.Format(layoutDateTime))
		}
		b.WriteByte(' ')
	}
	b.WriteString(f.Activity)
	if f.Category != "" {
		b.WriteString("@" + f.Category)
	}
	for _, tag := range f.Tags {
		b.WriteString(" #" + tag)
	}
	if f.Description != "" {
		b.WriteString("," + f.Description)
	}
	return b.String()
}

// Parse decomposes text and resolves its segments into a Fact.
func Parse(text string, opts ParseOptions) (*Fact, error) {
	fields, err := Decompose(text)
	if err != nil {
		return nil, err
	}
	return FromFields(fields, opts)
}

// FromFields resolves already decomposed segments into a Fact.
func FromFields(fields Fields, opts ParseOptions) (*Fact, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	fact := &Fact{
		Activity:    strings.TrimSpace(fields.Activity),
		Category:    strings.TrimSpace(strings.TrimPrefix(fields.Category, "@")),
		Tags:        SplitTags(fields.Tags),
		Description: strings.TrimSpace(strings.TrimPrefix(fields.Description, ",")),
	}
	if fact.Activity == "" {
		return nil, ErrMissingActivity
	}

	if fields.TimeInfo == "" {
		fact.Start = opts.Now
		return fact, nil
	}

	start, end, err := resolveTimeInfo(fields.TimeInfo, opts)
	if err != nil {
		return nil, err
	}
	fact.Start, fact.End = start, end
	return fact, nil
}

// SplitTags splits a raw tag span such as " #t1 #t2" into tag names. Only a
// '#' preceded by a space starts a new tag, so "#t#2" is the tag "t#2".
// Duplicates are dropped, first occurrence wins.
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	seen := make(map[string]bool)
	var tags []string
	for _, part := range strings.Split(raw, " #") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}
	return tags
}

// timePoint is one side of a time segment.
type timePoint struct {
	t       time.Time
	hasDate bool
	hasTime bool
}

func parsePoint(s string, loc *time.Location) (timePoint, error) {
	for _, p := range []struct {
		layout  string
		hasDate bool
		hasTime bool
	}{
		{layoutDateTime, true, true},
		{layoutDate, true, false},
		{layoutTime, false, true},
	} {
		if len(s) != len(p.layout) {
			continue
		}
		t, err := time.ParseInLocation(p.layout, s, loc)
		if err != nil {
			return timePoint{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		return timePoint{t: t, hasDate: p.hasDate, hasTime: p.hasTime}, nil
	}
	return timePoint{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

func resolveTimeInfo(info string, opts ParseOptions) (time.Time, time.Time, error) {
	loc := opts.Now.Location()
	parts := strings.SplitN(strings.TrimSpace(info), " - ", 2)

	sp, err := parsePoint(parts[0], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := resolvePoint(sp, dateOf(opts.Now), opts.DayStart)

	if len(parts) == 1 {
		return start, time.Time{}, nil
	}

	ep, err := parsePoint(parts[1], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	var end time.Time
	switch {
	case ep.hasDate && !ep.hasTime:
		end = ep.t.AddDate(0, 0, 1).Add(opts.DayStart)
	default:
		end = resolvePoint(ep, dateOf(start), opts.DayStart)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", ErrInvalidRange, strings.TrimSpace(info))
	}
	return start, end, nil
}

// resolvePoint fills in what a time point leaves out: bare times take the
// given day, bare dates start at dayStart.
func resolvePoint(p timePoint, day time.Time, dayStart time.Duration) time.Time {
	switch {
	case p.hasDate && p.hasTime:
		return p.t
	case p.hasDate:
		return p.t.Add(dayStart)
	default:
		return time.Date(day.Year(), day.Month(), day.Day(),
			p.t.Hour(), p.t.Minute(), 0, 0, day.Location())
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
