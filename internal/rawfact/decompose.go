// Package rawfact turns the single-line "raw fact" entries users type into
// structured facts.
//
// A raw fact looks like
//
//	2016-01-01 12:00 - 2016-01-01 14:30 coding@work #go #review,fixed the parser
//
// and is read in two steps: Decompose splits the line into its textual
// segments, Parse resolves those segments into timestamps and names.
package rawfact

import (
	"errors"
	"regexp"
)

// ErrNoMatch is returned when a line cannot be segmented. There is no partial
// result: callers should report the entry as not interpretable.
var ErrNoMatch = errors.New("raw fact: no match")

// Segment names, in the order they appear in a raw fact.
const (
	SegmentTimeInfo    = "timeinfo"
	SegmentActivity    = "activity"
	SegmentCategory    = "category"
	SegmentTags        = "tags"
	SegmentDescription = "description"
)

const (
	reDate     = `\d{4}-\d{2}-\d{2}`
	reTime     = `\d{2}:\d{2}`
	reDateTime = reDate + ` ` + reTime

	// Date+time must come first so "2016-01-01 12:00" is not read as a
	// date followed by activity text.
	rePoint = `(?:` + reDateTime + `|` + reDate + `|` + reTime + `)`

	reTimeInfo    = `(?P<timeinfo>(?:` + rePoint + ` - ` + rePoint + `|` + rePoint + `) )?`
	reActivity    = `(?P<activity>[^@#,:]+)?`
	reCategory    = `(?P<category>@[^,#]+)?`
	reTags        = `(?P<tags> #[^,]*)?`
	reDescription = `(?P<description>,.*)?`
)

var rawFactPattern = regexp.MustCompile(
	`^` + reTimeInfo + reActivity + reCategory + reTags + reDescription + `$`,
)

// Fields holds the segments of a raw fact exactly as they appear in the
// input. An absent segment is the empty string; a present one never is.
type Fields struct {
	TimeInfo    string
	Activity    string
	Category    string
	Tags        string
	Description string
}

// Map returns the present segments keyed by segment name.
func (f Fields) Map() map[string]string {
	out := make(map[string]string, 5)
	for _, kv := range []struct{ key, value string }{
		{SegmentTimeInfo, f.TimeInfo},
		{SegmentActivity, f.Activity},
		{SegmentCategory, f.Category},
		{SegmentTags, f.Tags},
		{SegmentDescription, f.Description},
	} {
		if kv.value != "" {
			out[kv.key] = kv.value
		}
	}
	return out
}

// String joins the segments back together. For any Fields returned by
// Decompose this is the original input.
func (f Fields) String() string {
	return f.TimeInfo + f.Activity + f.Category + f.Tags + f.Description
}

// Decompose splits text into its raw fact segments.
//
// The time segment is a date, a time, a date and time, or a range of two of
// those joined by " - ", and always ends in a space. The activity runs up to
// the first '@' (category), " #" (tags) or ',' (description). A '#' or ':'
// inside the activity makes the whole line unparsable.
func Decompose(text string) (Fields, error) {
	m := rawFactPattern.FindStringSubmatch(text)
	if m == nil {
		return Fields{}, ErrNoMatch
	}

	var f Fields
	for i, name := range rawFactPattern.SubexpNames() {
		switch name {
		case SegmentTimeInfo:
			f.TimeInfo = m[i]
		case SegmentActivity:
			f.Activity = m[i]
		case SegmentCategory:
			f.Category = m[i]
		case SegmentTags:
			f.Tags = m[i]
		case SegmentDescription:
			f.Description = m[i]
		}
	}
	return f, nil
}
