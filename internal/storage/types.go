package storage

import "time"

// Activity is a named thing facts are tracked against, optionally within a
// category. The same name may exist once per category.
type Activity struct {
	ID       int64
	Name     string
	Category string // empty when uncategorized
}

// String renders the activity the way it is typed in a raw fact.
func (a Activity) String() string {
	if a.Category == "" {
		return a.Name
	}
	return a.Name + "@" + a.Category
}

// Fact is a single tracked time span.
type Fact struct {
	ID          string
	Activity    Activity
	Start       time.Time
	End         time.Time
	Tags        []string
	Description string
}

// Duration returns the tracked time of the fact.
func (f Fact) Duration() time.Duration {
	return f.End.Sub(f.Start)
}

// FactQuery defines filters for listing facts. Since and Until select
// facts overlapping the window; zero values leave that side open.
type FactQuery struct {
	Search   string
	Activity string
	Category string
	Tag      string
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// Stats holds aggregate statistics about the fact database.
type Stats struct {
	TotalFacts      int64
	TotalActivities int64
	TotalCategories int64
	TotalTags       int64
	OldestFact      time.Time
	NewestFact      time.Time
	TrackedTime     time.Duration
	TopActivities   []ActivityTotal
}

// ActivityTotal pairs an activity with its tracked time.
type ActivityTotal struct {
	Activity Activity
	Facts    int64
	Duration time.Duration
}
