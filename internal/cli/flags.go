package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DB      string `long:"db" description:"Override the database path from the config file"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// AddCommand records a fact from a raw fact line.
type AddCommand struct {
	globals *GlobalFlags
	version string
}

// StartCommand starts tracking an ongoing fact.
type StartCommand struct {
	globals *GlobalFlags
	version string
}

// StopCommand stops the ongoing fact and saves it.
type StopCommand struct {
	Discard bool `long:"discard" description:"Drop the ongoing fact instead of saving it"`

	globals *GlobalFlags
	version string
}

// CurrentCommand shows the ongoing fact.
type CurrentCommand struct {
	globals *GlobalFlags
	version string
}

// ListCommand lists facts of a day or time window with filters.
type ListCommand struct {
	Date     string `long:"date" description:"Tracking day to list (YYYY-MM-DD), default today"`
	Since    string `long:"since" description:"List facts of the last window instead of one day (e.g., 3d, 1w, 1w2d)"`
	Search   string `long:"search" description:"Only facts whose activity, category or description contains text"`
	Activity string `long:"activity" description:"Filter by activity name"`
	Category string `long:"category" description:"Filter by category name"`
	Tag      string `long:"tag" description:"Filter by tag"`
	Limit    int    `long:"limit" description:"Maximum results (0 for all)" default:"0"`
	Offset   int    `long:"offset" description:"Skip first N results" default:"0"`

	globals *GlobalFlags
	version string
}

// ExportCommand writes facts of a day or time window to a file or stdout.
type ExportCommand struct {
	Format   string `long:"format" description:"Export format: ical, csv or tsv" default:"ical"`
	Output   string `long:"output" short:"o" description:"Write to file instead of stdout"`
	Date     string `long:"date" description:"Tracking day to export (YYYY-MM-DD), default today"`
	Since    string `long:"since" description:"Export the last window instead of one day (e.g., 3d, 1w, 1w2d)"`
	Activity string `long:"activity" description:"Filter by activity name"`
	Category string `long:"category" description:"Filter by category name"`
	Tag      string `long:"tag" description:"Filter by tag"`

	globals *GlobalFlags
	version string
}

// ShowCommand prints a single fact.
type ShowCommand struct {
	ID string `long:"id" description:"Fact ID (required)"`

	globals *GlobalFlags
	version string
}

// RemoveCommand deletes a single fact.
type RemoveCommand struct {
	ID string `long:"id" description:"Fact ID (required)"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows database statistics and the ongoing fact.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// CompleteCommand suggests completions for a partial raw fact.
type CompleteCommand struct {
	globals *GlobalFlags
	version string
}

// ConfigCommand shows and edits preferences.
type ConfigCommand struct {
	Get  string   `long:"get" description:"Print the value of one preference"`
	Set  []string `long:"set" description:"Set a preference as key=value (repeatable)"`
	Path bool     `long:"path" description:"Print the config file path"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes ALL facts with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	in      io.Reader // confirmation input; nil means os.Stdin
}
