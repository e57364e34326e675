package cli

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands keeps the registered subcommands reachable from tests.
type commands struct {
	Add      *AddCommand
	Start    *StartCommand
	Stop     *StopCommand
	Current  *CurrentCommand
	List     *ListCommand
	Export   *ExportCommand
	Show     *ShowCommand
	Remove   *RemoveCommand
	Status   *StatusCommand
	Complete *CompleteCommand
	Config   *ConfigCommand
	Purge    *PurgeCommand
}

// buildParser wires every subcommand onto a go-flags parser sharing one
// set of global flags.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "hamster"
	parser.LongDescription = "Track your time from the command line, one raw fact line at a time."

	cmds := &commands{
		Add:      &AddCommand{globals: &globals, version: version},
		Start:    &StartCommand{globals: &globals, version: version},
		Stop:     &StopCommand{globals: &globals, version: version},
		Current:  &CurrentCommand{globals: &globals, version: version},
		List:     &ListCommand{globals: &globals, version: version},
		Export:   &ExportCommand{globals: &globals, version: version},
		Show:     &ShowCommand{globals: &globals, version: version},
		Remove:   &RemoveCommand{globals: &globals, version: version},
		Status:   &StatusCommand{globals: &globals, version: version},
		Complete: &CompleteCommand{globals: &globals, version: version},
		Config:   &ConfigCommand{globals: &globals, version: version},
		Purge:    &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("add", "Record a fact", `Record a fact from a raw fact line, e.g.

  hamster add 2016-02-20 12:00 - 2016-02-20 15:00 coding@work #go,parser

A fact without an end time is started as the ongoing fact.`, cmds.Add)
	parser.AddCommand("start", "Start tracking a fact", "Start tracking an ongoing fact. A running fact is stopped first.", cmds.Start)
	parser.AddCommand("stop", "Stop the ongoing fact", "Stop the ongoing fact and save it, unless shorter than the minimal fact duration.", cmds.Stop)
	parser.AddCommand("current", "Show the ongoing fact", "Show the ongoing fact and how long it has been running.", cmds.Current)
	parser.AddCommand("list", "List facts", "List the facts of a tracking day or time window, with optional filters.", cmds.List)
	parser.AddCommand("export", "Export facts", "Export the facts of a tracking day or time window as iCalendar, CSV or TSV.", cmds.Export)
	parser.AddCommand("show", "Print a fact", "Print a single fact by ID.", cmds.Show)
	parser.AddCommand("remove", "Delete a fact", "Delete a single fact by ID.", cmds.Remove)
	parser.AddCommand("status", "Show tracking statistics", "Show database statistics, top activities and the ongoing fact.", cmds.Status)
	parser.AddCommand("complete", "Complete a raw fact", "Suggest completions for a partially typed raw fact from recent activities.", cmds.Complete)
	parser.AddCommand("config", "Show or edit preferences", "Show all preferences, print one with --get, or change them with --set key=value.", cmds.Config)
	parser.AddCommand("purge", "Delete ALL facts", "Delete ALL tracked facts. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run executes the CLI against os.Args.
func Run(version string) error {
	return RunWithArgs(version, os.Args[1:])
}

// RunWithArgs executes the subcommand named by args. Help output is not an
// error.
func RunWithArgs(version string, args []string) error {
	if versionRequested(args) {
		fmt.Printf("hamster %s\n", version)
		return nil
	}

	parser, _, _ := buildParser(version)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}

// versionRequested reports whether --version appears before any "--"
// terminator. go-flags would otherwise demand a subcommand first.
func versionRequested(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "--version":
			return true
		}
	}
	return false
}
