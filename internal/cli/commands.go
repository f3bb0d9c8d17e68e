package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/orion/internal/common"
)

const usage = `Commands:
  init                                  create the project folders and database
  next                                  print the next free shot code
  shot list [-format f]                 list shots
  shot show <code>                      show a shot and its assets
  shot create [n|code] [-start N] [-end N] [-desc text]
  shot update <code> [-code c] [-start N] [-end N] [-desc text] [-thread id] [-thumb path]
  shot delete <code>                    delete a shot folder and its record
  asset list [type] [-format f]         list assets
  asset show <name>
  asset create <name> [-type t] [-desc text] [-thumb path]
  asset update <name> [-name n] [-type t] [-desc text] [-thumb path]
  asset delete <name> [-purge]
  asset link|unlink <shot> <asset>
  scan [assets] [-format f]             report drift between folders, database and sidecars
  fix [assets] [name...]                repair drift, asking before every step
  task <entity-dir> <dept> <task>       create a task folder
  exports <task-dir> [-format f]        list exports and publish history
  publish <file>                        publish a file from a task's .EXPORT folder
  unpublish <file>                      move an export or published file to .BIN
  version <dir> <base> <ext>            print the next versioned file name
  relpath <path>                        print the project-relative form of a path
  launch <software> [shot] [file]       start an application in a shot context
  notify <message>                      post a message to the project channel
  help, exit

Formats: table (default), json, yaml.`

type handler func(ctx context.Context, args []string) error

func (a *App) commands() map[string]handler {
	return map[string]handler{
		"init":      a.cmdInit,
		"next":      a.cmdNext,
		"shot":      a.cmdShot,
		"asset":     a.cmdAsset,
		"scan":      a.cmdScan,
		"fix":       a.cmdFix,
		"task":      a.cmdTask,
		"exports":   a.cmdExports,
		"publish":   a.cmdPublish,
		"unpublish": a.cmdUnpublish,
		"version":   a.cmdVersion,
		"relpath":   a.cmdRelPath,
		"launch":    a.cmdLaunch,
		"notify":    a.cmdNotify,
		"help": func(context.Context, []string) error {
			fmt.Fprintln(a.out, usage)
			return nil
		},
	}
}

var errUsage = errors.New("usage")

// Execute runs one command.
func (a *App) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	h, ok := a.commands()[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (try 'help')", args[0])
	}
	return h(ctx, args[1:])
}

func usageErr(line string) error {
	return fmt.Errorf("%w: %s", errUsage, line)
}

// newFlags returns a flag set that reports errors instead of exiting.
func (a *App) newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments and returns the positional ones.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, &common.OpError{Kind: common.ErrInvalidInput, Op: fs.Name(), Err: err}
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

// optString and optInt record whether a flag was given at all.
type optString struct {
	set   bool
	value string
}

func (o *optString) String() string { return o.value }
func (o *optString) Set(v string) error {
	o.set, o.value = true, v
	return nil
}
func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	return &o.value
}

type optInt struct {
	set   bool
	value int
}

func (o *optInt) String() string { return strconv.Itoa(o.value) }
func (o *optInt) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	o.set, o.value = true, n
	return nil
}
func (o *optInt) ptr() *int {
	if !o.set {
		return nil
	}
	return &o.value
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
