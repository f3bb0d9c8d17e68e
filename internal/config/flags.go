package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/orion/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed in ValueFlags/BoolFlags are looked at, the rest of
// os.Args belongs to the CLI.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-r", "-d", "-u", "-l"}, BoolFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ProjectRoot, "r", cfg.ProjectRoot, "project root")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database file")
	fs.StringVar(&cfg.User, "u", cfg.User, "user name")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.AssumeYes, "y", cfg.AssumeYes, "answer yes to every confirmation")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
