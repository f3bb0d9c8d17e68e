// Package flagx lets several components share os.Args: each one picks out
// the flags it owns and ignores the rest, and the CLI keeps what is left
// as its command line.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args made of the given flags.
//
// Value flags keep their value, either combined ("-r=/proj") or as the
// following argument ("-r /proj") when that argument does not start with
// a dash. Bool flags never consume the next argument, so "-y shot list"
// keeps "shot list" out of the result.
func FilterArgs(args []string, valueFlags []string, boolFlags []string) []string {
	filtered := make([]string, 0, len(args))
	walk(args, valueFlags, boolFlags, func(owned []string) {
		filtered = append(filtered, owned...)
	}, nil)
	return filtered
}

// StripArgs is the complement of FilterArgs: it returns every argument
// that is not one of the given flags or a flag value.
func StripArgs(args []string, valueFlags []string, boolFlags []string) []string {
	rest := make([]string, 0, len(args))
	walk(args, valueFlags, boolFlags, nil, func(arg string) {
		rest = append(rest, arg)
	})
	return rest
}

func walk(args, valueFlags, boolFlags []string, owned func([]string), other func(string)) {
	values := toSet(valueFlags)
	bools := toSet(boolFlags)

	emit := func(a ...string) {
		if owned != nil {
			owned(a)
		}
	}
	skip := func(a string) {
		if other != nil {
			other(a)
		}
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := values[name]; ok {
				emit(arg)
				continue
			}
			if _, ok := bools[name]; ok {
				emit(arg)
				continue
			}
			skip(arg)
			continue
		}

		if _, ok := bools[arg]; ok {
			emit(arg)
			continue
		}

		if _, ok := values[arg]; ok {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				emit(arg, args[i+1])
				i++
			} else {
				emit(arg)
			}
			continue
		}

		skip(arg)
	}
}

func toSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// JsonConfigFlags returns the config file path given with -c or -config,
// or "" when neither is present.
func JsonConfigFlags() string {
	return stringFlag([]string{"c", "config"}, "path to JSON config file")
}

// EnvFileFlags returns the .env path given with -env, or "".
func EnvFileFlags() string {
	return stringFlag([]string{"env"}, "path to .env file")
}

func stringFlag(names []string, usage string) string {
	var value string

	allowed := make([]string, 0, len(names))
	for _, n := range names {
		allowed = append(allowed, "-"+n)
	}
	args := FilterArgs(os.Args[1:], allowed, nil)

	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	for _, n := range names {
		fs.StringVar(&value, n, "", usage)
	}
	_ = fs.Parse(args)

	return value
}
