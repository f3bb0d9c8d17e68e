package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the prompt needs. *App satisfies it;
// tests can provide a lightweight stub.
type execIface interface {
	Execute(ctx context.Context, args []string) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit" and
// dispatches them to a. "help" is answered here. Errors are printed and
// the loop continues; a cancelled ctx ends it.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn("orion> ")
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		args, perr := splitLine(line)
		if perr != nil {
			printlnFn("error:", perr)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			printlnFn(usage)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			if err := a.Execute(ctx, args); err != nil {
				printlnFn("error:", err)
			}
		}
	}
}

// splitLine splits a prompt line on whitespace. Double or single quotes
// group words, so paths with spaces can be typed as "C:/My Shots/a.exr".
func splitLine(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
