package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/orion/internal/reconcile"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// stdinFd is the descriptor checked by isTerminal.
var stdinFd = func() int { return int(os.Stdin.Fd()) }

// promptConfirmer asks on the terminal. Answering "a" accepts the current
// step and every later one.
type promptConfirmer struct {
	reader *bufio.Reader
	w      io.Writer
	all    bool
}

func (p *promptConfirmer) Confirm(ctx context.Context, step reconcile.Step, prompt string) bool {
	if p.all {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	answer, err := GetSimpleText(p.reader, prompt+" [y/N/a]", p.w)
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	case "a", "all":
		p.all = true
		return true
	}
	return false
}

// confirmer picks how repairs are confirmed: -y accepts everything, a
// terminal gets prompts, anything else declines every step.
func (a *App) confirmer() reconcile.Confirmer {
	if a.cfg.AssumeYes {
		return reconcile.AcceptAll{}
	}
	if !isTerminal(stdinFd()) {
		fmt.Fprintln(a.out, "stdin is not a terminal: declining every change (use -y to accept)")
		return reconcile.DeclineAll{}
	}
	return &promptConfirmer{reader: a.in, w: a.out}
}
