// Package cli implements the orion command line: one-shot commands such as
// "orion scan" and, when started without a command, an interactive prompt
// that accepts the same commands.
package cli
