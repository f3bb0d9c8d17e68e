// Package shotcode formats, parses and allocates shot codes of the form
// stc_NNNN. Numbers past 9999 keep all their digits (stc_10000), so
// allocation never wraps.
package shotcode

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	Prefix = "stc_"
	// Step leaves room for manually inserted shots between allocated codes.
	Step = 10
	Seed = "stc_0010"
)

var (
	// Four digits, or more without a leading zero: exactly what Format emits.
	codePattern    = regexp.MustCompile(`^stc_(\d{4}|[1-9]\d{4,})$`)
	trailingDigits = regexp.MustCompile(`(\d+)$`)
)

// Format returns the code for shot number n.
func Format(n int) string {
	return fmt.Sprintf("%s%04d", Prefix, n)
}

// Parse returns the number of a canonical code.
func Parse(code string) (int, bool) {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Canonical derives the canonical code of a folder name from its trailing
// run of digits. Names without trailing digits are returned unchanged.
// The digits are used as text, so runs of any length canonicalise.
func Canonical(name string) string {
	m := trailingDigits.FindString(name)
	if m == "" {
		return name
	}
	digits := strings.TrimLeft(m, "0")
	if len(digits) < 4 {
		digits = strings.Repeat("0", 4-len(digits)) + digits
	}
	return Prefix + digits
}

// Next scans shotsRoot for stc_NNNN folders and returns the highest code
// plus Step, or Seed when the folder is missing or holds no such shots.
// Folders are counted whether or not they are registered in the database.
func Next(shotsRoot string) (string, error) {
	entries, err := os.ReadDir(shotsRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Seed, nil
		}
		return Seed, fmt.Errorf("failed to scan %s: %w", shotsRoot, err)
	}

	highest := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if n, ok := Parse(e.Name()); ok && n > highest {
			highest = n
		}
	}
	if highest == 0 {
		return Seed, nil
	}
	return Format(highest + Step), nil
}
