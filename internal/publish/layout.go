// Package publish manages task folders and the export, publish and bin
// areas inside them.
//
// Every task folder holds:
//
//	<task>/.EXPORT             files produced by a DCC
//	<task>/.EXPORT/.PUBLISHED  copies approved for downstream use
//	<task>/.BIN                unpublished files
package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/filex"
)

const (
	ExportDir    = ".EXPORT"
	PublishedDir = ".PUBLISHED"
	BinDir       = ".BIN"
)

// Item is one file of a task's export area.
type Item struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path" yaml:"path"`
	Published bool   `json:"published" yaml:"published"`
}

func checkElement(kind, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return &common.OpError{Kind: common.ErrInvalidInput, Op: "task", Path: name,
			Err: fmt.Errorf("bad %s name", kind)}
	}
	return nil
}

// CreateTask creates <entityDir>/<dept>/<task> with its export folders and
// returns the task path. Existing folders are reused.
func CreateTask(entityDir, dept, task string) (string, error) {
	if err := checkElement("department", dept); err != nil {
		return "", err
	}
	if err := checkElement("task", task); err != nil {
		return "", err
	}
	if !filex.IsDir(entityDir) {
		return "", common.FS("task", entityDir, os.ErrNotExist)
	}
	dir := filepath.Join(entityDir, dept, task)
	if err := filex.EnsureDir(filepath.Join(dir, ExportDir, PublishedDir)); err != nil {
		return "", err
	}
	return dir, nil
}

// ListExports lists the files in the task's .EXPORT and .PUBLISHED
// folders sorted by name. Dot-files and folders are skipped.
func ListExports(taskDir string) ([]Item, error) {
	var items []Item
	for _, src := range []struct {
		dir       string
		published bool
	}{
		{filepath.Join(taskDir, ExportDir), false},
		{filepath.Join(taskDir, ExportDir, PublishedDir), true},
	} {
		entries, err := os.ReadDir(src.dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, common.FS("list", src.dir, err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
				continue
			}
			items = append(items, Item{Name: e.Name(), Path: filepath.Join(src.dir, e.Name()), Published: src.published})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// NextVersion returns <base>_v###<ext>, one above the highest version of
// base already in dir, starting at v001.
func NextVersion(dir, base, ext string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `_v(\d{3,})` + regexp.QuoteMeta(ext) + `$`)

	highest := 0
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", common.FS("list", dir, err)
	}
	for _, e := range entries {
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > highest {
			highest = v
		}
	}
	return fmt.Sprintf("%s_v%03d%s", base, highest+1, ext), nil
}

// taskOf walks up from a file in the export area to its task folder.
func taskOf(file string) (string, bool) {
	dir := filepath.Dir(file)
	switch filepath.Base(dir) {
	case PublishedDir:
		exp := filepath.Dir(dir)
		if filepath.Base(exp) != ExportDir {
			return "", false
		}
		return filepath.Dir(exp), true
	case ExportDir:
		return filepath.Dir(dir), true
	}
	return "", false
}
