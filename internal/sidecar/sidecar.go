// Package sidecar reads and writes the metadata passport kept inside every
// shot and asset folder: orion_meta.json plus a single .id_<id> marker.
//
// Writes merge onto whatever the file already holds, so keys added by
// other tools survive. Known keys are always overwritten, except
// created_by which is only set once.
package sidecar

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/orion/internal/attrs"
	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/logging"
)

const (
	FileName     = "orion_meta.json"
	MarkerPrefix = ".id_"
)

// Known keys.
const (
	KeyCode         = "code"
	KeyID           = "id"
	KeyOriginalPath = "original_path"
	KeyCreatedBy    = "created_by"
	KeyLastUpdated  = "last_updated"
)

// Meta is the decoded sidecar object.
type Meta map[string]any

// String returns the value at key when it is a string.
func (m Meta) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Tag carries the canonical fields of one write.
type Tag struct {
	Code         string
	ID           string
	OriginalPath string
	User         string
	Extra        map[string]any
}

var now = time.Now

// Read decodes dir's sidecar. A missing file yields common.ErrorNotFound,
// undecodable content yields common.ErrMalformedSidecar.
func Read(dir string) (Meta, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.Wrap(common.ErrorNotFound, "read", path, err)
		}
		return nil, common.FS("read", path, err)
	}

	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, common.Wrap(common.ErrMalformedSidecar, "parse", path, err)
	}
	if m == nil {
		return nil, &common.OpError{Kind: common.ErrMalformedSidecar, Op: "parse", Path: path}
	}
	return m, nil
}

// Writer persists sidecars.
type Writer struct {
	log logging.Logger
}

func NewWriter(log logging.Logger) *Writer {
	if log == nil {
		log = logging.Nop()
	}
	return &Writer{log: log}
}

// Write merges tag into dir's sidecar and leaves exactly one marker,
// .id_<tag.ID>. A corrupt existing file is replaced.
func (w *Writer) Write(ctx context.Context, dir string, tag Tag) (Meta, error) {
	existing, err := Read(dir)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
	case errors.Is(err, common.ErrMalformedSidecar):
		w.log.Warn(ctx, "replacing corrupt sidecar", "dir", dir, "error", err)
	default:
		return nil, err
	}

	merged := Meta{}
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range tag.Extra {
		merged[k] = v
	}
	merged[KeyCode] = tag.Code
	merged[KeyID] = tag.ID
	merged[KeyOriginalPath] = tag.OriginalPath
	merged[KeyLastUpdated] = now().UTC().Format(time.RFC3339)
	if merged.String(KeyCreatedBy) == "" {
		merged[KeyCreatedBy] = tag.User
	}

	data, err := json.MarshalIndent(merged, "", "    ")
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, FileName)
	if err := writeHidden(path, data); err != nil {
		return nil, err
	}
	if err := WriteMarker(dir, tag.ID); err != nil {
		return nil, err
	}
	if err := attrs.StampID(dir, tag.ID); err != nil {
		w.log.Debug(ctx, "id stamp skipped", "dir", dir, "error", err)
	}

	w.log.Debug(ctx, "sidecar written", "dir", dir, "code", tag.Code, "id", tag.ID)
	return merged, nil
}

// MarkerName returns the marker file name for id.
func MarkerName(id string) string {
	return MarkerPrefix + id
}

// Markers lists the ids of every marker in dir, sorted.
func Markers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, common.FS("readdir", dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), MarkerPrefix) {
			continue
		}
		ids = append(ids, strings.TrimPrefix(e.Name(), MarkerPrefix))
	}
	sort.Strings(ids)
	return ids, nil
}

// HasMarker reports whether dir holds the marker for id.
func HasMarker(dir, id string) bool {
	fi, err := os.Lstat(filepath.Join(dir, MarkerName(id)))
	return err == nil && !fi.IsDir()
}

// WriteMarker removes every other marker in dir and creates .id_<id>.
func WriteMarker(dir, id string) error {
	if id == "" {
		return &common.OpError{Kind: common.ErrInvalidInput, Op: "marker", Path: dir, Err: errors.New("empty id")}
	}
	ids, err := Markers(dir)
	if err != nil {
		return err
	}
	for _, other := range ids {
		if other == id {
			continue
		}
		p := filepath.Join(dir, MarkerName(other))
		_ = attrs.SetHidden(p, false)
		if err := os.Remove(p); err != nil {
			return common.FS("remove", p, err)
		}
	}
	return writeHidden(filepath.Join(dir, MarkerName(id)), nil)
}

// writeHidden clears the hidden flag (some filesystems refuse to open
// hidden files for writing), writes data and sets the flag again.
func writeHidden(path string, data []byte) error {
	if _, err := os.Lstat(path); err == nil {
		_ = attrs.SetHidden(path, false)
	}
	if err := os.WriteFile(path, data, 0o664); err != nil {
		return common.FS("write", path, err)
	}
	_ = attrs.SetHidden(path, true)
	return nil
}
