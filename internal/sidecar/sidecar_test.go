package sidecar

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(dir)
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{ not json"), 0o644))
	_, err = Read(dir)
	require.ErrorIs(t, err, common.ErrMalformedSidecar)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("null"), 0o644))
	_, err = Read(dir)
	require.ErrorIs(t, err, common.ErrMalformedSidecar)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"code": "stc_0010"}`), 0o644))
	m, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "stc_0010", m.String(KeyCode))
	assert.Equal(t, "", m.String(KeyID))
}

func TestWrite_Fresh(t *testing.T) {
	dir := t.TempDir()
	fixedNow(t, time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC))
	w := NewWriter(nil)

	m, err := w.Write(context.Background(), dir, Tag{
		Code: "stc_0015", ID: "stc_0015", OriginalPath: "40_shots/stc_0015", User: "anna",
		Extra: map[string]any{"type": "shot"},
	})
	require.NoError(t, err)
	assert.Equal(t, "anna", m.String(KeyCreatedBy))

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, Meta{
		"code":          "stc_0015",
		"id":            "stc_0015",
		"original_path": "40_shots/stc_0015",
		"created_by":    "anna",
		"last_updated":  "2026-02-03T04:05:06Z",
		"type":          "shot",
	}, got)
	assert.True(t, HasMarker(dir, "stc_0015"))

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"code\"", "indented with four spaces")
}

func TestWrite_MergeKeepsCustomKeys(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(nil)
	ctx := context.Background()

	_, err := w.Write(ctx, dir, Tag{
		Code: "s15", ID: "s15", OriginalPath: "40_shots/s15", User: "anna",
		Extra: map[string]any{"type": "shot", "fps": "24", "note": "first"},
	})
	require.NoError(t, err)

	_, err = w.Write(ctx, dir, Tag{
		Code: "stc_0015", ID: "stc_0015", OriginalPath: "40_shots/stc_0015", User: "bob",
		Extra: map[string]any{"note": "Fixed/Migrated", "client": "acme"},
	})
	require.NoError(t, err)

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "stc_0015", got.String(KeyCode))
	assert.Equal(t, "40_shots/stc_0015", got.String(KeyOriginalPath))
	assert.Equal(t, "anna", got.String(KeyCreatedBy), "created_by is kept")
	assert.Equal(t, "shot", got.String("type"))
	assert.Equal(t, "24", got.String("fps"))
	assert.Equal(t, "Fixed/Migrated", got.String("note"))
	assert.Equal(t, "acme", got.String("client"))

	ids, err := Markers(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"stc_0015"}, ids, "old marker removed")
}

func TestWrite_PreservesForeignKeysFromOtherTools(t *testing.T) {
	dir := t.TempDir()
	foreign := map[string]any{"code": "old", "nuke_version": "15.1", "tags": []any{"hero", "night"}}
	b, err := json.Marshal(foreign)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), b, 0o644))

	_, err = NewWriter(nil).Write(context.Background(), dir, Tag{Code: "stc_0010", ID: "stc_0010", OriginalPath: "40_shots/stc_0010"})
	require.NoError(t, err)

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "15.1", got.String("nuke_version"))
	assert.Equal(t, []any{"hero", "night"}, got["tags"])
	assert.Equal(t, "stc_0010", got.String(KeyCode))
}

func TestWrite_ReplacesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{{{"), 0o644))

	_, err := NewWriter(nil).Write(context.Background(), dir, Tag{Code: "stc_0010", ID: "stc_0010", OriginalPath: "40_shots/stc_0010"})
	require.NoError(t, err)

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "stc_0010", got.String(KeyCode))
}

func TestWrite_MissingFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	_, err := NewWriter(nil).Write(context.Background(), dir, Tag{Code: "stc_0010", ID: "stc_0010"})
	require.ErrorIs(t, err, common.ErrFilesystem)
}

func TestWriteMarker(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{".id_0b7c2f0e-8a43-4a57-9b71-1e0d9b7f6c11", ".id_s15", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}

	require.NoError(t, WriteMarker(dir, "stc_0015"))

	ids, err := Markers(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"stc_0015"}, ids)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	require.NoError(t, WriteMarker(dir, "stc_0015"), "rewriting the same marker is fine")
	require.ErrorIs(t, WriteMarker(dir, ""), common.ErrInvalidInput)
}
