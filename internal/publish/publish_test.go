package publish

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/cryptox"
	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/logging"
	"github.com/dmitrijs2005/orion/internal/paths"
	"github.com/dmitrijs2005/orion/internal/storage/local"
	"github.com/dmitrijs2005/orion/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCreateTask(t *testing.T) {
	shot := t.TempDir()

	dir, err := CreateTask(shot, "COMP", "main")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(shot, "COMP", "main"), dir)
	assert.DirExists(t, filepath.Join(dir, ".EXPORT", ".PUBLISHED"))

	_, err = CreateTask(shot, "COMP", "main")
	require.NoError(t, err, "idempotent")

	for _, bad := range [][2]string{{"", "x"}, {"COMP", ".."}, {"a/b", "x"}, {"COMP", `x\y`}} {
		_, err := CreateTask(shot, bad[0], bad[1])
		assert.ErrorIs(t, err, common.ErrInvalidInput, bad)
	}

	_, err = CreateTask(filepath.Join(shot, "missing"), "COMP", "main")
	require.ErrorIs(t, err, common.ErrFilesystem)
}

func TestListExports(t *testing.T) {
	task := t.TempDir()
	write(t, filepath.Join(task, ExportDir, "b_v001.exr"), "")
	write(t, filepath.Join(task, ExportDir, "a_v001.abc"), "")
	write(t, filepath.Join(task, ExportDir, ".DS_Store"), "")
	write(t, filepath.Join(task, ExportDir, PublishedDir, "a_v001.abc"), "")
	write(t, filepath.Join(task, ExportDir, PublishedDir, ".hidden"), "")

	items, err := ListExports(task)
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{Name: "a_v001.abc", Path: filepath.Join(task, ExportDir, "a_v001.abc")},
		{Name: "a_v001.abc", Path: filepath.Join(task, ExportDir, PublishedDir, "a_v001.abc"), Published: true},
		{Name: "b_v001.exr", Path: filepath.Join(task, ExportDir, "b_v001.exr")},
	}, items)

	items, err = ListExports(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNextVersion(t *testing.T) {
	dir := t.TempDir()

	v, err := NextVersion(dir, "comp", ".nk")
	require.NoError(t, err)
	assert.Equal(t, "comp_v001.nk", v)

	for _, name := range []string{"comp_v001.nk", "comp_v007.nk", "comp_v010.nk~", "comp_main_v020.nk", "comp_v1000.exr"} {
		write(t, filepath.Join(dir, name), "")
	}
	v, err = NextVersion(dir, "comp", "nk")
	require.NoError(t, err)
	assert.Equal(t, "comp_v008.nk", v)

	v, err = NextVersion(filepath.Join(dir, "missing"), "plate", ".exr")
	require.NoError(t, err)
	assert.Equal(t, "plate_v001.exr", v)
}

type publishEnv struct {
	root   string
	task   string
	db     *sql.DB
	repos  store.RepositoryManager
	mirror string
}

func newPublishEnv(t *testing.T) *publishEnv {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, layout.EnsureProject(root))
	repos := store.NewSQLiteRepositoryManager(logging.Nop())
	db, err := store.Open(context.Background(), filepath.Join(root, "60_config", "data", "project.db"), true, repos)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	task, err := CreateTask(layout.EntityDir(root, layout.KindShot, "stc_0010"), "COMP", "main")
	require.NoError(t, err)
	return &publishEnv{root: root, task: task, db: db, repos: repos, mirror: t.TempDir()}
}

func (e *publishEnv) publisher(mirror bool) *Publisher {
	o := Options{DB: e.db, Repos: e.repos, Resolver: paths.NewResolver(e.root, nil, ""), User: "ana"}
	if mirror {
		o.Mirror = local.New(e.mirror)
	}
	return NewPublisher(o)
}

func fixedNow(t *testing.T, ts time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = orig })
}

func TestPublisher_PublishAndHistory(t *testing.T) {
	e := newPublishEnv(t)
	ctx := context.Background()
	fixedNow(t, time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC))
	p := e.publisher(true)

	src := filepath.Join(e.task, ExportDir, "comp_v001.exr")
	write(t, src, "pixels")

	rec, err := p.Publish(ctx, src)
	require.NoError(t, err)

	want, _, err := cryptox.FileDigest(src)
	require.NoError(t, err)
	assert.Equal(t, want, rec.Digest)
	assert.EqualValues(t, 6, rec.Size)
	assert.Equal(t, "40_shots/stc_0010/COMP/main/.EXPORT/comp_v001.exr", rec.SourcePath)
	assert.Equal(t, "40_shots/stc_0010/COMP/main/.EXPORT/.PUBLISHED/comp_v001.exr", rec.PublishedPath)
	assert.Equal(t, "ana", rec.PublishedBy)

	mirrored := filepath.Join(e.mirror, filepath.FromSlash(rec.PublishedPath))
	assert.Equal(t, mirrored, rec.MirrorKey)
	data, err := os.ReadFile(mirrored)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	published := filepath.Join(e.task, ExportDir, PublishedDir, "comp_v001.exr")
	ok, err := p.Verify(ctx, published)
	require.NoError(t, err)
	assert.True(t, ok)
	write(t, published, "tampered")
	ok, err = p.Verify(ctx, published)
	require.NoError(t, err)
	assert.False(t, ok)

	write(t, src, "pixels v2")
	_, err = p.Publish(ctx, src)
	require.NoError(t, err)

	hist, err := p.History(ctx, e.task)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Greater(t, hist[0].ID, hist[1].ID)
	assert.True(t, hist[0].PublishedAt.Equal(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)))
}

func TestPublisher_PublishRejects(t *testing.T) {
	e := newPublishEnv(t)
	p := e.publisher(false)

	loose := filepath.Join(e.task, "notes.txt")
	write(t, loose, "x")
	_, err := p.Publish(context.Background(), loose)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = p.Publish(context.Background(), filepath.Join(e.task, ExportDir, "missing.exr"))
	require.ErrorIs(t, err, common.ErrFilesystem)
}

type brokenMirror struct{}

func (brokenMirror) Put(context.Context, string, io.Reader, int64) error { return errors.New("bucket gone") }
func (brokenMirror) Delete(context.Context, string) error                 { return errors.New("bucket gone") }
func (brokenMirror) Location(key string) string                          { return "broken://" + key }

func TestPublisher_MirrorFailureKeepsLocalPublish(t *testing.T) {
	e := newPublishEnv(t)
	p := NewPublisher(Options{DB: e.db, Repos: e.repos, Resolver: paths.NewResolver(e.root, nil, ""), Mirror: brokenMirror{}})

	src := filepath.Join(e.task, ExportDir, "cam.abc")
	write(t, src, "cam")
	rec, err := p.Publish(context.Background(), src)
	require.ErrorContains(t, err, "bucket gone")
	require.NotNil(t, rec)
	assert.Empty(t, rec.MirrorKey)
	assert.FileExists(t, filepath.Join(e.task, ExportDir, PublishedDir, "cam.abc"))
}

func TestPublisher_Unpublish(t *testing.T) {
	e := newPublishEnv(t)
	ctx := context.Background()
	fixedNow(t, time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC))
	p := e.publisher(true)

	src := filepath.Join(e.task, ExportDir, "comp_v001.exr")
	write(t, src, "pixels")
	rec, err := p.Publish(ctx, src)
	require.NoError(t, err)

	published := filepath.Join(e.task, ExportDir, PublishedDir, "comp_v001.exr")
	dst, err := p.Unpublish(ctx, published)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.task, BinDir, "comp_v001.exr"), dst)
	assert.NoFileExists(t, published)
	assert.NoFileExists(t, rec.MirrorKey)

	hist, err := p.History(ctx, e.task)
	require.NoError(t, err)
	assert.Empty(t, hist)

	// same name again: timestamp suffix
	dst, err = p.Unpublish(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.task, BinDir, "comp_v001_20250304_050607.exr"), dst)

	_, err = p.Unpublish(ctx, filepath.Join(e.task, "stray.exr"))
	require.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = p.Unpublish(ctx, filepath.Join(e.task, ExportDir, "gone.exr"))
	require.ErrorIs(t, err, common.ErrFilesystem)
}
