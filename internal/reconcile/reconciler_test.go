package reconcile

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/logging"
	"github.com/dmitrijs2005/orion/internal/models"
	"github.com/dmitrijs2005/orion/internal/paths"
	"github.com/dmitrijs2005/orion/internal/sidecar"
	"github.com/dmitrijs2005/orion/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	root  string
	db    *sql.DB
	repos store.RepositoryManager
	rec   *Reconciler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, layout.EnsureProject(root))

	repos := store.NewSQLiteRepositoryManager(logging.Nop())
	db, err := store.Open(ctx, filepath.Join(root, "60_config", "data", "project.db"), true, repos)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rec := New(Options{
		DB:       db,
		Repos:    repos,
		Resolver: paths.NewResolver(root, nil, "ORION_CORPORATION"),
		User:     "tester",
	})
	return &env{root: root, db: db, repos: repos, rec: rec}
}

// shotDir creates a shot folder with its full subfolder tree.
func (e *env) shotDir(t *testing.T, name string) string {
	t.Helper()
	dir := layout.EntityDir(e.root, layout.KindShot, name)
	require.NoError(t, layout.EnsureTree(dir, layout.KindShot))
	return dir
}

func (e *env) healthyShot(t *testing.T, code, id string) string {
	t.Helper()
	dir := e.shotDir(t, code)
	rel := "40_shots/" + code
	require.NoError(t, e.repos.Shots(e.db).Create(context.Background(), &models.Shot{
		ID: id, Code: code, FrameStart: 1001, FrameEnd: 1100, ShotPath: rel,
	}))
	_, err := sidecar.NewWriter(nil).Write(context.Background(), dir, sidecar.Tag{Code: code, ID: id, OriginalPath: rel})
	require.NoError(t, err)
	return dir
}

func flagsOf(t *testing.T, e *env, kind layout.Kind, name string) []Flag {
	t.Helper()
	rep, err := e.rec.Analyze(context.Background(), kind, layout.EntityDir(e.root, kind, name))
	require.NoError(t, err)
	return rep.Flags
}

func TestScenario_UnregisteredNonCanonicalFolder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.shotDir(t, "s15")

	reports, err := e.rec.Scan(ctx, layout.KindShot)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	rep := reports[0]
	assert.Equal(t, []Flag{FlagWrongName, FlagRegister, FlagMissingJSON, FlagMissingIDTag}, rep.Flags)
	assert.Equal(t, "stc_0015", rep.Target)
	assert.Equal(t, DBMissing, rep.DBStatus)

	res := e.rec.Repair(ctx, rep, AcceptAll{})
	require.NoError(t, res.Err())
	assert.False(t, res.Aborted)

	dir := layout.EntityDir(e.root, layout.KindShot, "stc_0015")
	assert.Equal(t, dir, res.FinalPath)
	assert.NoDirExists(t, layout.EntityDir(e.root, layout.KindShot, "s15"))
	assert.FileExists(t, filepath.Join(dir, sidecar.FileName))
	assert.FileExists(t, filepath.Join(dir, ".id_stc_0015"))

	s, err := e.repos.Shots(e.db).GetByCode(ctx, "stc_0015")
	require.NoError(t, err)
	assert.Equal(t, "stc_0015", s.ID)
	assert.Equal(t, models.MigratedUser, s.UserAssigned)
	assert.Equal(t, 1001, s.FrameStart)
	assert.Equal(t, 1100, s.FrameEnd)
	assert.Equal(t, "40_shots/stc_0015", s.ShotPath)

	meta, err := sidecar.Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "tester", meta.String(sidecar.KeyCreatedBy))
	assert.Equal(t, "Fixed/Migrated", meta.String("note"))
}

func TestScenario_SimplifyLegacyID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	legacy := uuid.NewString()
	e.healthyShot(t, "stc_0020", legacy)

	reports, err := e.rec.Scan(ctx, layout.KindShot)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, []Flag{FlagSimplifyID}, reports[0].Flags)
	assert.Equal(t, IDComplex, reports[0].IDStatus)

	res := e.rec.Repair(ctx, reports[0], AcceptAll{})
	require.NoError(t, res.Err())

	s, err := e.repos.Shots(e.db).GetByCode(ctx, "stc_0020")
	require.NoError(t, err)
	assert.Equal(t, "stc_0020", s.ID)

	assert.Empty(t, flagsOf(t, e, layout.KindShot, "stc_0020"), "marker follows the new id")
}

func TestRepair_IsAFixedPoint(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// not canonical, registered under its old name, with an asset link
	e.shotDir(t, "shot_30")
	require.NoError(t, e.repos.Shots(e.db).Create(ctx, &models.Shot{ID: uuid.NewString(), Code: "shot_30"}))
	require.NoError(t, e.repos.Assets(e.db).Link(ctx, "shot_30", "asset-1"))

	// canonical, registered, missing subfolders and holding a corrupt sidecar
	dir40 := e.healthyShot(t, "stc_0040", "stc_0040")
	require.NoError(t, os.RemoveAll(filepath.Join(dir40, "COMP")))
	require.NoError(t, os.WriteFile(filepath.Join(dir40, sidecar.FileName), []byte("{oops"), 0o644))

	// sidecar written with stale values and a stray marker
	dir50 := e.healthyShot(t, "stc_0050", "stc_0050")
	_, err := sidecar.NewWriter(nil).Write(ctx, dir50, sidecar.Tag{Code: "stc_0005", ID: "stale", OriginalPath: "40_shots/elsewhere"})
	require.NoError(t, err)

	// no digits: name is kept, still needs registering
	e.shotDir(t, "teaser")

	// ignored
	require.NoError(t, os.MkdirAll(filepath.Join(e.root, "40_shots", "OLD", "s1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.root, "40_shots", "readme.txt"), nil, 0o644))

	first, err := e.rec.Scan(ctx, layout.KindShot)
	require.NoError(t, err)
	require.Len(t, first, 4)
	assert.Equal(t, []string{"shot_30", "stc_0040", "stc_0050", "teaser"},
		[]string{first[0].Folder, first[1].Folder, first[2].Folder, first[3].Folder})

	assert.Equal(t, []Flag{FlagWrongName, FlagDBNeedsUpdate, FlagMissingJSON, FlagMissingIDTag, FlagSimplifyID}, first[0].Flags)
	assert.Equal(t, DBOldName, first[0].DBStatus)
	assert.Equal(t, []Flag{FlagMissingFolders, FlagJSONCorrupt}, first[1].Flags)
	assert.Equal(t, []Flag{FlagJSONPath, FlagJSONCode, FlagMissingIDTag}, first[2].Flags)
	assert.Equal(t, []Flag{FlagRegister, FlagMissingJSON, FlagMissingIDTag}, first[3].Flags)

	for _, res := range e.rec.RepairAll(ctx, first, AcceptAll{}) {
		require.NoError(t, res.Err(), res.Report.Folder)
	}

	second, err := e.rec.Scan(ctx, layout.KindShot)
	require.NoError(t, err)
	require.Len(t, second, 4)
	for _, rep := range second {
		assert.True(t, rep.Healthy(), "%s: %s", rep.Folder, rep.Health())
	}
	assert.Empty(t, e.rec.RepairAll(ctx, second, AcceptAll{}))

	linked, err := e.repos.Assets(e.db).ShotAssets(ctx, "stc_0030")
	require.NoError(t, err)
	assert.Empty(t, linked, "asset-1 has no row, but the link moved with the code")
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM shot_assets WHERE shot_code = 'stc_0030'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestRepair_RenameSafety(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	src := e.shotDir(t, "s15")
	require.NoError(t, os.WriteFile(filepath.Join(src, "COMP", "keep.nk"), []byte("Root {}"), 0o644))
	e.shotDir(t, "stc_0015")

	rep, err := e.rec.Analyze(ctx, layout.KindShot, src)
	require.NoError(t, err)
	require.True(t, rep.Has(FlagWrongName))

	res := e.rec.Repair(ctx, rep, AcceptAll{})
	assert.True(t, res.Aborted)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, Failed, res.Outcomes[0].Status)
	assert.ErrorIs(t, res.Err(), common.ErrDestinationExists)

	assert.FileExists(t, filepath.Join(src, "COMP", "keep.nk"))
	assert.NoFileExists(t, filepath.Join(src, sidecar.FileName))
	_, err = e.repos.Shots(e.db).GetByCode(ctx, "stc_0015")
	assert.ErrorIs(t, err, common.ErrorNotFound, "no DB change after a failed rename")
}

func TestRepair_DeclinedRenameAborts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	src := e.shotDir(t, "s15")

	var asked []Step
	c := ConfirmFunc(func(_ context.Context, step Step, _ string) bool {
		asked = append(asked, step)
		return false
	})

	rep, err := e.rec.Analyze(ctx, layout.KindShot, src)
	require.NoError(t, err)
	res := e.rec.Repair(ctx, rep, c)

	assert.True(t, res.Aborted)
	assert.Equal(t, []Step{StepRename}, asked)
	assert.DirExists(t, src)
	assert.Equal(t, rep.Flags, flagsOf(t, e, layout.KindShot, "s15"))
}

func TestRepair_StepsAreIndependent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	dir := e.shotDir(t, "stc_0060")

	// decline registration only
	c := ConfirmFunc(func(_ context.Context, step Step, _ string) bool { return step != StepRegister })

	rep, err := e.rec.Analyze(ctx, layout.KindShot, dir)
	require.NoError(t, err)
	res := e.rec.Repair(ctx, rep, c)
	require.NoError(t, res.Err())

	assert.Equal(t, []Outcome{
		{Step: StepRegister, Status: Skipped, Detail: "declined"},
		{Step: StepSidecar, Status: Applied},
	}, res.Outcomes)
	assert.Equal(t, []Flag{FlagRegister}, flagsOf(t, e, layout.KindShot, "stc_0060"))
}

func TestRepair_RegisterAfterCodeRename(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shots := e.repos.Shots(e.db)

	require.NoError(t, shots.Create(ctx, &models.Shot{ID: "stc_0020", Code: "stc_0020"}))
	require.NoError(t, shots.RenameCode(ctx, "stc_0020", "stc_0025"))
	e.shotDir(t, "s20")

	reports, err := e.rec.Scan(ctx, layout.KindShot)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	res := e.rec.Repair(ctx, reports[0], AcceptAll{})
	require.NoError(t, res.Err())

	s, err := shots.GetByCode(ctx, "stc_0020")
	require.NoError(t, err)
	assert.Equal(t, "stc_0020", s.ID)
	assert.Empty(t, flagsOf(t, e, layout.KindShot, "stc_0020"))
}

func TestRepair_RegisterIDHeldByAnotherCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.db.Exec(`INSERT INTO shots (id, code, frame_start, frame_end) VALUES ('stc_0020', 'old_20', 1001, 1100)`)
	require.NoError(t, err)
	e.shotDir(t, "s20")

	reports, err := e.rec.Scan(ctx, layout.KindShot)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	res := e.rec.Repair(ctx, reports[0], AcceptAll{})
	require.ErrorIs(t, res.Err(), common.ErrorAlreadyExists)

	var steps []Step
	for _, o := range res.Outcomes {
		steps = append(steps, o.Step)
		if o.Step == StepRegister {
			assert.Equal(t, Failed, o.Status)
		}
	}
	assert.Equal(t, []Step{StepRename, StepRegister, StepSidecar}, steps)

	// nothing was recorded, so the next scan still asks for registration
	assert.Equal(t, []Flag{FlagRegister}, flagsOf(t, e, layout.KindShot, "stc_0020"))
}

func TestAnalyze_LegacyBackslashPathMatches(t *testing.T) {
	e := newEnv(t)
	dir := e.healthyShot(t, "stc_0070", "stc_0070")
	require.NoError(t, os.WriteFile(filepath.Join(dir, sidecar.FileName),
		[]byte(`{"code": "stc_0070", "id": "stc_0070", "original_path": "40_shots\\stc_0070"}`), 0o644))

	assert.Empty(t, flagsOf(t, e, layout.KindShot, "stc_0070"))
}

func TestAssets_ScanAndRepair(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(layout.EntityDir(e.root, layout.KindAsset, "hero_01"), 0o755))

	reports, err := e.rec.Scan(ctx, layout.KindAsset)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	rep := reports[0]
	assert.Equal(t, "hero_01", rep.Target, "asset names are not canonicalised")
	assert.Equal(t, []Flag{FlagRegister, FlagMissingFolders, FlagMissingJSON, FlagMissingIDTag}, rep.Flags)

	res := e.rec.Repair(ctx, rep, AcceptAll{})
	require.NoError(t, res.Err())

	a, err := e.repos.Assets(e.db).GetByName(ctx, "hero_01")
	require.NoError(t, err)
	assert.Equal(t, "30_assets/hero_01", a.Path)
	_, err = uuid.Parse(a.ID)
	require.NoError(t, err)

	again, err := e.rec.Analyze(ctx, layout.KindAsset, rep.Path)
	require.NoError(t, err)
	assert.True(t, again.Healthy(), again.Health())
	assert.Equal(t, IDUnknown, again.IDStatus)
}

func TestScan_MissingParent(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.RemoveAll(filepath.Join(e.root, "40_shots")))

	_, err := e.rec.Scan(context.Background(), layout.KindShot)
	require.ErrorIs(t, err, common.ErrFilesystem)
}

func TestReport_Health(t *testing.T) {
	r := Report{}
	assert.Equal(t, "Healthy", r.Health())
	r.Flags = []Flag{FlagWrongName, FlagMissingJSON}
	assert.Equal(t, "Wrong Name, Missing JSON", r.Health())
	assert.True(t, r.HasAny(FlagRegister, FlagMissingJSON))
	assert.False(t, r.Has(FlagRegister))
}
