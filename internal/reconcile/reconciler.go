package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/logging"
	"github.com/dmitrijs2005/orion/internal/paths"
	"github.com/dmitrijs2005/orion/internal/sidecar"
	"github.com/dmitrijs2005/orion/internal/store"
)

// Options wires a Reconciler.
type Options struct {
	DB       *sql.DB
	Repos    store.RepositoryManager
	Resolver *paths.Resolver
	Sidecars *sidecar.Writer
	Log      logging.Logger
	// User is recorded as created_by in sidecars written from scratch.
	User string
}

// Reconciler compares entity folders with their database rows and sidecars.
type Reconciler struct {
	resolver *paths.Resolver
	sidecars *sidecar.Writer
	log      logging.Logger
	user     string
	shots    entities
	assets   entities
}

// New builds a Reconciler. A nil logger or sidecar writer gets a default.
func New(o Options) *Reconciler {
	log := o.Log
	if log == nil {
		log = logging.Nop()
	}
	sc := o.Sidecars
	if sc == nil {
		sc = sidecar.NewWriter(log)
	}
	return &Reconciler{
		resolver: o.Resolver,
		sidecars: sc,
		log:      log.With("component", "reconcile"),
		user:     o.User,
		shots:    &shotEntities{db: o.DB, repos: o.Repos},
		assets:   &assetEntities{db: o.DB, repos: o.Repos},
	}
}

func (r *Reconciler) entities(kind layout.Kind) entities {
	if kind == layout.KindAsset {
		return r.assets
	}
	return r.shots
}

// Scan analyzes every entity folder under the kind's top-level folder in
// sorted order. Non-directories and folders named "old" are skipped. A
// folder that cannot be analyzed is logged and left out of the result;
// those errors are joined into the returned error.
func (r *Reconciler) Scan(ctx context.Context, kind layout.Kind) ([]Report, error) {
	parent := filepath.Join(r.resolver.Root, layout.Parent(kind))
	dirents, err := os.ReadDir(parent)
	if err != nil {
		return nil, common.FS("scan", parent, err)
	}

	var (
		reports []Report
		errs    []error
	)
	for _, d := range dirents {
		if !d.IsDir() || strings.EqualFold(d.Name(), "old") {
			continue
		}
		rep, err := r.Analyze(ctx, kind, filepath.Join(parent, d.Name()))
		if err != nil {
			r.log.Error(ctx, "analyze failed", "folder", d.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		reports = append(reports, rep)
	}
	return reports, errors.Join(errs...)
}

// Analyze checks one entity folder.
func (r *Reconciler) Analyze(ctx context.Context, kind layout.Kind, dir string) (Report, error) {
	e := r.entities(kind)
	folder := filepath.Base(dir)
	target := e.target(folder)

	rep := Report{
		Kind:     kind,
		Folder:   folder,
		Path:     dir,
		Target:   target,
		RelPath:  r.resolver.Relative(dir).Path,
		ID:       target,
		IDStatus: IDUnknown,
	}

	if folder != target {
		rep.Flags = append(rep.Flags, FlagWrongName)
	}

	current, err := lookup(ctx, e, target)
	if err != nil {
		return rep, fmt.Errorf("lookup %s: %w", target, err)
	}
	switch {
	case current != nil:
		rep.DBStatus = DBGood
	case folder != target:
		current, err = lookup(ctx, e, folder)
		if err != nil {
			return rep, fmt.Errorf("lookup %s: %w", folder, err)
		}
	}
	switch {
	case rep.DBStatus == DBGood:
	case current != nil:
		rep.DBStatus = DBOldName
		rep.Flags = append(rep.Flags, FlagDBNeedsUpdate)
	default:
		rep.DBStatus = DBMissing
		rep.Flags = append(rep.Flags, FlagRegister)
	}

	simplify := false
	if current != nil {
		rep.ID = current.ID
		if kind == layout.KindShot {
			rep.IDStatus = IDSimple
			if current.Legacy {
				rep.IDStatus = IDComplex
				simplify = true
			}
		}
	}

	if len(layout.MissingSubfolders(dir, kind)) > 0 {
		rep.Flags = append(rep.Flags, FlagMissingFolders)
	}

	meta, err := sidecar.Read(dir)
	switch {
	case err == nil:
		if normalizeSlashes(meta.String(sidecar.KeyOriginalPath)) != rep.RelPath {
			rep.Flags = append(rep.Flags, FlagJSONPath)
		}
		if meta.String(sidecar.KeyCode) != target {
			rep.Flags = append(rep.Flags, FlagJSONCode)
		}
	case errors.Is(err, common.ErrorNotFound):
		rep.Flags = append(rep.Flags, FlagMissingJSON)
	default:
		if !errors.Is(err, common.ErrMalformedSidecar) {
			r.log.Warn(ctx, "sidecar unreadable", "dir", dir, "error", err)
		}
		rep.Flags = append(rep.Flags, FlagJSONCorrupt)
	}

	if !sidecar.HasMarker(dir, rep.ID) {
		rep.Flags = append(rep.Flags, FlagMissingIDTag)
	}

	if simplify {
		rep.Flags = append(rep.Flags, FlagSimplifyID)
	}
	return rep, nil
}

// Older tools stored Windows separators.
func normalizeSlashes(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
