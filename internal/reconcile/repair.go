package reconcile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/filex"
	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/sidecar"
)

// Status is the result of one repair step.
type Status string

const (
	Applied Status = "applied"
	Skipped Status = "skipped"
	Failed  Status = "failed"
)

// Outcome records what happened to one repair step.
type Outcome struct {
	Step   Step   `json:"step" yaml:"step"`
	Status Status `json:"status" yaml:"status"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Err    error  `json:"-" yaml:"-"`
}

// Result is the outcome of repairing one entity.
type Result struct {
	Report    Report    `json:"report" yaml:"report"`
	FinalPath string    `json:"final_path" yaml:"final_path"`
	Outcomes  []Outcome `json:"outcomes" yaml:"outcomes"`
	Aborted   bool      `json:"aborted" yaml:"aborted"`
}

// Err joins the errors of every failed step.
func (res *Result) Err() error {
	var errs []error
	for _, o := range res.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Step, o.Err))
		}
	}
	return errors.Join(errs...)
}

func (res *Result) add(step Step, status Status, detail string, err error) {
	res.Outcomes = append(res.Outcomes, Outcome{Step: step, Status: status, Detail: detail, Err: err})
}

// Flags whose repair rewrites the sidecar and marker.
var sidecarFlags = []Flag{
	FlagWrongName, FlagDBNeedsUpdate, FlagRegister,
	FlagJSONPath, FlagJSONCode, FlagJSONCorrupt, FlagMissingJSON, FlagMissingIDTag,
}

// RepairAll repairs every drifted report in order.
func (r *Reconciler) RepairAll(ctx context.Context, reports []Report, c Confirmer) []Result {
	var out []Result
	for _, rep := range reports {
		if rep.Healthy() {
			continue
		}
		out = append(out, r.Repair(ctx, rep, c))
	}
	return out
}

// Repair applies the steps rep's flags call for:
// rename, DB code update or registration, id simplification, missing
// folders, sidecar and marker, DB path.
func (r *Reconciler) Repair(ctx context.Context, rep Report, c Confirmer) Result {
	e := r.entities(rep.Kind)
	log := r.log.With("folder", rep.Folder, "target", rep.Target)
	res := Result{Report: rep, FinalPath: rep.Path}
	id := rep.ID
	hasRow := rep.DBStatus == DBGood

	if rep.Has(FlagWrongName) {
		dst := filepath.Join(filepath.Dir(rep.Path), rep.Target)
		if !c.Confirm(ctx, StepRename, fmt.Sprintf("Rename folder '%s' to '%s'?", rep.Folder, rep.Target)) {
			res.add(StepRename, Skipped, "declined", nil)
			res.Aborted = true
			log.Info(ctx, "rename declined, entity left as is")
			return res
		}
		if err := filex.Rename(rep.Path, dst); err != nil {
			res.add(StepRename, Failed, "", err)
			res.Aborted = true
			log.Error(ctx, "rename failed", "error", err)
			return res
		}
		res.FinalPath = dst
		res.add(StepRename, Applied, dst, nil)
		log.Info(ctx, "folder renamed", "path", dst)
	}

	rel := r.resolver.Relative(res.FinalPath).Path

	switch {
	case rep.Has(FlagDBNeedsUpdate):
		prompt := fmt.Sprintf("DB lists '%s'. Replace with '%s'?", rep.Folder, rep.Target)
		if c.Confirm(ctx, StepUpdateCode, prompt) {
			if err := e.rename(ctx, rep.Folder, rep.Target); err != nil {
				res.add(StepUpdateCode, Failed, "", err)
				log.Error(ctx, "db code update failed", "error", err)
			} else {
				hasRow = true
				res.add(StepUpdateCode, Applied, "", nil)
				log.Info(ctx, "db code updated")
			}
		} else {
			res.add(StepUpdateCode, Skipped, "declined", nil)
		}
	case rep.Has(FlagRegister):
		if c.Confirm(ctx, StepRegister, fmt.Sprintf("Register '%s' in DB?", rep.Target)) {
			newID, err := e.register(ctx, rep.Target, rel)
			switch {
			case err == nil:
				id, hasRow = newID, true
				res.add(StepRegister, Applied, "", nil)
				log.Info(ctx, "registered in db", "id", newID)
			case errors.Is(err, common.ErrorAlreadyExists):
				existing, lerr := lookup(ctx, e, rep.Target)
				switch {
				case lerr != nil:
					res.add(StepRegister, Failed, "", lerr)
					log.Error(ctx, "register failed", "error", lerr)
				case existing == nil:
					// No row under this name: the id is taken by another record.
					ferr := &common.OpError{Kind: common.ErrorAlreadyExists, Op: "register", Path: rep.Target,
						Err: fmt.Errorf("id %s belongs to another record", rep.Target)}
					res.add(StepRegister, Failed, "", ferr)
					log.Error(ctx, "register failed", "error", ferr)
				default:
					log.Warn(ctx, "already registered, continuing")
					id, hasRow = existing.ID, true
					res.add(StepRegister, Applied, "already registered", nil)
				}
			default:
				res.add(StepRegister, Failed, "", err)
				log.Error(ctx, "register failed", "error", err)
			}
		} else {
			res.add(StepRegister, Skipped, "declined", nil)
		}
	}

	simplified := false
	if rep.Has(FlagSimplifyID) {
		if c.Confirm(ctx, StepSimplifyID, fmt.Sprintf("Replace id '%s' with '%s'?", id, rep.Target)) {
			if err := e.simplify(ctx, rep.Target); err != nil {
				res.add(StepSimplifyID, Failed, "", err)
				log.Error(ctx, "simplify id failed", "error", err)
			} else {
				// Rows elsewhere that still hold the old id are not rewritten.
				log.Warn(ctx, "id replaced; references to the old id are not updated", "old_id", id)
				id = rep.Target
				simplified = true
				res.add(StepSimplifyID, Applied, "", nil)
			}
		} else {
			res.add(StepSimplifyID, Skipped, "declined", nil)
		}
	}

	if rep.Has(FlagMissingFolders) {
		if c.Confirm(ctx, StepFolders, fmt.Sprintf("Create missing folders in '%s'?", rel)) {
			if err := layout.EnsureTree(res.FinalPath, rep.Kind); err != nil {
				res.add(StepFolders, Failed, "", err)
				res.Aborted = true
				log.Error(ctx, "folder creation failed", "error", err)
				return res
			}
			res.add(StepFolders, Applied, "", nil)
		} else {
			res.add(StepFolders, Skipped, "declined", nil)
		}
	}

	if rep.HasAny(sidecarFlags...) || simplified || id != rep.ID {
		prompt := fmt.Sprintf("Write tags for '%s' (id %s, path %s)?", rep.Target, id, rel)
		if c.Confirm(ctx, StepSidecar, prompt) {
			_, err := r.sidecars.Write(ctx, res.FinalPath, sidecar.Tag{
				Code:         rep.Target,
				ID:           id,
				OriginalPath: rel,
				User:         r.user,
				Extra:        map[string]any{"type": string(rep.Kind), "note": "Fixed/Migrated"},
			})
			if err != nil {
				res.add(StepSidecar, Failed, "", err)
				log.Error(ctx, "sidecar write failed", "error", err)
			} else {
				res.add(StepSidecar, Applied, "", nil)
			}
		} else {
			res.add(StepSidecar, Skipped, "declined", nil)
		}
	}

	if hasRow && (res.FinalPath != rep.Path || rep.HasAny(sidecarFlags...)) {
		if c.Confirm(ctx, StepPath, fmt.Sprintf("Set DB path of '%s' to '%s'?", rep.Target, rel)) {
			if err := e.updatePath(ctx, rep.Target, rel); err != nil {
				res.add(StepPath, Failed, "", err)
				log.Error(ctx, "db path update failed", "error", err)
			} else {
				res.add(StepPath, Applied, rel, nil)
			}
		} else {
			res.add(StepPath, Skipped, "declined", nil)
		}
	}

	return res
}
