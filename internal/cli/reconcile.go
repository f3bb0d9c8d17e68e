package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/reconcile"
)

// kindArg strips a leading "assets"/"shots" selector from args.
func kindArg(args []string) (layout.Kind, []string) {
	if len(args) > 0 {
		switch args[0] {
		case "assets", "asset":
			return layout.KindAsset, args[1:]
		case "shots", "shot":
			return layout.KindShot, args[1:]
		}
	}
	return layout.KindShot, args
}

func (a *App) cmdScan(ctx context.Context, args []string) error {
	fs := a.newFlags("scan")
	format := fs.String("format", "table", "output format")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	kind, rest := kindArg(pos)
	if len(rest) > 0 {
		return usageErr("scan [assets] [-format f]")
	}
	if err := a.connect(ctx, false); err != nil {
		return err
	}

	reports, scanErr := a.reconciler.Scan(ctx, kind)
	if err := renderReports(a.out, Format(*format), reports); err != nil {
		return err
	}
	return scanErr
}

func (a *App) cmdFix(ctx context.Context, args []string) error {
	kind, names := kindArg(args)
	if err := a.connect(ctx, false); err != nil {
		return err
	}

	reports, scanErr := a.reconciler.Scan(ctx, kind)
	if len(names) > 0 {
		reports = selectReports(reports, names)
		if len(reports) == 0 {
			return errors.Join(scanErr, fmt.Errorf("no %s folder matches %v", kind, names))
		}
	}

	drifted := 0
	for _, rep := range reports {
		if !rep.Healthy() {
			drifted++
		}
	}
	if drifted == 0 {
		a.printf("Everything is healthy\n")
		return scanErr
	}

	results := a.reconciler.RepairAll(ctx, reports, a.confirmer())
	renderResults(a.out, results)

	errs := []error{scanErr}
	for _, res := range results {
		if err := res.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Report.Folder, err))
		}
	}
	return errors.Join(errs...)
}

// selectReports keeps reports whose folder or target is in names.
func selectReports(reports []reconcile.Report, names []string) []reconcile.Report {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []reconcile.Report
	for _, r := range reports {
		if want[r.Folder] || want[r.Target] {
			out = append(out, r)
		}
	}
	return out
}
