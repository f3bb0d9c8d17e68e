package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/orion/internal/launch"
	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/publish"
)

// abs resolves a path typed by the user: project-relative paths are joined
// onto the root, absolute ones are taken as is.
func (a *App) abs(p string) string {
	if filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return filepath.Clean(p)
	}
	if strings.HasPrefix(p, "."+string(filepath.Separator)) || strings.HasPrefix(p, "./") {
		if wd, err := filepath.Abs(p); err == nil {
			return wd
		}
	}
	return a.resolver.Absolute(filepath.ToSlash(p))
}

func (a *App) cmdTask(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usageErr("task <entity-dir> <dept> <task>")
	}
	dir, err := publish.CreateTask(a.abs(args[0]), args[1], args[2])
	if err != nil {
		return err
	}
	a.printf("Task ready at %s\n", a.resolver.Relative(dir).Path)
	return nil
}

func (a *App) cmdExports(ctx context.Context, args []string) error {
	fs := a.newFlags("exports")
	format := fs.String("format", "table", "output format")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return usageErr("exports <task-dir>")
	}
	task := a.abs(pos[0])
	items, err := publish.ListExports(task)
	if err != nil {
		return err
	}
	if err := a.connect(ctx, false); err != nil {
		return err
	}
	history, err := a.publisher.History(ctx, task)
	if err != nil {
		return err
	}
	return renderExports(a.out, Format(*format), items, history)
}

func (a *App) cmdPublish(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("publish <file>")
	}
	if err := a.connect(ctx, false); err != nil {
		return err
	}
	rec, err := a.publisher.Publish(ctx, a.abs(args[0]))
	if rec != nil {
		a.printf("Published %s\n  digest %s\n", rec.PublishedPath, rec.Digest)
		if rec.MirrorKey != "" {
			a.printf("  mirror %s\n", rec.MirrorKey)
		}
	}
	return err
}

func (a *App) cmdUnpublish(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("unpublish <file>")
	}
	if err := a.connect(ctx, false); err != nil {
		return err
	}
	dst, err := a.publisher.Unpublish(ctx, a.abs(args[0]))
	if dst != "" {
		a.printf("Moved to %s\n", a.resolver.Relative(dst).Path)
	}
	return err
}

func (a *App) cmdVersion(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usageErr("version <dir> <base> <ext>")
	}
	name, err := publish.NextVersion(a.abs(args[0]), args[1], args[2])
	if err != nil {
		return err
	}
	a.printf("%s\n", name)
	return nil
}

func (a *App) cmdRelPath(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("relpath <path>")
	}
	res := a.resolver.Relative(args[0])
	if !res.Relative {
		a.printf("%s (not under a known project root)\n", res.Path)
		return nil
	}
	a.printf("%s\n", res.Path)
	for _, v := range a.resolver.Variants(res.Path) {
		a.printf("  %s\n", v)
	}
	return nil
}

func (a *App) cmdLaunch(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return usageErr("launch <software> [shot] [file]")
	}
	lc := launch.Context{Root: a.cfg.ProjectRoot}
	if len(args) > 1 {
		if err := a.connect(ctx, false); err != nil {
			return err
		}
		shot, err := a.shots.Get(ctx, args[1])
		if err != nil {
			return err
		}
		lc.Shot = shot
		lc.ShotDir = layout.EntityDir(a.cfg.ProjectRoot, layout.KindShot, shot.Code)
		if shot.ShotPath != "" {
			lc.ShotDir = a.resolver.Absolute(shot.ShotPath)
		}
	}
	if len(args) > 2 {
		lc.File = a.abs(args[2])
	}
	if _, err := a.launcher.Launch(ctx, args[0], lc); err != nil {
		return err
	}
	a.printf("Started %s\n", args[0])
	return nil
}

func (a *App) cmdNotify(ctx context.Context, args []string) error {
	msg := joinArgs(args)
	if msg == "" {
		return usageErr("notify <message>")
	}
	if err := a.notifier.Notify(ctx, msg); err != nil {
		return err
	}
	a.printf("Sent\n")
	return nil
}
