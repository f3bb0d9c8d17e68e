package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/services"
	"github.com/dmitrijs2005/orion/internal/shotcode"
)

func (a *App) cmdInit(ctx context.Context, args []string) error {
	if err := layout.EnsureProject(a.cfg.ProjectRoot); err != nil {
		return err
	}
	if err := a.connect(ctx, true); err != nil {
		return err
	}
	a.printf("Project ready at %s\nDatabase: %s\n", a.cfg.ProjectRoot, a.cfg.DBPath())
	return nil
}

func (a *App) cmdNext(ctx context.Context, args []string) error {
	code, err := shotcode.Next(filepath.Join(a.cfg.ProjectRoot, layout.ShotsDir))
	if err != nil {
		return err
	}
	a.printf("%s\n", code)
	return nil
}

func (a *App) cmdShot(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErr("shot list|show|create|update|delete")
	}
	if err := a.connect(ctx, false); err != nil {
		return err
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "list", "ls":
		fs := a.newFlags("shot list")
		format := fs.String("format", "table", "output format")
		if _, err := parseInterspersed(fs, args); err != nil {
			return err
		}
		shots, err := a.shots.List(ctx)
		if err != nil {
			return err
		}
		return renderShots(a.out, Format(*format), shots)

	case "show":
		if len(args) != 1 {
			return usageErr("shot show <code>")
		}
		s, err := a.shots.Get(ctx, args[0])
		if err != nil {
			return err
		}
		linked, err := a.assets.ShotAssets(ctx, s.Code)
		if err != nil {
			return err
		}
		return renderShot(a.out, s, linked)

	case "create":
		fs := a.newFlags("shot create")
		start := fs.Int("start", 0, "first frame")
		end := fs.Int("end", 0, "last frame")
		desc := fs.String("desc", "", "description")
		pos, err := parseInterspersed(fs, args)
		if err != nil {
			return err
		}
		in := services.ShotInput{FrameStart: *start, FrameEnd: *end, Description: *desc}
		switch len(pos) {
		case 0:
		case 1:
			if n, err := strconv.Atoi(pos[0]); err == nil {
				in.Number = n
			} else {
				in.Code = pos[0]
			}
		default:
			return usageErr("shot create [n|code]")
		}
		s, err := a.shots.Create(ctx, in)
		if s != nil {
			a.printf("Shot %s at %s\n", s.Code, s.ShotPath)
		}
		return err

	case "update":
		fs := a.newFlags("shot update")
		var code, desc, thread, thumb optString
		var start, end optInt
		fs.Var(&code, "code", "new code")
		fs.Var(&start, "start", "first frame")
		fs.Var(&end, "end", "last frame")
		fs.Var(&desc, "desc", "description")
		fs.Var(&thread, "thread", "discord thread id")
		fs.Var(&thumb, "thumb", "thumbnail path")
		pos, err := parseInterspersed(fs, args)
		if err != nil {
			return err
		}
		if len(pos) != 1 {
			return usageErr("shot update <code> [flags]")
		}
		s, err := a.shots.Update(ctx, pos[0], services.ShotUpdate{
			Code:            code.ptr(),
			FrameStart:      start.ptr(),
			FrameEnd:        end.ptr(),
			Description:     desc.ptr(),
			DiscordThreadID: thread.ptr(),
			ThumbnailPath:   thumb.ptr(),
		})
		if s != nil {
			a.printf("Shot %s updated\n", s.Code)
		}
		return err

	case "delete", "rm":
		if len(args) != 1 {
			return usageErr("shot delete <code>")
		}
		if !a.confirmer().Confirm(ctx, "delete", fmt.Sprintf("Delete shot '%s' and its folder?", args[0])) {
			a.printf("Cancelled\n")
			return nil
		}
		if err := a.shots.Delete(ctx, args[0]); err != nil {
			return err
		}
		a.printf("Shot %s deleted\n", args[0])
		return nil
	}
	return usageErr("shot list|show|create|update|delete")
}

func (a *App) cmdAsset(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErr("asset list|show|create|update|delete|link|unlink")
	}
	if err := a.connect(ctx, false); err != nil {
		return err
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "list", "ls":
		fs := a.newFlags("asset list")
		format := fs.String("format", "table", "output format")
		pos, err := parseInterspersed(fs, args)
		if err != nil {
			return err
		}
		assets, err := a.assets.List(ctx, joinArgs(pos))
		if err != nil {
			return err
		}
		return renderAssets(a.out, Format(*format), assets)

	case "show":
		if len(args) != 1 {
			return usageErr("asset show <name>")
		}
		asset, err := a.assets.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return renderAsset(a.out, asset)

	case "create":
		fs := a.newFlags("asset create")
		typ := fs.String("type", "", "asset type")
		desc := fs.String("desc", "", "description")
		thumb := fs.String("thumb", "", "thumbnail path")
		pos, err := parseInterspersed(fs, args)
		if err != nil {
			return err
		}
		if len(pos) != 1 {
			return usageErr("asset create <name> [flags]")
		}
		asset, err := a.assets.Create(ctx, services.AssetInput{Name: pos[0], Type: *typ, Description: *desc, ThumbnailPath: *thumb})
		if asset != nil {
			a.printf("Asset %s (%s) at %s\n", asset.Name, asset.ID, asset.Path)
		}
		return err

	case "update":
		fs := a.newFlags("asset update")
		var name, typ, desc, thumb optString
		fs.Var(&name, "name", "new name")
		fs.Var(&typ, "type", "asset type")
		fs.Var(&desc, "desc", "description")
		fs.Var(&thumb, "thumb", "thumbnail path")
		pos, err := parseInterspersed(fs, args)
		if err != nil {
			return err
		}
		if len(pos) != 1 {
			return usageErr("asset update <name> [flags]")
		}
		asset, err := a.assets.Update(ctx, pos[0], services.AssetUpdate{
			Name: name.ptr(), Type: typ.ptr(), Description: desc.ptr(), ThumbnailPath: thumb.ptr(),
		})
		if asset != nil {
			a.printf("Asset %s updated\n", asset.Name)
		}
		return err

	case "delete", "rm":
		fs := a.newFlags("asset delete")
		purge := fs.Bool("purge", false, "remove the folder too")
		pos, err := parseInterspersed(fs, args)
		if err != nil {
			return err
		}
		if len(pos) != 1 {
			return usageErr("asset delete <name> [-purge]")
		}
		if err := a.assets.Delete(ctx, pos[0], *purge); err != nil {
			return err
		}
		a.printf("Asset %s deleted\n", pos[0])
		return nil

	case "link", "unlink":
		if len(args) != 2 {
			return usageErr("asset " + sub + " <shot> <asset>")
		}
		var err error
		if sub == "link" {
			err = a.assets.Link(ctx, args[0], args[1])
		} else {
			err = a.assets.Unlink(ctx, args[0], args[1])
		}
		if err != nil {
			return err
		}
		a.printf("%sed %s and %s\n", sub, args[0], args[1])
		return nil
	}
	return usageErr("asset list|show|create|update|delete|link|unlink")
}
