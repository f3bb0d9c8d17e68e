package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/dbx"
	"github.com/dmitrijs2005/orion/internal/filex"
	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/models"
	"github.com/dmitrijs2005/orion/internal/shotcode"
	"github.com/dmitrijs2005/orion/internal/sidecar"
)

// ShotInput describes a shot to create. When Code is empty and Number is
// zero the next free code is allocated.
type ShotInput struct {
	Code        string
	Number      int
	FrameStart  int
	FrameEnd    int
	Description string
}

// ShotUpdate lists the fields to change; nil fields are left alone.
type ShotUpdate struct {
	Code            *string
	FrameStart      *int
	FrameEnd        *int
	Description     *string
	DiscordThreadID *string
	ThumbnailPath   *string
}

// ShotService manages shots.
//
// Create, Update and Delete run their database and filesystem steps in
// sequence. A failed step is logged and the remaining steps still run; the
// returned error joins every failure.
type ShotService interface {
	Create(ctx context.Context, in ShotInput) (*models.Shot, error)
	Update(ctx context.Context, code string, upd ShotUpdate) (*models.Shot, error)
	Delete(ctx context.Context, code string) error
	Get(ctx context.Context, code string) (*models.Shot, error)
	List(ctx context.Context) ([]models.Shot, error)
	SetDiscordThread(ctx context.Context, code, threadID string) error
}

type shotService struct {
	d Deps
}

func NewShotService(d Deps) ShotService {
	return &shotService{d: d.withDefaults()}
}

func (s *shotService) shotsRoot() string {
	return filepath.Join(s.d.Resolver.Root, layout.ShotsDir)
}

// dirOf returns the folder of a shot, preferring the stored relative path.
func (s *shotService) dirOf(shot *models.Shot) string {
	if shot.ShotPath != "" {
		return s.d.Resolver.Absolute(shot.ShotPath)
	}
	return layout.EntityDir(s.d.Resolver.Root, layout.KindShot, shot.Code)
}

func (s *shotService) resolveCode(in ShotInput) (string, error) {
	switch {
	case in.Code != "":
		return in.Code, validateName(in.Code)
	case in.Number > 0:
		return shotcode.Format(in.Number), nil
	case in.Number < 0:
		return "", &common.OpError{Kind: common.ErrInvalidInput, Op: "create shot", Err: fmt.Errorf("negative shot number %d", in.Number)}
	}
	return shotcode.Next(s.shotsRoot())
}

func (s *shotService) Create(ctx context.Context, in ShotInput) (*models.Shot, error) {
	code, err := s.resolveCode(in)
	if err != nil {
		return nil, err
	}
	log := s.d.Log.With("code", code)

	dir := layout.EntityDir(s.d.Resolver.Root, layout.KindShot, code)
	rel := s.d.Resolver.Relative(dir).Path

	shot := &models.Shot{
		ID:           code,
		Code:         code,
		FrameStart:   in.FrameStart,
		FrameEnd:     in.FrameEnd,
		UserAssigned: s.d.User,
		ShotPath:     rel,
		Description:  in.Description,
	}
	if shot.FrameStart == 0 {
		shot.FrameStart = models.DefaultFrameStart
	}
	if shot.FrameEnd == 0 {
		shot.FrameEnd = models.DefaultFrameEnd
	}
	if shot.FrameEnd < shot.FrameStart {
		return nil, &common.OpError{Kind: common.ErrInvalidInput, Op: "create shot", Path: code,
			Err: fmt.Errorf("frame end %d before start %d", shot.FrameEnd, shot.FrameStart)}
	}

	var errs []error
	created := true
	repo := s.d.Repos.Shots(s.d.DB)
	if err := repo.Create(ctx, shot); err != nil {
		created = false
		if errors.Is(err, common.ErrorAlreadyExists) {
			existing, gerr := repo.GetByCode(ctx, code)
			switch {
			case gerr == nil:
				log.Warn(ctx, "shot already in database, creating folders only")
				shot = existing
			case errors.Is(gerr, common.ErrorNotFound):
				// The conflict is on the id, held by a shot under another code.
				return nil, &common.OpError{Kind: common.ErrorAlreadyExists, Op: "create shot", Path: code,
					Err: fmt.Errorf("id %s belongs to another shot", code)}
			default:
				return nil, gerr
			}
		} else {
			log.Error(ctx, "database insert failed", "error", err)
			errs = append(errs, err)
		}
	}

	if err := layout.EnsureTree(dir, layout.KindShot); err != nil {
		log.Error(ctx, "folder creation failed", "error", err)
		return shot, errors.Join(append(errs, err)...)
	}

	if _, err := s.d.Sidecars.Write(ctx, dir, sidecar.Tag{
		Code:         code,
		ID:           shot.ID,
		OriginalPath: rel,
		User:         s.d.User,
		Extra:        map[string]any{"type": string(layout.KindShot), "description": shot.Description},
	}); err != nil {
		log.Error(ctx, "sidecar write failed", "error", err)
		errs = append(errs, err)
	}

	if !created && shot.ShotPath != rel {
		if err := repo.UpdatePath(ctx, code, rel); err != nil {
			log.Error(ctx, "path update failed", "error", err)
			errs = append(errs, err)
		}
		shot.ShotPath = rel
	}

	if created {
		if err := s.d.Notifier.Notify(ctx, fmt.Sprintf("Shot %s created", code)); err != nil {
			log.Warn(ctx, "notification failed", "error", err)
		}
		log.Info(ctx, "shot created", "path", rel)
	}
	return shot, errors.Join(errs...)
}

func (s *shotService) Update(ctx context.Context, code string, upd ShotUpdate) (*models.Shot, error) {
	repo := s.d.Repos.Shots(s.d.DB)
	shot, err := repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("shot %s: %w", code, err)
	}
	log := s.d.Log.With("code", code)
	dir := s.dirOf(shot)

	if upd.Code != nil && *upd.Code != shot.Code {
		newCode := *upd.Code
		if err := validateName(newCode); err != nil {
			return nil, err
		}
		dst := filepath.Join(filepath.Dir(dir), newCode)
		if filex.Exists(dst) {
			return nil, &common.OpError{Kind: common.ErrDestinationExists, Op: "rename shot", Path: dst}
		}
		moved := false
		if filex.IsDir(dir) {
			if err := filex.Rename(dir, dst); err != nil {
				return nil, err
			}
			moved = true
		}
		err := dbx.WithTx(ctx, s.d.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return s.d.Repos.Shots(tx).RenameCode(ctx, shot.Code, newCode)
		})
		if err != nil {
			if moved {
				if rerr := filex.Rename(dst, dir); rerr != nil {
					log.Error(ctx, "could not restore folder after failed rename", "error", rerr)
				}
			}
			return nil, err
		}
		log.Info(ctx, "shot renamed", "new_code", newCode)
		if shot.ID == shot.Code {
			shot.ID = newCode
		}
		shot.Code = newCode
		dir = dst
	}

	if upd.FrameStart != nil {
		shot.FrameStart = *upd.FrameStart
	}
	if upd.FrameEnd != nil {
		shot.FrameEnd = *upd.FrameEnd
	}
	if shot.FrameEnd < shot.FrameStart {
		return nil, &common.OpError{Kind: common.ErrInvalidInput, Op: "update shot", Path: shot.Code,
			Err: fmt.Errorf("frame end %d before start %d", shot.FrameEnd, shot.FrameStart)}
	}
	if upd.Description != nil {
		shot.Description = *upd.Description
	}
	if upd.DiscordThreadID != nil {
		shot.DiscordThreadID = *upd.DiscordThreadID
	}
	if upd.ThumbnailPath != nil {
		shot.ThumbnailPath = *upd.ThumbnailPath
	}
	shot.ShotPath = s.d.Resolver.Relative(dir).Path

	var errs []error
	if err := repo.Update(ctx, shot); err != nil {
		log.Error(ctx, "database update failed", "error", err)
		errs = append(errs, err)
	}

	if filex.IsDir(dir) {
		if _, err := s.d.Sidecars.Write(ctx, dir, sidecar.Tag{
			Code:         shot.Code,
			ID:           shot.ID,
			OriginalPath: shot.ShotPath,
			User:         s.d.User,
			Extra:        map[string]any{"type": string(layout.KindShot), "description": shot.Description},
		}); err != nil {
			log.Error(ctx, "sidecar write failed", "error", err)
			errs = append(errs, err)
		}
	}
	return shot, errors.Join(errs...)
}

// Delete removes the shot folder, its asset links and its row.
func (s *shotService) Delete(ctx context.Context, code string) error {
	repo := s.d.Repos.Shots(s.d.DB)
	shot, err := repo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("shot %s: %w", code, err)
	}

	var errs []error
	dir := s.dirOf(shot)
	if err := os.RemoveAll(dir); err != nil {
		s.d.Log.Error(ctx, "folder removal failed", "dir", dir, "error", err)
		errs = append(errs, common.FS("remove", dir, err))
	}
	if err := repo.Delete(ctx, code); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		s.d.Log.Info(ctx, "shot deleted", "code", code)
	}
	return errors.Join(errs...)
}

func (s *shotService) Get(ctx context.Context, code string) (*models.Shot, error) {
	shot, err := s.d.Repos.Shots(s.d.DB).GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("shot %s: %w", code, err)
	}
	return shot, nil
}

func (s *shotService) List(ctx context.Context) ([]models.Shot, error) {
	return s.d.Repos.Shots(s.d.DB).List(ctx)
}

func (s *shotService) SetDiscordThread(ctx context.Context, code, threadID string) error {
	if err := s.d.Repos.Shots(s.d.DB).SetDiscordThread(ctx, code, threadID); err != nil {
		return fmt.Errorf("shot %s: %w", code, err)
	}
	return nil
}
