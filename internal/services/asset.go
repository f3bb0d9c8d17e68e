package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/filex"
	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/models"
	"github.com/dmitrijs2005/orion/internal/sidecar"
	"github.com/google/uuid"
)

type AssetInput struct {
	Name          string
	Type          string
	Description   string
	ThumbnailPath string
}

// AssetUpdate lists the fields to change; nil fields are left alone.
type AssetUpdate struct {
	Name          *string
	Type          *string
	Description   *string
	ThumbnailPath *string
}

// AssetService manages assets and their links to shots. Assets are looked
// up by name.
type AssetService interface {
	Create(ctx context.Context, in AssetInput) (*models.Asset, error)
	Update(ctx context.Context, name string, upd AssetUpdate) (*models.Asset, error)
	// Delete removes the row and its links. The folder is removed only
	// when purge is set.
	Delete(ctx context.Context, name string, purge bool) error
	Get(ctx context.Context, name string) (*models.Asset, error)
	List(ctx context.Context, assetType string) ([]models.Asset, error)

	Link(ctx context.Context, shotCode, assetName string) error
	Unlink(ctx context.Context, shotCode, assetName string) error
	ShotAssets(ctx context.Context, shotCode string) ([]models.Asset, error)
}

type assetService struct {
	d Deps
}

func NewAssetService(d Deps) AssetService {
	return &assetService{d: d.withDefaults()}
}

func (s *assetService) dirOf(a *models.Asset) string {
	if a.Path != "" {
		return s.d.Resolver.Absolute(a.Path)
	}
	return layout.EntityDir(s.d.Resolver.Root, layout.KindAsset, a.Name)
}

func (s *assetService) writeSidecar(ctx context.Context, dir string, a *models.Asset) error {
	_, err := s.d.Sidecars.Write(ctx, dir, sidecar.Tag{
		Code:         a.Name,
		ID:           a.ID,
		OriginalPath: a.Path,
		User:         s.d.User,
		Extra: map[string]any{
			"type":        string(layout.KindAsset),
			"asset_type":  a.Type,
			"description": a.Description,
		},
	})
	return err
}

func (s *assetService) Create(ctx context.Context, in AssetInput) (*models.Asset, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	log := s.d.Log.With("asset", in.Name)
	dir := layout.EntityDir(s.d.Resolver.Root, layout.KindAsset, in.Name)

	a := &models.Asset{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Type:          in.Type,
		Path:          s.d.Resolver.Relative(dir).Path,
		Description:   in.Description,
		ThumbnailPath: in.ThumbnailPath,
		UserAssigned:  s.d.User,
	}
	if err := s.d.Repos.Assets(s.d.DB).Create(ctx, a); err != nil {
		return nil, fmt.Errorf("asset %s: %w", in.Name, err)
	}

	var errs []error
	if err := layout.EnsureTree(dir, layout.KindAsset); err != nil {
		log.Error(ctx, "folder creation failed", "error", err)
		return a, err
	}
	if err := s.writeSidecar(ctx, dir, a); err != nil {
		log.Error(ctx, "sidecar write failed", "error", err)
		errs = append(errs, err)
	}
	log.Info(ctx, "asset created", "id", a.ID, "path", a.Path)
	return a, errors.Join(errs...)
}

func (s *assetService) Update(ctx context.Context, name string, upd AssetUpdate) (*models.Asset, error) {
	repo := s.d.Repos.Assets(s.d.DB)
	a, err := repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", name, err)
	}
	log := s.d.Log.With("asset", name)
	dir := s.dirOf(a)
	oldDir := dir

	renamed := false
	if upd.Name != nil && *upd.Name != a.Name {
		newName := *upd.Name
		if err := validateName(newName); err != nil {
			return nil, err
		}
		dst := filepath.Join(filepath.Dir(dir), newName)
		if filex.Exists(dst) {
			return nil, &common.OpError{Kind: common.ErrDestinationExists, Op: "rename asset", Path: dst}
		}
		if filex.IsDir(dir) {
			if err := filex.Rename(dir, dst); err != nil {
				return nil, err
			}
			renamed = true
		}
		a.Name = newName
		dir = dst
	}
	if upd.Type != nil {
		a.Type = *upd.Type
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	if upd.ThumbnailPath != nil {
		a.ThumbnailPath = *upd.ThumbnailPath
	}
	a.Path = s.d.Resolver.Relative(dir).Path

	if err := repo.Update(ctx, a); err != nil {
		if renamed {
			if rerr := filex.Rename(dir, oldDir); rerr != nil {
				log.Error(ctx, "could not restore folder after failed update", "error", rerr)
			}
		}
		return nil, fmt.Errorf("asset %s: %w", name, err)
	}

	if filex.IsDir(dir) {
		if err := s.writeSidecar(ctx, dir, a); err != nil {
			log.Error(ctx, "sidecar write failed", "error", err)
			return a, err
		}
	}
	return a, nil
}

func (s *assetService) Delete(ctx context.Context, name string, purge bool) error {
	repo := s.d.Repos.Assets(s.d.DB)
	a, err := repo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("asset %s: %w", name, err)
	}
	if err := repo.Delete(ctx, a.ID); err != nil {
		return err
	}
	if purge {
		dir := s.dirOf(a)
		if err := os.RemoveAll(dir); err != nil {
			return common.FS("remove", dir, err)
		}
	}
	s.d.Log.Info(ctx, "asset deleted", "asset", name, "purged", purge)
	return nil
}

func (s *assetService) Get(ctx context.Context, name string) (*models.Asset, error) {
	a, err := s.d.Repos.Assets(s.d.DB).GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", name, err)
	}
	return a, nil
}

func (s *assetService) List(ctx context.Context, assetType string) ([]models.Asset, error) {
	return s.d.Repos.Assets(s.d.DB).List(ctx, assetType)
}

// Link attaches an asset to an existing shot.
func (s *assetService) Link(ctx context.Context, shotCode, assetName string) error {
	if _, err := s.d.Repos.Shots(s.d.DB).GetByCode(ctx, shotCode); err != nil {
		return fmt.Errorf("shot %s: %w", shotCode, err)
	}
	a, err := s.Get(ctx, assetName)
	if err != nil {
		return err
	}
	return s.d.Repos.Assets(s.d.DB).Link(ctx, shotCode, a.ID)
}

func (s *assetService) Unlink(ctx context.Context, shotCode, assetName string) error {
	a, err := s.Get(ctx, assetName)
	if err != nil {
		return err
	}
	if err := s.d.Repos.Assets(s.d.DB).Unlink(ctx, shotCode, a.ID); err != nil {
		return fmt.Errorf("link %s/%s: %w", shotCode, assetName, err)
	}
	return nil
}

func (s *assetService) ShotAssets(ctx context.Context, shotCode string) ([]models.Asset, error) {
	return s.d.Repos.Assets(s.d.DB).ShotAssets(ctx, shotCode)
}
