// Package layout describes the project folder convention: the top-level
// folders of a project and the department/stage subfolders created inside
// every shot and asset.
package layout

import (
	"path/filepath"

	"github.com/dmitrijs2005/orion/internal/filex"
)

// Top-level project folders.
const (
	AssetsDir = "30_assets"
	ShotsDir  = "40_shots"
	ConfigDir = "60_config"
)

// ProjectDirs are created by EnsureProject.
var ProjectDirs = []string{
	AssetsDir,
	ShotsDir,
	filepath.ToSlash(filepath.Join(ConfigDir, "data")),
}

// ShotSubfolders is the fixed manifest of folders inside a shot.
var ShotSubfolders = []string{
	"ANIM/PUBLISH",
	"ANIM/WORK",
	"COMP/Apps/Nuke/Scripts",
	"COMP/Apps/Hiero/Templates",
	"COMP/Apps/Photoshop",
	"COMP/Apps/Syntheyes",
	"COMP/Apps/Mocha_Pro",
	"COMP/Plates/Source",
	"COMP/Plates/Comp",
	"COMP/Prep/Denoise",
	"COMP/Review/IMG",
	"COMP/Review/VID",
	"COMP/Tools",
	"FX/PUBLISH",
	"FX/WORK",
	"LIGHTING/WORK",
	"LIGHTING/PUBLISH",
	"ROTO/WORK",
	"ROTO/PUBLISH",
	"MATCHMOVE/WORK",
	"MATCHMOVE/PUBLISH",
	"CAMERA/WORK",
	"CAMERA/PUBLISH",
	"3D_RENDERS",
	"2D_RENDERS",
}

// AssetSubfolders is the fixed manifest of folders inside an asset.
var AssetSubfolders = []string{
	"MODEL/WORK",
	"MODEL/PUBLISH",
	"RIG/WORK",
	"RIG/PUBLISH",
	"LOOKDEV/WORK",
	"LOOKDEV/PUBLISH",
	"TEXTURE/WORK",
	"TEXTURE/PUBLISH",
}

// Kind selects a manifest.
type Kind string

const (
	KindShot  Kind = "shot"
	KindAsset Kind = "asset"
)

// Manifest returns the subfolder list for kind.
func Manifest(kind Kind) []string {
	if kind == KindAsset {
		return AssetSubfolders
	}
	return ShotSubfolders
}

// Parent returns the top-level folder holding entities of kind.
func Parent(kind Kind) string {
	if kind == KindAsset {
		return AssetsDir
	}
	return ShotsDir
}

// EntityDir returns <root>/<parent>/<name>.
func EntityDir(root string, kind Kind, name string) string {
	return filepath.Join(root, Parent(kind), name)
}

// EnsureTree creates dir and every manifest folder under it. Existing
// folders are left alone, so the call can be repeated to fill gaps.
func EnsureTree(dir string, kind Kind) error {
	if err := filex.EnsureDir(dir); err != nil {
		return err
	}
	for _, sub := range Manifest(kind) {
		if err := filex.EnsureDir(filepath.Join(dir, filepath.FromSlash(sub))); err != nil {
			return err
		}
	}
	return nil
}

// MissingSubfolders lists the manifest folders absent from dir, in
// manifest order.
func MissingSubfolders(dir string, kind Kind) []string {
	var missing []string
	for _, sub := range Manifest(kind) {
		if !filex.IsDir(filepath.Join(dir, filepath.FromSlash(sub))) {
			missing = append(missing, sub)
		}
	}
	return missing
}

// EnsureProject creates the top-level project folders under root.
func EnsureProject(root string) error {
	for _, d := range ProjectDirs {
		if err := filex.EnsureDir(filepath.Join(root, filepath.FromSlash(d))); err != nil {
			return err
		}
	}
	return nil
}
