// Package filex holds the small filesystem helpers shared by layout,
// sidecar and publish code. Every error is a *common.OpError of kind
// common.ErrFilesystem.
package filex

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/orion/internal/common"
)

// DirPerm is used for every folder orion creates.
const DirPerm = 0o775

// EnsureDir creates dir and any missing parents. It fails when a file with
// the same name is in the way.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return common.FS("mkdir", dir, err)
	}
	return nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// Exists reports whether anything exists at path. Lstat is used so that a
// dangling symlink still counts.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Rename moves src to dst and refuses to replace an existing dst.
func Rename(src, dst string) error {
	if Exists(dst) {
		return &common.OpError{Kind: common.ErrDestinationExists, Op: "rename", Path: dst}
	}
	if err := os.Rename(src, dst); err != nil {
		return common.FS("rename", src, err)
	}
	return nil
}

// CopyFile copies src to dst, creating dst's folder, and returns the number
// of bytes written. An existing dst is overwritten.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, common.FS("open", src, err)
	}
	defer in.Close()

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return 0, err
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, common.FS("create", dst, err)
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return 0, common.FS("copy", dst, err)
	}
	return n, nil
}

// Move renames src to dst, falling back to copy and delete when the two
// live on different volumes.
func Move(src, dst string) error {
	if Exists(dst) {
		return &common.OpError{Kind: common.ErrDestinationExists, Op: "move", Path: dst}
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return common.FS("move", src, err)
	}
	if _, cerr := CopyFile(src, dst); cerr != nil {
		return cerr
	}
	if rerr := os.Remove(src); rerr != nil {
		return common.FS("remove", src, rerr)
	}
	return nil
}
