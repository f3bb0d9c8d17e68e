// Package local mirrors objects into a directory tree.
package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/filex"
)

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", &common.OpError{Kind: common.ErrInvalidInput, Op: "mirror", Path: key, Err: errors.New("key escapes the mirror")}
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *Store) Location(key string) string {
	p, err := s.path(key)
	if err != nil {
		return ""
	}
	return p
}

// Put writes r to <dir>/<key> through a temporary file, so readers never
// see a partial object.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := filex.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".mirror-*")
	if err != nil {
		return common.FS("create", dst, err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return common.FS("write", dst, err)
	}
	if size >= 0 && n != size {
		return common.FS("write", dst, io.ErrShortWrite)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return common.FS("rename", dst, err)
	}
	return nil
}

// Delete removes <dir>/<key>. A missing object is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return common.FS("remove", p, err)
	}
	return nil
}
