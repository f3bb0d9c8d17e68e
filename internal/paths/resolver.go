// Package paths converts between absolute paths, which differ per machine
// and mount point, and the root-relative form stored in the database and
// in sidecar files.
//
// Relative paths always use forward slashes. Roots that look like Windows
// volumes or UNC shares are compared case-insensitively.
package paths

import (
	"path/filepath"
	"strings"
)

// Resolver knows the project root, the other mount points of the same
// project and the project marker folder name.
type Resolver struct {
	Root     string
	AltRoots []string
	Marker   string
}

func NewResolver(root string, altRoots []string, marker string) *Resolver {
	return &Resolver{Root: root, AltRoots: altRoots, Marker: marker}
}

// Resolved is the result of Relative. When Relative is false, Path is the
// input unchanged and could not be placed under any known root.
type Resolved struct {
	Path     string
	Relative bool
}

func (r Resolved) String() string { return r.Path }

// Relative maps abs onto a root-relative path. It tries Root, then each
// alternate root, then the project marker segment.
func (r *Resolver) Relative(abs string) Resolved {
	if abs == "" {
		return Resolved{}
	}
	p := normalize(abs)

	for _, root := range r.roots() {
		if rel, ok := trimRoot(p, normalize(root)); ok {
			return Resolved{Path: rel, Relative: true}
		}
	}

	if rel, ok := afterMarker(p, r.Marker); ok {
		return Resolved{Path: rel, Relative: true}
	}

	return Resolved{Path: abs}
}

// Absolute joins a stored relative path onto Root. Paths that are already
// absolute are returned cleaned but otherwise unchanged.
func (r *Resolver) Absolute(rel string) string {
	if rel == "" || rel == "." {
		return r.Root
	}
	if isAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// Variants remaps path onto Root and every alternate root, in that order.
// It returns nil when path is not under any known root.
func (r *Resolver) Variants(path string) []string {
	res := r.Relative(path)
	if !res.Relative {
		return nil
	}
	roots := r.roots()
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		out = append(out, joinInStyle(root, res.Path))
	}
	return out
}

func (r *Resolver) roots() []string {
	out := make([]string, 0, 1+len(r.AltRoots))
	if r.Root != "" {
		out = append(out, r.Root)
	}
	for _, alt := range r.AltRoots {
		if alt != "" {
			out = append(out, alt)
		}
	}
	return out
}

func normalize(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	for len(p) > 1 && strings.HasSuffix(p, "/") && !isVolumeRoot(p) {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func trimRoot(p, root string) (string, bool) {
	if root == "" {
		return "", false
	}
	fold := caseInsensitive(root)
	equal := p == root
	if fold {
		equal = strings.EqualFold(p, root)
	}
	if equal {
		return ".", true
	}

	prefix := root
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if len(p) <= len(prefix) {
		return "", false
	}
	head := p[:len(prefix)]
	if head == prefix || (fold && strings.EqualFold(head, prefix)) {
		return p[len(prefix):], true
	}
	return "", false
}

func afterMarker(p, marker string) (string, bool) {
	if marker == "" {
		return "", false
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		if s != marker {
			continue
		}
		rest := strings.Join(segs[i+1:], "/")
		if rest == "" {
			rest = "."
		}
		return rest, true
	}
	return "", false
}

// caseInsensitive reports whether root looks like a Windows volume or UNC
// share.
func caseInsensitive(root string) bool {
	return hasVolume(root) || strings.HasPrefix(root, "//")
}

func hasVolume(p string) bool {
	return len(p) >= 2 && p[1] == ':' && isLetter(p[0])
}

func isVolumeRoot(p string) bool {
	return len(p) == 3 && hasVolume(p) && p[2] == '/'
}

func isLetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isAbs(p string) bool {
	n := normalize(p)
	return filepath.IsAbs(p) || hasVolume(n) || strings.HasPrefix(n, "/")
}

// joinInStyle joins rel onto root using the separator root already uses.
func joinInStyle(root, rel string) string {
	sep := "/"
	if strings.Contains(root, `\`) {
		sep = `\`
	}
	if rel == "." {
		return root
	}
	base := strings.TrimRight(root, `/\`)
	if hasVolume(base) && len(base) == 2 {
		base += sep
		return base + strings.ReplaceAll(rel, "/", sep)
	}
	return base + sep + strings.ReplaceAll(rel, "/", sep)
}
