//go:build linux || darwin || freebsd

package attrs

import "github.com/pkg/xattr"

// StampID records id on dir as an extended attribute.
func StampID(dir, id string) error {
	return xattr.Set(dir, IDAttr, []byte(id))
}

// ReadID returns the id stamped on dir.
func ReadID(dir string) (string, error) {
	b, err := xattr.Get(dir, IDAttr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Supported reports whether extended attributes are available on this
// platform; individual filesystems may still refuse them.
func Supported() bool { return true }
