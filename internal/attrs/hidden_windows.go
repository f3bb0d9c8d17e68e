//go:build windows

package attrs

import "golang.org/x/sys/windows"

// SetHidden sets or clears FILE_ATTRIBUTE_HIDDEN on path.
func SetHidden(path string, hidden bool) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	a, err := windows.GetFileAttributes(p)
	if err != nil {
		return err
	}
	if hidden {
		a |= windows.FILE_ATTRIBUTE_HIDDEN
	} else {
		a &^= windows.FILE_ATTRIBUTE_HIDDEN
	}
	return windows.SetFileAttributes(p, a)
}

// IsHidden reports whether FILE_ATTRIBUTE_HIDDEN is set on path.
func IsHidden(path string) (bool, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, err
	}
	a, err := windows.GetFileAttributes(p)
	if err != nil {
		return false, err
	}
	return a&windows.FILE_ATTRIBUTE_HIDDEN != 0, nil
}
