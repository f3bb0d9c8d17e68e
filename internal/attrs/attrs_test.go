package attrs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHidden(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".id_stc_0010")
	require.NoError(t, os.WriteFile(p, nil, 0o644))

	require.NoError(t, SetHidden(p, true))
	hidden, err := IsHidden(p)
	require.NoError(t, err)
	assert.True(t, hidden)

	require.NoError(t, SetHidden(p, false))
	hidden, err = IsHidden(p)
	require.NoError(t, err)
	if runtime.GOOS == "windows" {
		assert.False(t, hidden)
	} else {
		assert.True(t, hidden, "dot-files stay hidden")
	}
}

func TestSetHidden_MissingPath(t *testing.T) {
	require.Error(t, SetHidden(filepath.Join(t.TempDir(), "nope"), true))
}

func TestStampID(t *testing.T) {
	if !Supported() {
		t.Skip("no extended attributes on this platform")
	}
	dir := t.TempDir()

	err := StampID(dir, "stc_0010")
	if errors.Is(err, syscall.ENOTSUP) || errors.Is(err, syscall.EOPNOTSUPP) {
		t.Skip("filesystem does not support user xattrs")
	}
	require.NoError(t, err)

	got, err := ReadID(dir)
	require.NoError(t, err)
	assert.Equal(t, "stc_0010", got)
}
