package shotcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"s15", "stc_0015"},
		{"stc_0010", "stc_0010"},
		{"shot_7", "stc_0007"},
		{"stc_10", "stc_0010"},
		{"sh2_040", "stc_0040"},
		{"stc_12345", "stc_12345"},
		{"s0", "stc_0000"},
		{"shot_000000000000000000000015", "stc_0015"},
		{"s123456789012345678901234567890", "stc_123456789012345678901234567890"},
		{"hero", "hero"},
		{"v2_final", "v2_final"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}

func TestCanonical_IsIdempotent(t *testing.T) {
	for _, name := range []string{"s15", "shot_0990", "stc_0010", "abc", "s010000", "s99999999999999999999999"} {
		once := Canonical(name)
		assert.Equal(t, once, Canonical(once), name)
	}
}

func TestParse(t *testing.T) {
	n, ok := Parse("stc_0150")
	require.True(t, ok)
	assert.Equal(t, 150, n)

	n, ok = Parse("stc_10000")
	require.True(t, ok)
	assert.Equal(t, 10000, n)
	assert.Equal(t, "stc_10000", Format(n))

	for _, bad := range []string{"stc_150", "STC_0150", "stc_01500", "s15"} {
		_, ok := Parse(bad)
		assert.False(t, ok, bad)
	}
}

func mkdirs(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(root, n), 0o755))
	}
}

func TestNext(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		got, err := Next(filepath.Join(t.TempDir(), "40_shots"))
		require.NoError(t, err)
		assert.Equal(t, Seed, got)
	})

	t.Run("no matches", func(t *testing.T) {
		root := t.TempDir()
		mkdirs(t, root, "old", "s15", "stc_10")
		got, err := Next(root)
		require.NoError(t, err)
		assert.Equal(t, Seed, got)
	})

	t.Run("max plus ten regardless of order", func(t *testing.T) {
		for _, order := range [][]string{{"stc_0010", "stc_0030"}, {"stc_0030", "stc_0010"}} {
			root := t.TempDir()
			mkdirs(t, root, order...)
			got, err := Next(root)
			require.NoError(t, err)
			assert.Equal(t, "stc_0040", got)
		}
	})

	t.Run("files are ignored", func(t *testing.T) {
		root := t.TempDir()
		mkdirs(t, root, "stc_0010")
		require.NoError(t, os.WriteFile(filepath.Join(root, "stc_0500"), nil, 0o644))
		got, err := Next(root)
		require.NoError(t, err)
		assert.Equal(t, "stc_0020", got)
	})

	t.Run("past four digits", func(t *testing.T) {
		root := t.TempDir()
		mkdirs(t, root, "stc_9990")
		got, err := Next(root)
		require.NoError(t, err)
		assert.Equal(t, "stc_10000", got)

		mkdirs(t, root, got)
		got, err = Next(root)
		require.NoError(t, err)
		assert.Equal(t, "stc_10010", got)
	})

	t.Run("unregistered manual folder counts", func(t *testing.T) {
		root := t.TempDir()
		mkdirs(t, root, "stc_0010", "stc_0015")
		got, err := Next(root)
		require.NoError(t, err)
		assert.Equal(t, "stc_0025", got)
	})
}
