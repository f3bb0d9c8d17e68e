package common

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_NilStaysNil(t *testing.T) {
	require.NoError(t, Wrap(ErrFilesystem, "rename", "/x", nil))
	require.NoError(t, FS("mkdir", "/x", nil))
}

func TestOpError_MatchesKindAndCause(t *testing.T) {
	err := FS("rename", "/proj/40_shots/s15", fs.ErrPermission)

	assert.True(t, errors.Is(err, ErrFilesystem))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.False(t, errors.Is(err, ErrMalformedSidecar))

	var op *OpError
	require.True(t, errors.As(err, &op))
	assert.Equal(t, "rename", op.Op)
	assert.Equal(t, "/proj/40_shots/s15", op.Path)
	assert.Contains(t, err.Error(), "rename /proj/40_shots/s15: filesystem error")
}

func TestOpError_KindOnly(t *testing.T) {
	err := &OpError{Kind: ErrDestinationExists, Op: "rename", Path: "/a"}
	assert.True(t, errors.Is(err, ErrDestinationExists))
	assert.Equal(t, "rename /a: destination already exists", err.Error())
}
