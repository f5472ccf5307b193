package renderr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		code int
	}{
		{KindUnknown, 2000},
		{KindModelBuild, 2001},
		{KindMeshConstruction, 2002},
		{KindFrameRender, 2003},
		{KindExport, 2004},
		{KindStillRender, 2005},
		{KindInvalidArgument, 6002},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, New(tt.kind, "x").Code())
		})
	}
}

func TestWrapKeepsOriginalKind(t *testing.T) {
	inner := New(KindFrameRender, "pose %d", 3)
	outer := Wrap(KindExport, fmt.Errorf("encode: %w", inner), "export")

	assert.Equal(t, KindFrameRender, KindOf(outer))
	assert.Equal(t, 2003, CodeOf(outer))
}

func TestWrapPlainError(t *testing.T) {
	err := Wrap(KindExport, io.ErrShortWrite, "gravando %s", "out.gif")

	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, KindExport, re.Kind)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Contains(t, err.Error(), "[2004] gravando out.gif")
	assert.Nil(t, Wrap(KindExport, nil, "x"))
	assert.Equal(t, 0, CodeOf(nil))
	assert.Equal(t, 2000, CodeOf(io.EOF))
}
