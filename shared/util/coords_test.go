package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionOffsets(t *testing.T) {
	origin := NewBlockPos(3, 4, 5)
	tests := []struct {
		dir  Direction
		want BlockPos
	}{
		{DirUp, NewBlockPos(3, 5, 5)},
		{DirDown, NewBlockPos(3, 3, 5)},
		{DirNorth, NewBlockPos(3, 4, 4)},
		{DirSouth, NewBlockPos(3, 4, 6)},
		{DirEast, NewBlockPos(4, 4, 5)},
		{DirWest, NewBlockPos(2, 4, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, origin.AddDir(tt.dir))
		})
	}
}

func TestParseDirectionRoundTrip(t *testing.T) {
	for _, d := range AllDirections {
		got, ok := ParseDirection(d.String())
		assert.True(t, ok)
		assert.Equal(t, d, got)
	}

	_, ok := ParseDirection("sideways")
	assert.False(t, ok)
}

func TestFacingRotation(t *testing.T) {
	assert.Equal(t, Rotation{}, FacingRotation(DirNorth))
	assert.Equal(t, Rotation{Y: 90}, FacingRotation(DirEast))
	assert.Equal(t, Rotation{Y: 180}, FacingRotation(DirSouth))
	assert.Equal(t, Rotation{Y: 270}, FacingRotation(DirWest))
	assert.Equal(t, Rotation{X: 90}, FacingRotation(DirUp))
	assert.Equal(t, Rotation{X: 270}, FacingRotation(DirDown))
	assert.True(t, FacingRotation(DirNorth).IsZero())
}

func TestRGBScaleSaturates(t *testing.T) {
	c := RGB{200, 100, 10}
	assert.Equal(t, RGB{240, 120, 12}, c.Scale(1.2))
	assert.Equal(t, RGB{255, 255, 255}, RGB{250, 250, 250}.Scale(1.2))
	assert.Equal(t, RGB{140, 70, 7}, c.Scale(0.7))
}

func TestRGBScaleTruncates(t *testing.T) {
	assert.Equal(t, RGB{57, 148, 1}, RGB{99, 255, 3}.Scale(0.5833333333333334))
	assert.Equal(t, RGB{191, 191, 191}, RGB{255, 255, 255}.Scale(0.75))
}
