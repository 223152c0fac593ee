package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAbsoluteCardinal(t *testing.T) {
	p, ok := ResolveAbsolute(DirEast, 10, Vec2{0, 0})
	require.True(t, ok)
	assert.InDelta(t, 10.0, p.X, 1e-12)
	assert.InDelta(t, 0.0, p.Y, 1e-12)

	p, ok = ResolveAbsolute(DirSouth, 3, Vec2{1, 1})
	require.True(t, ok)
	assert.InDelta(t, 1.0, p.X, 1e-12)
	assert.InDelta(t, -2.0, p.Y, 1e-12)
}

func TestResolveAbsoluteDiagonal(t *testing.T) {
	p, ok := ResolveAbsolute(DirNorthwest, math.Sqrt2, Vec2{0, 0})
	require.True(t, ok)
	assert.InDelta(t, -1.0, p.X, 1e-9)
	assert.InDelta(t, 1.0, p.Y, 1e-9)
}

func TestResolveAbsoluteAllDirectionsUnitLength(t *testing.T) {
	for _, dir := range AllDirections {
		p, ok := ResolveAbsolute(dir, 1, Vec2{0, 0})
		require.True(t, ok, "direction %s", dir)
		assert.InDelta(t, 1.0, p.Len(), 1e-12, "direction %s", dir)
	}
}

func TestResolveAbsoluteUnknownDirection(t *testing.T) {
	_, ok := ResolveAbsolute("up", 5, Vec2{0, 0})
	assert.False(t, ok)
}
