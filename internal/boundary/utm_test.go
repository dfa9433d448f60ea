package boundary

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestToUTM32(t *testing.T) {
	// Munich city center.
	p := toUTM32(orb.Point{11.5755, 48.1374})
	assert.InDelta(t, 691603, p[0], 1)
	assert.InDelta(t, 5334780, p[1], 1)

	// On the central meridian the false easting comes out exactly.
	p = toUTM32(orb.Point{9.0, 50.0})
	assert.InDelta(t, 500000, p[0], 1e-6)
	assert.InDelta(t, 5538631, p[1], 1)
}

func TestLooksGeographic(t *testing.T) {
	geo := orb.Bound{Min: orb.Point{5.9, 47.3}, Max: orb.Point{15.0, 55.1}}
	utm := orb.Bound{Min: orb.Point{280000, 5235000}, Max: orb.Point{920000, 6100000}}
	assert.True(t, looksGeographic(geo))
	assert.False(t, looksGeographic(utm))
}
