package raster

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestRasterizeMaskFull(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	tile := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}

	m := RasterizeMask(poly, tile, 10, 10, 1)
	assert.Equal(t, 1.0, CoverageRatio(m))
}

func TestRasterizeMaskHalf(t *testing.T) {
	// polygon covers the left half of the tile
	poly := orb.Polygon{{{0, 0}, {5, 0}, {5, 10}, {0, 10}, {0, 0}}}
	tile := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}

	m := RasterizeMask(poly, tile, 10, 10, 1)
	assert.Equal(t, 0.5, CoverageRatio(m))
	// left columns set, right columns clear
	assert.Equal(t, byte(255), m.Pixels[0])
	assert.Equal(t, byte(255), m.Pixels[4])
	assert.Equal(t, byte(0), m.Pixels[5])
	assert.Equal(t, byte(0), m.Pixels[9])
}

func TestRasterizeMaskDisjoint(t *testing.T) {
	poly := orb.Polygon{{{100, 100}, {110, 100}, {110, 110}, {100, 110}, {100, 100}}}
	tile := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}

	m := RasterizeMask(poly, tile, 10, 10, 1)
	assert.Equal(t, 0.0, CoverageRatio(m))
}

func TestRasterizeMaskHole(t *testing.T) {
	poly := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{3, 3}, {7, 3}, {7, 7}, {3, 7}, {3, 3}},
	}
	tile := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}

	m := RasterizeMask(poly, tile, 10, 10, 1)
	// center pixel sits in the hole
	assert.Equal(t, byte(0), m.Pixels[5*10+5])
	assert.Equal(t, byte(255), m.Pixels[1*10+1])
	assert.Equal(t, 0.84, CoverageRatio(m))
}
