package raster

import (
	"sort"

	"github.com/paulmach/orb"
)

// RasterizeMask burns poly into a single-band binary raster aligned
// with the tile: pixels whose center falls inside the polygon are
// 255, everything else 0. Holes are honored via even-odd filling.
func RasterizeMask(poly orb.Polygon, tile orb.Bound, widthPx, heightPx int, resolution float64) Raster {
	out := Raster{
		Width:   widthPx,
		Height:  heightPx,
		Samples: 1,
		Pixels:  make([]byte, widthPx*heightPx),
	}

	ulx := tile.Min.X()
	uly := tile.Max.Y()

	for row := 0; row < heightPx; row++ {
		y := uly - (float64(row)+0.5)*resolution

		var xs []float64
		for _, ring := range poly {
			for i := 0; i < len(ring)-1; i++ {
				y1, y2 := ring[i].Y(), ring[i+1].Y()
				if (y1 <= y) == (y2 <= y) {
					continue
				}
				x1, x2 := ring[i].X(), ring[i+1].X()
				xs = append(xs, x1+(y-y1)/(y2-y1)*(x2-x1))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			c0 := colCeil(xs[i], ulx, resolution)
			c1 := colFloor(xs[i+1], ulx, resolution)
			if c0 < 0 {
				c0 = 0
			}
			if c1 >= widthPx {
				c1 = widthPx - 1
			}
			for c := c0; c <= c1; c++ {
				out.Pixels[row*widthPx+c] = 255
			}
		}
	}
	return out
}

// colCeil returns the first column whose center x is >= world x.
func colCeil(x, ulx, res float64) int {
	c := (x - ulx) / res
	col := int(c - 0.5)
	for float64(col)+0.5 < c {
		col++
	}
	return col
}

// colFloor returns the last column whose center x is < world x.
func colFloor(x, ulx, res float64) int {
	c := (x - ulx) / res
	col := int(c + 0.5)
	for float64(col)+0.5 >= c {
		col--
	}
	return col
}

// CoverageRatio reports the fraction of mask pixels that are set.
func CoverageRatio(mask Raster) float64 {
	if len(mask.Pixels) == 0 {
		return 0
	}
	var n int
	for _, p := range mask.Pixels {
		if p != 0 {
			n++
		}
	}
	return float64(n) / float64(len(mask.Pixels))
}
