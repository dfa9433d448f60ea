// Package downloader turns an area of interest into a grid of square
// tiles and fetches each tile from a WMS, writing georeferenced
// rasters and a dataset manifest per area.
package downloader

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/luftbild/ortho-cli/internal/boundary"
)

// Tiles computes the download grid for an AOI: square tiles of the
// given spacing, aligned to even kilometer multiples of the spacing
// origin, covering the AOI plus buffer with one extra tile ring on
// every side. Tiles whose buffered extent misses the AOI entirely are
// dropped.
func Tiles(aoi orb.Polygon, buffer, spacing float64) []orb.Bound {
	b := aoi.Bound()

	minX := roundThousand(b.Min.X()-buffer) - spacing
	minY := roundThousand(b.Min.Y()-buffer) - spacing
	maxX := roundThousand(b.Max.X()+buffer) + spacing
	maxY := roundThousand(b.Max.Y()+buffer) + spacing

	mp := orb.MultiPolygon{aoi}
	var tiles []orb.Bound
	for y := minY; y < maxY; y += spacing {
		for x := minX; x < maxX; x += spacing {
			tile := orb.Bound{
				Min: orb.Point{x, y},
				Max: orb.Point{x + spacing, y + spacing},
			}
			buffered := orb.Bound{
				Min: orb.Point{x - buffer, y - buffer},
				Max: orb.Point{x + spacing + buffer, y + spacing + buffer},
			}
			if boundary.BoundIntersectsMultiPolygon(buffered, mp) {
				tiles = append(tiles, tile)
			}
		}
	}
	return tiles
}

// roundThousand rounds to the nearest whole kilometer, matching how
// the state services align their tiling schemes.
func roundThousand(v float64) float64 {
	return math.Round(v/1000) * 1000
}

// PixelSize returns the tile edge length in pixels, or an error when
// the spacing is not an integer multiple of the service resolution.
func PixelSize(spacing, resolution float64) (int, error) {
	px := spacing / resolution
	rounded := math.Round(px)
	if math.Abs(px-rounded) > 1e-9 || rounded < 1 {
		return 0, errBadSpacing(spacing, resolution)
	}
	return int(rounded), nil
}
