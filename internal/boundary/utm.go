package boundary

import (
	"math"

	"github.com/paulmach/orb"
)

// ETRS89 / UTM zone 32N (EPSG:25832) forward projection on the GRS80
// ellipsoid, central meridian 9°E. The published boundary datasets are
// EPSG:4326; this is the one fixed transformation the tool needs, so a
// full proj port is not pulled in (see DESIGN.md).
const (
	grs80A    = 6378137.0
	grs80F    = 1.0 / 298.257222101
	utmK0     = 0.9996
	utm32Lon0 = 9.0 * math.Pi / 180.0
	utmFalseE = 500000.0
)

// toUTM32 projects a lon/lat point to EPSG:25832 easting/northing.
func toUTM32(p orb.Point) orb.Point {
	lon := p[0] * math.Pi / 180.0
	lat := p[1] * math.Pi / 180.0

	e2 := grs80F * (2 - grs80F)
	ep2 := e2 / (1 - e2)

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	tanLat := math.Tan(lat)

	n := grs80A / math.Sqrt(1-e2*sinLat*sinLat)
	t := tanLat * tanLat
	c := ep2 * cosLat * cosLat
	a := (lon - utm32Lon0) * cosLat

	e4 := e2 * e2
	e6 := e4 * e2
	m := grs80A * ((1-e2/4-3*e4/64-5*e6/256)*lat -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*lat) +
		(15*e4/256+45*e6/1024)*math.Sin(4*lat) -
		(35*e6/3072)*math.Sin(6*lat))

	x := utmK0*n*(a+(1-t+c)*a*a*a/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120) + utmFalseE
	y := utmK0 * (m + n*tanLat*(a*a/2+
		(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
		(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720))

	return orb.Point{x, y}
}

// looksGeographic reports whether a bound plausibly holds lon/lat
// coordinates rather than UTM meters.
func looksGeographic(b orb.Bound) bool {
	return b.Min[0] >= -180 && b.Max[0] <= 180 && b.Min[1] >= -90 && b.Max[1] <= 90
}

// ProjectIfGeographic converts a lon/lat polygon to EPSG:25832 and
// passes projected polygons through unchanged.
func ProjectIfGeographic(p orb.Polygon) orb.Polygon {
	if !looksGeographic(p.Bound()) {
		return p
	}
	return projectMultiPolygon(orb.MultiPolygon{p})[0]
}

// projectMultiPolygon converts a geographic multipolygon to EPSG:25832.
func projectMultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, len(mp))
	for i, poly := range mp {
		out[i] = make(orb.Polygon, len(poly))
		for j, ring := range poly {
			projected := make(orb.Ring, len(ring))
			for k, pt := range ring {
				projected[k] = toUTM32(pt)
			}
			out[i][j] = projected
		}
	}
	return out
}
