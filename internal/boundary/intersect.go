package boundary

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PolygonsIntersect reports whether two polygons share any area or
// touch. Neither orb nor go-geom ships a polygon/polygon predicate, so
// this combines a bound prefilter, mutual vertex containment and an
// edge crossing sweep. Holes are honored by the containment tests.
func PolygonsIntersect(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}

	// One polygon fully inside the other: no edges cross, but a
	// vertex of one lies inside the other.
	if len(a[0]) > 0 && planar.PolygonContains(b, a[0][0]) {
		return true
	}
	if len(b[0]) > 0 && planar.PolygonContains(a, b[0][0]) {
		return true
	}

	for _, ringA := range a {
		for _, ringB := range b {
			if ringsCross(ringA, ringB) {
				return true
			}
		}
	}
	return false
}

// MultiPolygonIntersects reports whether any member polygon intersects p.
func MultiPolygonIntersects(mp orb.MultiPolygon, p orb.Polygon) bool {
	for _, poly := range mp {
		if PolygonsIntersect(poly, p) {
			return true
		}
	}
	return false
}

// BoundIntersectsMultiPolygon reports whether a rectangle intersects
// any member polygon.
func BoundIntersectsMultiPolygon(b orb.Bound, mp orb.MultiPolygon) bool {
	for _, poly := range mp {
		if PolygonsIntersect(b.ToPolygon(), poly) {
			return true
		}
	}
	return false
}

func ringsCross(a, b orb.Ring) bool {
	for i := 1; i < len(a); i++ {
		if !segmentBoundOverlaps(a[i-1], a[i], b.Bound()) {
			continue
		}
		for j := 1; j < len(b); j++ {
			if segmentsIntersect(a[i-1], a[i], b[j-1], b[j]) {
				return true
			}
		}
	}
	return false
}

func segmentBoundOverlaps(p, q orb.Point, b orb.Bound) bool {
	seg := orb.Bound{Min: p, Max: p}
	seg = seg.Extend(q)
	return seg.Intersects(b)
}

// segmentsIntersect is the standard orientation test, including the
// collinear-overlap cases.
func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// cross returns the z-component of (b-a) x (c-a).
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// onSegment reports whether c, known collinear with a-b, lies on a-b.
func onSegment(a, b, c orb.Point) bool {
	return min(a[0], b[0]) <= c[0] && c[0] <= max(a[0], b[0]) &&
		min(a[1], b[1]) <= c[1] && c[1] <= max(a[1], b[1])
}
