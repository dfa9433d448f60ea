// Package boundary loads the German federal state boundaries and
// answers the spatial questions of the multi-state download: which
// states an area of interest touches and which state each grid tile
// belongs to. All geometry is EPSG:25832; geographic input is
// projected on load.
package boundary

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// State is one federal state boundary.
type State struct {
	// Code is the two-letter code, e.g. "BY" from "DE-BY".
	Code string
	// Name is the display name, e.g. "Bayern".
	Name     string
	Geometry orb.MultiPolygon
}

// Dataset holds the full boundary dataset.
type Dataset struct {
	states []State
}

// States returns all states in dataset order.
func (d *Dataset) States() []State {
	return d.states
}

// Len returns the number of states.
func (d *Dataset) Len() int {
	return len(d.states)
}

// Intersecting returns the states whose boundary intersects the AOI,
// in dataset order.
func (d *Dataset) Intersecting(aoi orb.Polygon) []State {
	var out []State
	for _, s := range d.states {
		if MultiPolygonIntersects(s.Geometry, aoi) {
			out = append(out, s)
		}
	}
	names := make([]string, len(out))
	for i, s := range out {
		names[i] = s.Name
	}
	zap.L().Info("detected intersecting states", zap.Int("count", len(out)), zap.Strings("states", names))
	return out
}

// StateContaining returns the state whose boundary contains the point,
// or nil.
func (d *Dataset) StateContaining(pt orb.Point) *State {
	for i := range d.states {
		if planar.MultiPolygonContains(d.states[i].Geometry, pt) {
			return &d.states[i]
		}
	}
	return nil
}

// AssignTiles partitions grid tiles among the given states. Each tile
// goes to exactly one state: the one containing its centroid, or the
// first intersecting state for centroids on water or just outside the
// dataset. Tiles touching none of the states are dropped.
func AssignTiles(tiles []orb.Bound, states []State) map[string][]orb.Bound {
	out := make(map[string][]orb.Bound, len(states))

	for _, tile := range tiles {
		assigned := false
		center := tile.Center()

		for _, s := range states {
			if planar.MultiPolygonContains(s.Geometry, center) {
				out[s.Code] = append(out[s.Code], tile)
				assigned = true
				break
			}
		}
		if assigned {
			continue
		}

		for _, s := range states {
			if BoundIntersectsMultiPolygon(tile, s.Geometry) {
				out[s.Code] = append(out[s.Code], tile)
				break
			}
		}
	}

	return out
}

// ErrNoStates is returned when an AOI touches no federal state.
var ErrNoStates = eris.New("boundary: no federal state intersects the area of interest")
