package boundary

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// FileOptions names the attribute fields of a local boundary file.
// The defaults match the BKG Verwaltungsgebiete shapefiles.
type FileOptions struct {
	NameField string
	CodeField string
}

func (o FileOptions) withDefaults() FileOptions {
	if o.NameField == "" {
		o.NameField = "GEN"
	}
	if o.CodeField == "" {
		o.CodeField = "ISO"
	}
	return o
}

// LoadShapefile reads a boundary dataset from a shapefile. Records
// without geometry or without the code attribute are skipped.
func LoadShapefile(path string, opts FileOptions) (*Dataset, error) {
	opts = opts.withDefaults()

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, opts.NameField)
	codeIdx := fieldIndex(reader, opts.CodeField)
	if nameIdx < 0 || codeIdx < 0 {
		return nil, eris.Errorf("boundary: shapefile fields %q and %q not found", opts.NameField, opts.CodeField)
	}

	d := &Dataset{}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}

		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		code := strings.TrimSpace(reader.Attribute(codeIdx))
		name := strings.TrimSpace(reader.Attribute(nameIdx))
		if code == "" {
			skipped++
			continue
		}

		geometry := geomToOrb(mp)
		if looksGeographic(geometry.Bound()) {
			geometry = projectMultiPolygon(geometry)
		}

		d.states = append(d.states, State{
			Code:     stateCode(code),
			Name:     name,
			Geometry: geometry,
		})
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped shapefile records", zap.Int("skipped", skipped))
	}
	if len(d.states) == 0 {
		return nil, eris.Errorf("boundary: shapefile %s contains no usable records", path)
	}
	return d, nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile Polygon to a go-geom
// MultiPolygon, one single-ring polygon per part.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// geomToOrb converts a go-geom MultiPolygon to orb.
func geomToOrb(mp *geom.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, mp.NumPolygons())
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		converted := make(orb.Polygon, 0, poly.NumLinearRings())
		for j := 0; j < poly.NumLinearRings(); j++ {
			coords := poly.LinearRing(j).Coords()
			ring := make(orb.Ring, len(coords))
			for k, c := range coords {
				ring[k] = orb.Point{c.X(), c.Y()}
			}
			converted = append(converted, ring)
		}
		out = append(out, converted)
	}
	return out
}
