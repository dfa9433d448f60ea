package boundary

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LoadGeoJSON parses a boundary dataset from GeoJSON. Features are
// expected to carry an "id" property of the form "DE-XX" and a "name"
// property, as in the published deutschlandGeoJSON dataset. Geographic
// coordinates are projected to EPSG:25832.
func LoadGeoJSON(data []byte) (*Dataset, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: parse GeoJSON")
	}

	d := &Dataset{}
	for _, f := range fc.Features {
		var geometry orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			geometry = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			geometry = g
		default:
			continue
		}

		if looksGeographic(geometry.Bound()) {
			geometry = projectMultiPolygon(geometry)
		}

		id := featureID(f)
		d.states = append(d.states, State{
			Code:     stateCode(id),
			Name:     f.Properties.MustString("name", id),
			Geometry: geometry,
		})
	}

	if len(d.states) == 0 {
		return nil, eris.New("boundary: dataset contains no usable polygon features")
	}
	zap.L().Debug("boundary dataset loaded", zap.Int("states", len(d.states)))
	return d, nil
}

// LoadFile reads a boundary dataset from a local GeoJSON or shapefile.
func LoadFile(path string, opts FileOptions) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".shp") {
		return LoadShapefile(path, opts)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: read %s", path)
	}
	return LoadGeoJSON(data)
}

// FetchDataset downloads the boundary GeoJSON from a URL.
func FetchDataset(ctx context.Context, client *http.Client, url string) (*Dataset, error) {
	if client == nil {
		client = http.DefaultClient
	}

	zap.L().Info("downloading state boundaries", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: build request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: download dataset")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("boundary: dataset download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: read dataset")
	}
	return LoadGeoJSON(data)
}

func featureID(f *geojson.Feature) string {
	if v, ok := f.Properties["id"].(string); ok {
		return v
	}
	if v, ok := f.ID.(string); ok {
		return v
	}
	return ""
}

// stateCode extracts "BY" from "DE-BY"; identifiers without the
// country prefix pass through unchanged.
func stateCode(id string) string {
	if i := strings.LastIndex(id, "-"); i >= 0 {
		return id[i+1:]
	}
	return id
}
