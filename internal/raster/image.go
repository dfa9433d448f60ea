// Package raster handles the pixel side of the download: decoding WMS
// responses, writing georeferenced TIFFs and masks, and recording
// per-tile metadata in a dataset manifest.
package raster

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Image is the metadata of one downloaded tile. Failed downloads are
// recorded with empty paths so a run stays addressable tile-by-tile.
type Image struct {
	ImagePath  string  `json:"image_path"`
	MaskPath   string  `json:"mask_path,omitempty"`
	UpperLeftX float64 `json:"upper_left_x"`
	UpperLeftY float64 `json:"upper_left_y"`
	// DownloadTime is the wall time of the tile request in seconds.
	DownloadTime float64 `json:"download_time"`
	WidthM       float64 `json:"width_m"`
	HeightM      float64 `json:"height_m"`
	WidthPx      int     `json:"width_px"`
	HeightPx     int     `json:"height_px"`
	ResolutionM  float64 `json:"resolution_m"`
	CRS          string  `json:"crs"`
}

// Failed reports whether the tile download failed.
func (i Image) Failed() bool {
	return i.ImagePath == ""
}

// AreaDataset is the result of downloading one area from one service.
type AreaDataset struct {
	Name       string      `json:"name"`
	RunID      string      `json:"run_id"`
	BufferSize int         `json:"buffer_size"`
	OutPath    string      `json:"out_path"`
	Images     []Image     `json:"images"`
	Polygon    orb.Polygon `json:"-"`
	// PolygonPath is where the AOI polygon was saved as GeoJSON.
	PolygonPath string `json:"polygon"`
}

const (
	manifestName = "dataset.json"
	polygonName  = "polygon.geojson"
)

// FailedCount returns the number of failed tiles.
func (d *AreaDataset) FailedCount() int {
	var n int
	for _, img := range d.Images {
		if img.Failed() {
			n++
		}
	}
	return n
}

// WriteManifest saves the dataset manifest and its AOI polygon into
// the dataset's output directory.
func (d *AreaDataset) WriteManifest() error {
	if d.Images == nil {
		return eris.New("raster: cannot write manifest without images")
	}

	polyPath := filepath.Join(d.OutPath, polygonName)
	f := geojson.NewFeature(d.Polygon)
	f.Properties["name"] = d.Name
	polyData, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return eris.Wrap(err, "raster: marshal polygon")
	}
	if err := os.WriteFile(polyPath, polyData, 0o644); err != nil {
		return eris.Wrap(err, "raster: write polygon")
	}
	d.PolygonPath = polyPath

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return eris.Wrap(err, "raster: marshal manifest")
	}
	manifestPath := filepath.Join(d.OutPath, manifestName)
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return eris.Wrap(err, "raster: write manifest")
	}

	zap.L().Info("manifest written",
		zap.String("name", d.Name),
		zap.String("path", manifestPath),
		zap.Int("images", len(d.Images)),
		zap.Int("failed", d.FailedCount()),
	)
	return nil
}

// ReadManifest loads a dataset manifest from a directory, including
// the saved polygon.
func ReadManifest(dir string) (*AreaDataset, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, eris.Wrapf(err, "raster: read manifest in %s", dir)
	}

	var d AreaDataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, eris.Wrap(err, "raster: parse manifest")
	}

	if d.PolygonPath != "" {
		polyData, err := os.ReadFile(d.PolygonPath)
		if err != nil {
			return nil, eris.Wrapf(err, "raster: read polygon %s", d.PolygonPath)
		}
		f, err := geojson.UnmarshalFeature(polyData)
		if err != nil {
			return nil, eris.Wrap(err, "raster: parse polygon")
		}
		if poly, ok := f.Geometry.(orb.Polygon); ok {
			d.Polygon = poly
		}
	}

	return &d, nil
}
