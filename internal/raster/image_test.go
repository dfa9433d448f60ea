package raster

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d := &AreaDataset{
		Name:       "bayern",
		RunID:      uuid.NewString(),
		BufferSize: 100,
		OutPath:    dir,
		Polygon:    orb.Polygon{{{0, 0}, {1000, 0}, {1000, 1000}, {0, 1000}, {0, 0}}},
		Images: []Image{
			{
				ImagePath:   filepath.Join(dir, "bayern_0.tif"),
				UpperLeftX:  690000,
				UpperLeftY:  5336000,
				WidthM:      1000,
				HeightM:     1000,
				WidthPx:     5000,
				HeightPx:    5000,
				ResolutionM: 0.2,
				CRS:         "EPSG:25832",
			},
			{}, // failed tile
		},
	}

	require.NoError(t, d.WriteManifest())
	assert.FileExists(t, filepath.Join(dir, "dataset.json"))
	assert.FileExists(t, filepath.Join(dir, "polygon.geojson"))

	got, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, d.Name, got.Name)
	assert.Equal(t, d.RunID, got.RunID)
	assert.Len(t, got.Images, 2)
	assert.Equal(t, 1, got.FailedCount())
	assert.Equal(t, d.Images[0].UpperLeftX, got.Images[0].UpperLeftX)
	require.Len(t, got.Polygon, 1)
	assert.Equal(t, orb.Point{1000, 1000}, got.Polygon[0][2])
}

func TestWriteManifestNoImages(t *testing.T) {
	d := &AreaDataset{Name: "x", OutPath: t.TempDir()}
	assert.Error(t, d.WriteManifest())
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	assert.Error(t, err)
}

func TestImageFailed(t *testing.T) {
	assert.True(t, Image{}.Failed())
	assert.False(t, Image{ImagePath: "a.tif"}.Failed())
}
