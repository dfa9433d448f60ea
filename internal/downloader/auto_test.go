package downloader

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luftbild/ortho-cli/internal/boundary"
	"github.com/luftbild/ortho-cli/internal/wms"
)

// twoStates is a pair of adjacent 10km squares sharing the border
// x=10000, in projected coordinates.
const twoStates = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"id": "DE-AA", "name": "Aland"},
      "geometry": {"type": "Polygon", "coordinates": [[
        [0, 0], [10000, 0], [10000, 10000], [0, 10000], [0, 0]
      ]]}
    },
    {
      "type": "Feature",
      "properties": {"id": "DE-BB", "name": "Beland"},
      "geometry": {"type": "Polygon", "coordinates": [[
        [10000, 0], [20000, 0], [20000, 10000], [10000, 10000], [10000, 0]
      ]]}
    }
  ]
}`

func testBoundaries(t *testing.T) *boundary.Dataset {
	t.Helper()
	ds, err := boundary.LoadGeoJSON([]byte(twoStates))
	require.NoError(t, err)
	return ds
}

func testCatalog(t *testing.T, url string, products map[wms.Product]string) *wms.Catalog {
	t.Helper()
	services := make(map[wms.Product]wms.Service, len(products))
	for p, layer := range products {
		svc := testService(url, layer)
		svc.Product = p
		services[p] = svc
	}
	c, err := wms.NewCatalog(map[string]map[wms.Product]wms.Service{
		"AA": services,
		"BB": services,
	})
	require.NoError(t, err)
	return c
}

func TestAutoDownloadSplitsByState(t *testing.T) {
	srv := wmsServer(t, map[string]color.RGBA{"dop": {R: 5, G: 6, B: 7}})
	defer srv.Close()

	catalog := testCatalog(t, srv.URL, map[wms.Product]string{wms.ProductRGB: "dop"})
	auto := NewAuto(testBoundaries(t), catalog, testFetcher(), wms.ProductRGB, 1000)

	// straddles the AA/BB border at x=10000
	aoi := squareAOI(8500, 500, 11500, 2500)
	outDir := t.TempDir()
	results, err := auto.Download(context.Background(), "border_area", aoi, outDir, Options{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	aa := results["Aland"]
	bb := results["Beland"]
	require.NotNil(t, aa)
	require.NotNil(t, bb)

	// every grid tile belongs to exactly one state
	assert.Equal(t, len(Tiles(aoi, 0, 1000)), len(aa.Images)+len(bb.Images))
	assert.Zero(t, aa.FailedCount())
	assert.Zero(t, bb.FailedCount())

	// tiles west of the border went to AA, east to BB
	for _, img := range aa.Images {
		assert.Less(t, img.UpperLeftX, 10000.0)
	}
	for _, img := range bb.Images {
		assert.GreaterOrEqual(t, img.UpperLeftX, 10000.0)
	}

	// per-state output directories are slugged state names
	assert.DirExists(t, filepath.Join(outDir, "aland"))
	assert.DirExists(t, filepath.Join(outDir, "beland"))
	assert.Equal(t, "border_area_aland", aa.Name)

	entries, err := os.ReadDir(filepath.Join(outDir, "aland"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestAutoDownloadNoStates(t *testing.T) {
	catalog := testCatalog(t, "http://localhost", map[wms.Product]string{wms.ProductRGB: "dop"})
	auto := NewAuto(testBoundaries(t), catalog, testFetcher(), wms.ProductRGB, 1000)

	aoi := squareAOI(500000, 500000, 501000, 501000)
	_, err := auto.Download(context.Background(), "nowhere", aoi, t.TempDir(), Options{})
	assert.ErrorIs(t, err, boundary.ErrNoStates)
}

func TestAutoDownloadRGBI(t *testing.T) {
	srv := wmsServer(t, map[string]color.RGBA{
		"rgb": {R: 1, G: 2, B: 3},
		"cir": {R: 42},
	})
	defer srv.Close()

	catalog := testCatalog(t, srv.URL, map[wms.Product]string{
		wms.ProductRGB: "rgb",
		wms.ProductCIR: "cir",
	})
	auto := NewAuto(testBoundaries(t), catalog, testFetcher(), wms.ProductRGBI, 1000)

	results, err := auto.Download(context.Background(), "infrared", squareAOI(500, 500, 1500, 1500), t.TempDir(), Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results["Aland"].FailedCount())
}

func TestAutoDownloadMissingCIRService(t *testing.T) {
	srv := wmsServer(t, map[string]color.RGBA{"rgb": {R: 1}})
	defer srv.Close()

	catalog := testCatalog(t, srv.URL, map[wms.Product]string{wms.ProductRGB: "rgb"})
	auto := NewAuto(testBoundaries(t), catalog, testFetcher(), wms.ProductRGBI, 1000)

	_, err := auto.Download(context.Background(), "no_cir", squareAOI(500, 500, 1500, 1500), t.TempDir(), Options{})
	assert.Error(t, err)
}
