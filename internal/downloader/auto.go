package downloader

import (
	"context"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/luftbild/ortho-cli/internal/boundary"
	"github.com/luftbild/ortho-cli/internal/raster"
	"github.com/luftbild/ortho-cli/internal/wms"
)

// AutoDownloader routes an AOI to the responsible state services. It
// detects which federal states the AOI touches, splits the grid among
// them, and runs one download per state against that state's WMS.
type AutoDownloader struct {
	boundaries *boundary.Dataset
	catalog    *wms.Catalog
	fetcher    *wms.Fetcher
	product    wms.Product
	spacing    float64
}

// NewAuto creates a state-routing downloader.
func NewAuto(boundaries *boundary.Dataset, catalog *wms.Catalog, fetcher *wms.Fetcher, product wms.Product, spacing float64) *AutoDownloader {
	return &AutoDownloader{
		boundaries: boundaries,
		catalog:    catalog,
		fetcher:    fetcher,
		product:    product,
		spacing:    spacing,
	}
}

// Download fetches the AOI from every intersecting state's service
// and returns the per-state datasets keyed by state name. Each state
// gets a subdirectory under outDir and its disjoint share of the
// grid tiles. States whose download fails are logged and skipped;
// an error is returned only when no state produced a dataset.
func (a *AutoDownloader) Download(ctx context.Context, name string, aoi orb.Polygon, outDir string, opts Options) (map[string]*raster.AreaDataset, error) {
	states := a.boundaries.Intersecting(aoi)
	if len(states) == 0 {
		return nil, boundary.ErrNoStates
	}

	tiles := filterByMask(Tiles(aoi, opts.Buffer, a.spacing), opts.MaskPolygon)
	assigned := boundary.AssignTiles(tiles, states)

	results := make(map[string]*raster.AreaDataset, len(states))
	var lastErr error
	for _, s := range states {
		stateTiles := assigned[s.Code]
		if len(stateTiles) == 0 {
			continue
		}

		log := zap.L().With(zap.String("state", s.Name), zap.String("code", s.Code))

		dl, err := a.downloaderFor(s.Code)
		if err != nil {
			log.Error("no usable service for state", zap.Error(err))
			lastErr = err
			continue
		}

		slug := boundary.Slug(s.Name)
		stateDir := filepath.Join(outDir, slug)
		ds, err := dl.DownloadTiles(ctx, name+"_"+slug, aoi, stateTiles, stateDir, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			log.Error("state download failed", zap.Error(err))
			lastErr = err
			continue
		}
		results[s.Name] = ds
	}

	if len(results) == 0 {
		if lastErr != nil {
			return nil, eris.Wrap(lastErr, "downloader: all state downloads failed")
		}
		return nil, eris.New("downloader: no tiles were assigned to any state")
	}
	return results, nil
}

func (a *AutoDownloader) downloaderFor(state string) (*ImageDownloader, error) {
	switch a.product {
	case wms.ProductRGBI:
		rgbSvc, err := a.catalog.Service(state, wms.ProductRGB)
		if err != nil {
			return nil, err
		}
		cirSvc, err := a.catalog.Service(state, wms.ProductCIR)
		if err != nil {
			return nil, err
		}
		return NewRGBI(rgbSvc, cirSvc, a.fetcher, a.spacing)
	default:
		svc, err := a.catalog.Service(state, a.product)
		if err != nil {
			return nil, err
		}
		return New(svc, a.fetcher, a.spacing)
	}
}
