package downloader

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/luftbild/ortho-cli/internal/raster"
	"github.com/luftbild/ortho-cli/internal/wms"
)

// NewRGBI creates a downloader that merges an RGB service with the
// near-infrared band of a matching CIR service into four-band tiles.
// Both services must share the same resolution and CRS.
func NewRGBI(rgbSvc, cirSvc wms.Service, fetcher *wms.Fetcher, spacing float64) (*ImageDownloader, error) {
	if rgbSvc.Resolution != cirSvc.Resolution {
		return nil, eris.Errorf("downloader: RGB resolution %gm differs from CIR resolution %gm",
			rgbSvc.Resolution, cirSvc.Resolution)
	}
	if rgbSvc.CRS != cirSvc.CRS {
		return nil, eris.Errorf("downloader: RGB CRS %s differs from CIR CRS %s",
			rgbSvc.CRS, cirSvc.CRS)
	}

	px, err := PixelSize(spacing, rgbSvc.Resolution)
	if err != nil {
		return nil, err
	}
	epsg, err := rgbSvc.EPSGCode()
	if err != nil {
		return nil, err
	}
	return &ImageDownloader{
		source: rgbiSource{
			rgb: wms.NewClient(rgbSvc, fetcher),
			cir: wms.NewClient(cirSvc, fetcher),
		},
		spacing:    spacing,
		resolution: rgbSvc.Resolution,
		crs:        rgbSvc.CRS,
		epsg:       epsg,
		pixels:     px,
	}, nil
}

type rgbiSource struct {
	rgb *wms.Client
	cir *wms.Client
}

// fetchTile downloads both renderings of the tile and stacks the NIR
// band of the CIR image onto the RGB bands.
func (s rgbiSource) fetchTile(ctx context.Context, tile orb.Bound, widthPx, heightPx int) (raster.Raster, error) {
	rgbData, err := s.rgb.GetMap(ctx, tile, widthPx, heightPx)
	if err != nil {
		return raster.Raster{}, eris.Wrap(err, "downloader: RGB tile")
	}
	rgb, err := raster.Decode(rgbData)
	if err != nil {
		return raster.Raster{}, eris.Wrap(err, "downloader: RGB tile")
	}

	cirData, err := s.cir.GetMap(ctx, tile, widthPx, heightPx)
	if err != nil {
		return raster.Raster{}, eris.Wrap(err, "downloader: CIR tile")
	}
	cir, err := raster.Decode(cirData)
	if err != nil {
		return raster.Raster{}, eris.Wrap(err, "downloader: CIR tile")
	}

	// CIR renders NIR in the first band.
	nir, err := cir.Band(0)
	if err != nil {
		return raster.Raster{}, err
	}
	return rgb.Stack(nir)
}
