package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/luftbild/ortho-cli/internal/boundary"
	"github.com/luftbild/ortho-cli/internal/raster"
	"github.com/luftbild/ortho-cli/internal/wms"
)

// Options controls a download run.
type Options struct {
	// Buffer widens the grid beyond the AOI, in meters.
	Buffer float64
	// Mask additionally writes a binary mask per tile.
	Mask bool
	// MaskPolygon overrides the AOI as the mask geometry.
	MaskPolygon orb.Polygon
}

func (o Options) maskFor(aoi orb.Polygon) orb.Polygon {
	if o.MaskPolygon != nil {
		return o.MaskPolygon
	}
	return aoi
}

// tileSource produces decoded pixels for one grid tile.
type tileSource interface {
	fetchTile(ctx context.Context, tile orb.Bound, widthPx, heightPx int) (raster.Raster, error)
}

// ImageDownloader downloads all grid tiles of an area from one WMS
// endpoint (or an RGB/CIR pair, see NewRGBI), sequentially.
type ImageDownloader struct {
	source     tileSource
	spacing    float64
	resolution float64
	crs        string
	epsg       int
	pixels     int
}

func errBadSpacing(spacing, resolution float64) error {
	return eris.Errorf("downloader: grid spacing %gm is not a multiple of the %gm service resolution",
		spacing, resolution)
}

// New creates a downloader for a single service.
func New(svc wms.Service, fetcher *wms.Fetcher, spacing float64) (*ImageDownloader, error) {
	px, err := PixelSize(spacing, svc.Resolution)
	if err != nil {
		return nil, err
	}
	epsg, err := svc.EPSGCode()
	if err != nil {
		return nil, err
	}
	return &ImageDownloader{
		source:     singleSource{client: wms.NewClient(svc, fetcher)},
		spacing:    spacing,
		resolution: svc.Resolution,
		crs:        svc.CRS,
		epsg:       epsg,
		pixels:     px,
	}, nil
}

type singleSource struct {
	client *wms.Client
}

func (s singleSource) fetchTile(ctx context.Context, tile orb.Bound, widthPx, heightPx int) (raster.Raster, error) {
	data, err := s.client.GetMap(ctx, tile, widthPx, heightPx)
	if err != nil {
		return raster.Raster{}, err
	}
	return raster.Decode(data)
}

// DownloadPolygon computes the grid for aoi and downloads it. A mask
// polygon narrows the grid to tiles the mask touches.
func (d *ImageDownloader) DownloadPolygon(ctx context.Context, name string, aoi orb.Polygon, outDir string, opts Options) (*raster.AreaDataset, error) {
	tiles := filterByMask(Tiles(aoi, opts.Buffer, d.spacing), opts.MaskPolygon)
	return d.DownloadTiles(ctx, name, aoi, tiles, outDir, opts)
}

// filterByMask keeps the tiles the mask polygon touches; a nil mask
// keeps everything.
func filterByMask(tiles []orb.Bound, mask orb.Polygon) []orb.Bound {
	if mask == nil {
		return tiles
	}
	mp := orb.MultiPolygon{mask}
	kept := tiles[:0]
	for _, tile := range tiles {
		if boundary.BoundIntersectsMultiPolygon(tile, mp) {
			kept = append(kept, tile)
		}
	}
	return kept
}

// DownloadTiles fetches the given tiles one by one and writes each as
// a GeoTIFF under outDir. A failing tile does not abort the run; it
// is logged and recorded in the dataset with empty paths.
func (d *ImageDownloader) DownloadTiles(ctx context.Context, name string, aoi orb.Polygon, tiles []orb.Bound, outDir string, opts Options) (*raster.AreaDataset, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "downloader: create output dir %s", outDir)
	}

	ds := &raster.AreaDataset{
		Name:       name,
		RunID:      uuid.NewString(),
		BufferSize: int(opts.Buffer),
		OutPath:    outDir,
		Polygon:    aoi,
		Images:     make([]raster.Image, 0, len(tiles)),
	}

	log := zap.L().With(zap.String("area", name), zap.String("run_id", ds.RunID))
	log.Info("starting download",
		zap.Int("tiles", len(tiles)),
		zap.Float64("spacing_m", d.spacing),
		zap.Float64("resolution_m", d.resolution),
	)

	for i, tile := range tiles {
		img, err := d.downloadTile(ctx, name, i, tile, aoi, outDir, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "downloader: download aborted")
			}
			log.Warn("tile download failed",
				zap.Int("tile", i),
				zap.Float64("min_x", tile.Min.X()),
				zap.Float64("min_y", tile.Min.Y()),
				zap.Error(err),
			)
			img = d.failedImage(tile)
		}
		ds.Images = append(ds.Images, img)
	}

	if err := ds.WriteManifest(); err != nil {
		return nil, err
	}
	log.Info("download finished",
		zap.Int("tiles", len(ds.Images)),
		zap.Int("failed", ds.FailedCount()),
	)
	return ds, nil
}

func (d *ImageDownloader) downloadTile(ctx context.Context, name string, idx int, tile orb.Bound, aoi orb.Polygon, outDir string, opts Options) (raster.Image, error) {
	start := time.Now()
	r, err := d.source.fetchTile(ctx, tile, d.pixels, d.pixels)
	if err != nil {
		return raster.Image{}, err
	}
	elapsed := time.Since(start)

	if r.Width != d.pixels || r.Height != d.pixels {
		return raster.Image{}, eris.Errorf("downloader: service returned %dx%d, want %dx%d",
			r.Width, r.Height, d.pixels, d.pixels)
	}

	ref := raster.GeoRef{
		UpperLeftX: tile.Min.X(),
		UpperLeftY: tile.Max.Y(),
		Resolution: d.resolution,
		EPSG:       d.epsg,
	}
	imagePath := filepath.Join(outDir, fmt.Sprintf("%s_%d.tif", name, idx))
	if err := raster.WriteGeoTIFF(imagePath, r, ref); err != nil {
		return raster.Image{}, err
	}

	img := raster.Image{
		ImagePath:    imagePath,
		UpperLeftX:   tile.Min.X(),
		UpperLeftY:   tile.Max.Y(),
		DownloadTime: elapsed.Seconds(),
		WidthM:       d.spacing,
		HeightM:      d.spacing,
		WidthPx:      d.pixels,
		HeightPx:     d.pixels,
		ResolutionM:  d.resolution,
		CRS:          d.crs,
	}

	if opts.Mask {
		mask := raster.RasterizeMask(opts.maskFor(aoi), tile, d.pixels, d.pixels, d.resolution)
		maskPath := filepath.Join(outDir, fmt.Sprintf("%s_%d_mask.tif", name, idx))
		if err := raster.WriteGeoTIFF(maskPath, mask, ref); err != nil {
			return raster.Image{}, err
		}
		img.MaskPath = maskPath
	}

	return img, nil
}

func (d *ImageDownloader) failedImage(tile orb.Bound) raster.Image {
	return raster.Image{
		UpperLeftX:  tile.Min.X(),
		UpperLeftY:  tile.Max.Y(),
		WidthM:      d.spacing,
		HeightM:     d.spacing,
		WidthPx:     d.pixels,
		HeightPx:    d.pixels,
		ResolutionM: d.resolution,
		CRS:         d.crs,
	}
}
