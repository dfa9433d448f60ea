package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luftbild/ortho-cli/internal/downloader"
	"github.com/luftbild/ortho-cli/internal/wms"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download orthophotos for an area of interest",
	Long:  "Detects which federal states the AOI intersects, splits the kilometer grid among them, and downloads every tile from the responsible state WMS. With --bkg the nationwide BKG service is used instead (requires a purchased access UUID).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return eris.New("download: --name is required")
		}

		aoi, err := resolveAOI(cmd)
		if err != nil {
			return err
		}

		productFlag, _ := cmd.Flags().GetString("product")
		if productFlag == "" {
			productFlag = cfg.Download.Product
		}
		product, err := wms.ParseProduct(productFlag)
		if err != nil {
			return err
		}

		spacing, _ := cmd.Flags().GetFloat64("grid-spacing")
		if spacing == 0 {
			spacing = float64(cfg.Download.GridSpacing)
		}
		buffer, _ := cmd.Flags().GetFloat64("buffer")
		if !cmd.Flags().Changed("buffer") {
			buffer = float64(cfg.Download.Buffer)
		}
		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = cfg.Download.OutDir
		}
		mask, _ := cmd.Flags().GetBool("mask")
		opts := downloader.Options{Buffer: buffer, Mask: mask}
		if maskFile, _ := cmd.Flags().GetString("mask-file"); maskFile != "" {
			maskPoly, err := loadAOIFile(maskFile)
			if err != nil {
				return err
			}
			opts.Mask = true
			opts.MaskPolygon = maskPoly
		}

		if useBKG, _ := cmd.Flags().GetBool("bkg"); useBKG {
			return downloadBKG(ctx, name, aoi, outDir, spacing, opts)
		}

		boundaries, err := loadBoundaries(ctx)
		if err != nil {
			return eris.Wrap(err, "download")
		}
		catalog, err := wms.DefaultCatalog()
		if err != nil {
			return eris.Wrap(err, "download")
		}

		auto := downloader.NewAuto(boundaries, catalog, newFetcher(), product, spacing)
		results, err := auto.Download(ctx, name, aoi, outDir, opts)
		if err != nil {
			return eris.Wrap(err, "download")
		}

		states := make([]string, 0, len(results))
		for s := range results {
			states = append(states, s)
		}
		sort.Strings(states)
		for _, s := range states {
			ds := results[s]
			fmt.Printf("%s: %d tiles (%d failed) -> %s\n",
				s, len(ds.Images), ds.FailedCount(), ds.OutPath)
		}
		return nil
	},
}

func downloadBKG(ctx context.Context, name string, aoi orb.Polygon, outDir string, spacing float64, opts downloader.Options) error {
	if cfg.Download.BKGUUID == "" {
		return eris.New("download: --bkg requires download.bkg_uuid in the configuration")
	}

	dl, err := downloader.New(wms.BKGService(cfg.Download.BKGUUID), newFetcher(), spacing)
	if err != nil {
		return eris.Wrap(err, "download")
	}

	zap.L().Info("using nationwide BKG service", zap.String("area", name))
	ds, err := dl.DownloadPolygon(ctx, name, aoi, filepath.Join(outDir, name), opts)
	if err != nil {
		return eris.Wrap(err, "download")
	}
	fmt.Printf("%s: %d tiles (%d failed) -> %s\n",
		name, len(ds.Images), ds.FailedCount(), ds.OutPath)
	return nil
}

func init() {
	downloadCmd.Flags().String("name", "", "name of the download area (used in file names)")
	downloadCmd.Flags().String("bbox", "", "AOI as minx,miny,maxx,maxy in EPSG:25832 meters")
	downloadCmd.Flags().String("aoi", "", "AOI polygon as a GeoJSON file")
	downloadCmd.Flags().String("product", "", "imagery product: rgb, cir or rgbi")
	downloadCmd.Flags().Float64("grid-spacing", 0, "tile edge length in meters")
	downloadCmd.Flags().Float64("buffer", 0, "extra margin around the AOI in meters")
	downloadCmd.Flags().String("out", "", "output directory")
	downloadCmd.Flags().Bool("mask", false, "also write a binary AOI mask per tile")
	downloadCmd.Flags().String("mask-file", "", "GeoJSON polygon to rasterize as mask instead of the AOI")
	downloadCmd.Flags().Bool("bkg", false, "use the nationwide BKG service instead of state services")
	rootCmd.AddCommand(downloadCmd)
}
