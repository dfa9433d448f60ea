package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/luftbild/ortho-cli/internal/wms"
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List federal states and their available products",
	Long:  "Lists the states registered in the service catalog. With --bbox or --aoi, only the states whose boundary intersects the given area are shown.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		catalog, err := wms.DefaultCatalog()
		if err != nil {
			return eris.Wrap(err, "states")
		}

		bbox, _ := cmd.Flags().GetString("bbox")
		aoiFile, _ := cmd.Flags().GetString("aoi")
		if bbox == "" && aoiFile == "" {
			for _, code := range catalog.States() {
				fmt.Printf("%-4s %s\n", code, productList(catalog, code))
			}
			return nil
		}

		aoi, err := resolveAOI(cmd)
		if err != nil {
			return err
		}
		boundaries, err := loadBoundaries(ctx)
		if err != nil {
			return eris.Wrap(err, "states")
		}

		intersecting := boundaries.Intersecting(aoi)
		if len(intersecting) == 0 {
			fmt.Println("no federal state intersects the given area")
			return nil
		}
		for _, s := range intersecting {
			fmt.Printf("%-4s %-24s %s\n", s.Code, s.Name, productList(catalog, s.Code))
		}
		return nil
	},
}

func productList(catalog *wms.Catalog, code string) string {
	out := ""
	for _, p := range []wms.Product{wms.ProductRGB, wms.ProductCIR} {
		if catalog.Has(code, p) {
			if out != "" {
				out += ","
			}
			out += string(p)
		}
	}
	if catalog.Has(code, wms.ProductRGB) && catalog.Has(code, wms.ProductCIR) {
		out += ",rgbi"
	}
	if out == "" {
		out = "(no services)"
	}
	return out
}

func init() {
	statesCmd.Flags().String("bbox", "", "AOI as minx,miny,maxx,maxy in EPSG:25832 meters")
	statesCmd.Flags().String("aoi", "", "AOI polygon as a GeoJSON file")
	rootCmd.AddCommand(statesCmd)
}
