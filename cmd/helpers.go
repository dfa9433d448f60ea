package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/luftbild/ortho-cli/internal/boundary"
	"github.com/luftbild/ortho-cli/internal/wms"
)

func newFetcher() *wms.Fetcher {
	return wms.NewFetcher(wms.FetcherOptions{
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    time.Duration(cfg.HTTP.TimeoutSecs) * time.Second,
		MaxRetries: cfg.HTTP.MaxRetries,
		RateLimit:  rate.Limit(cfg.HTTP.RateLimit),
		Burst:      cfg.HTTP.Burst,
	})
}

// loadBoundaries reads the federal state dataset from the configured
// local file, or downloads it.
func loadBoundaries(ctx context.Context) (*boundary.Dataset, error) {
	if cfg.Boundary.File != "" {
		return boundary.LoadFile(cfg.Boundary.File, boundary.FileOptions{
			NameField: cfg.Boundary.NameField,
			CodeField: cfg.Boundary.CodeField,
		})
	}
	client := &http.Client{Timeout: time.Duration(cfg.HTTP.TimeoutSecs) * time.Second}
	return boundary.FetchDataset(ctx, client, cfg.Boundary.URL)
}

// resolveAOI builds the AOI polygon from the --bbox or --aoi flag.
func resolveAOI(cmd *cobra.Command) (orb.Polygon, error) {
	bbox, _ := cmd.Flags().GetString("bbox")
	aoiFile, _ := cmd.Flags().GetString("aoi")
	switch {
	case bbox != "" && aoiFile != "":
		return nil, eris.New("--bbox and --aoi are mutually exclusive")
	case bbox != "":
		return parseBBox(bbox)
	case aoiFile != "":
		return loadAOIFile(aoiFile)
	}
	return nil, eris.New("either --bbox or --aoi is required")
}

// parseBBox parses "minx,miny,maxx,maxy" in EPSG:25832 meters into a
// rectangular AOI polygon.
func parseBBox(s string) (orb.Polygon, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, eris.Errorf("bbox %q must be minx,miny,maxx,maxy", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "bbox coordinate %q", p)
		}
		vals[i] = v
	}
	if vals[0] >= vals[2] || vals[1] >= vals[3] {
		return nil, eris.Errorf("bbox %q has empty extent", s)
	}
	return orb.Polygon{{
		{vals[0], vals[1]}, {vals[2], vals[1]},
		{vals[2], vals[3]}, {vals[0], vals[3]},
		{vals[0], vals[1]},
	}}, nil
}

// loadAOIFile reads a polygon AOI from a GeoJSON file. Geographic
// coordinates are projected to EPSG:25832.
func loadAOIFile(path string) (orb.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read AOI file %s", path)
	}

	if poly := polygonFromGeoJSON(data); poly != nil {
		return boundary.ProjectIfGeographic(poly), nil
	}
	return nil, eris.Errorf("AOI file %s contains no polygon", path)
}

func polygonFromGeoJSON(data []byte) orb.Polygon {
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		for _, f := range fc.Features {
			if poly := asPolygon(f.Geometry); poly != nil {
				return poly
			}
		}
		return nil
	}
	if f, err := geojson.UnmarshalFeature(data); err == nil {
		return asPolygon(f.Geometry)
	}
	if g, err := geojson.UnmarshalGeometry(data); err == nil {
		return asPolygon(g.Geometry())
	}
	return nil
}

func asPolygon(g orb.Geometry) orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return v
	case orb.MultiPolygon:
		if len(v) > 0 {
			return v[0]
		}
	}
	return nil
}
