package wms

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client requests map tiles from a single WMS service.
type Client struct {
	svc     Service
	fetcher *Fetcher
}

// NewClient creates a Client for the given service.
func NewClient(svc Service, fetcher *Fetcher) *Client {
	return &Client{svc: svc, fetcher: fetcher}
}

// Service returns the service this client talks to.
func (c *Client) Service() Service {
	return c.svc
}

// MapURL builds the GetMap request URL for a bounding box in the
// service CRS and an output size in pixels. Query parameters baked
// into the catalog URL are preserved.
func (c *Client) MapURL(bbox orb.Bound, widthPx, heightPx int) (string, error) {
	u, err := url.Parse(c.svc.URL)
	if err != nil {
		return "", eris.Wrapf(err, "wms: parse service URL %s", c.svc.URL)
	}

	q := u.Query()
	q.Set("SERVICE", "WMS")
	q.Set("VERSION", c.svc.Version)
	q.Set("REQUEST", "GetMap")
	q.Set("LAYERS", c.svc.Layer)
	q.Set("STYLES", "")
	q.Set("FORMAT", c.svc.Format)
	q.Set("WIDTH", fmt.Sprintf("%d", widthPx))
	q.Set("HEIGHT", fmt.Sprintf("%d", heightPx))

	// WMS 1.3.0 renamed SRS to CRS and honors the CRS axis order.
	// EPSG:25832 is defined easting-first, so only the geographic
	// CRSes need the swap.
	minx, miny, maxx, maxy := bbox.Min[0], bbox.Min[1], bbox.Max[0], bbox.Max[1]
	if c.svc.Version == "1.3.0" {
		q.Set("CRS", c.svc.CRS)
		if invertedAxis(c.svc.CRS) {
			minx, miny, maxx, maxy = miny, minx, maxy, maxx
		}
	} else {
		q.Set("SRS", c.svc.CRS)
	}
	q.Set("BBOX", fmt.Sprintf("%f,%f,%f,%f", minx, miny, maxx, maxy))

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// invertedAxis reports whether the CRS is latitude-first under WMS 1.3.0.
func invertedAxis(crs string) bool {
	switch crs {
	case "EPSG:4326", "EPSG:4258":
		return true
	}
	return false
}

// GetMap fetches one tile. The services answer errors as XML with
// status 200, so the content type is checked before the bytes are
// treated as image data.
func (c *Client) GetMap(ctx context.Context, bbox orb.Bound, widthPx, heightPx int) ([]byte, error) {
	mapURL, err := c.MapURL(bbox, widthPx, heightPx)
	if err != nil {
		return nil, err
	}

	data, contentType, err := c.fetcher.Get(ctx, mapURL)
	if err != nil {
		return nil, err
	}

	if strings.Contains(contentType, "xml") || strings.Contains(contentType, "html") {
		msg := parseServiceException(data)
		zap.L().Debug("wms: service exception",
			zap.String("state", c.svc.State),
			zap.String("url", mapURL),
			zap.String("message", msg),
		)
		return nil, eris.Errorf("wms: %s %s GetMap failed: %s", c.svc.State, c.svc.Product, msg)
	}

	return data, nil
}

// serviceExceptionReport matches both the 1.1.1 and the ogc-namespaced
// 1.3.0 exception documents.
type serviceExceptionReport struct {
	Exceptions []struct {
		Code string `xml:"code,attr"`
		Text string `xml:",chardata"`
	} `xml:"ServiceException"`
}

func parseServiceException(data []byte) string {
	var report serviceExceptionReport
	if err := xml.Unmarshal(data, &report); err != nil || len(report.Exceptions) == 0 {
		return "service returned non-image response"
	}
	parts := make([]string, 0, len(report.Exceptions))
	for _, e := range report.Exceptions {
		text := strings.TrimSpace(e.Text)
		if e.Code != "" {
			text = e.Code + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "; ")
}
