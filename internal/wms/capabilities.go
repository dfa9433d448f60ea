package wms

import (
	"context"
	"encoding/xml"
	"net/url"

	"github.com/rotisserie/eris"
)

// Capabilities is the slice of a GetCapabilities document this tool
// cares about. No XMLName is pinned so the struct decodes both the
// 1.3.0 WMS_Capabilities and the 1.1.1 WMT_MS_Capabilities roots.
type Capabilities struct {
	Version string `xml:"version,attr"`
	Service struct {
		Name     string `xml:"Name"`
		Title    string `xml:"Title"`
		Abstract string `xml:"Abstract"`
	} `xml:"Service"`
	Capability struct {
		Request struct {
			GetMap struct {
				Format []string `xml:"Format"`
			} `xml:"GetMap"`
		} `xml:"Request"`
		Layer []Layer `xml:"Layer"`
	} `xml:"Capability"`
}

// Layer is a (possibly nested) WMS layer declaration.
type Layer struct {
	Name  string   `xml:"Name"`
	Title string   `xml:"Title"`
	CRS   []string `xml:"CRS"`
	SRS   []string `xml:"SRS"`
	Layer []Layer  `xml:"Layer"`
}

// NamedLayers flattens the layer tree to the layers that can actually
// be requested (those carrying a Name).
func (c *Capabilities) NamedLayers() []Layer {
	var out []Layer
	var walk func(layers []Layer)
	walk = func(layers []Layer) {
		for _, l := range layers {
			if l.Name != "" {
				out = append(out, l)
			}
			walk(l.Layer)
		}
	}
	walk(c.Capability.Layer)
	return out
}

// HasLayer reports whether a requestable layer with the given name exists.
func (c *Capabilities) HasLayer(name string) bool {
	for _, l := range c.NamedLayers() {
		if l.Name == name {
			return true
		}
	}
	return false
}

// GetCapabilities fetches and parses the capabilities document of the
// client's service.
func (c *Client) GetCapabilities(ctx context.Context) (*Capabilities, error) {
	u, err := url.Parse(c.svc.URL)
	if err != nil {
		return nil, eris.Wrapf(err, "wms: parse service URL %s", c.svc.URL)
	}
	q := u.Query()
	q.Set("SERVICE", "WMS")
	q.Set("VERSION", c.svc.Version)
	q.Set("REQUEST", "GetCapabilities")
	u.RawQuery = q.Encode()

	data, _, err := c.fetcher.Get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var caps Capabilities
	if err := xml.Unmarshal(data, &caps); err != nil {
		return nil, eris.Wrapf(err, "wms: parse capabilities from %s", c.svc.URL)
	}
	return &caps, nil
}
