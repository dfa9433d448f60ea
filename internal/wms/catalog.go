// Package wms talks to the OGC Web Map Services of the German federal
// states: a catalog of known DOP endpoints, GetMap tile requests and a
// GetCapabilities probe.
package wms

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Product identifies an imagery product offered by a state service.
type Product string

const (
	ProductRGB Product = "rgb"
	ProductCIR Product = "cir"
	// ProductRGBI is synthesized from RGB and CIR tiles; no state
	// publishes it directly.
	ProductRGBI Product = "rgbi"
)

// ParseProduct validates a product name from user input.
func ParseProduct(s string) (Product, error) {
	switch Product(s) {
	case ProductRGB, ProductCIR, ProductRGBI:
		return Product(s), nil
	}
	return "", eris.Errorf("wms: unknown product %q (want rgb, cir or rgbi)", s)
}

// Service describes one WMS endpoint with the parameters needed to
// request tiles from it.
type Service struct {
	State      string  `yaml:"-"`
	Product    Product `yaml:"-"`
	URL        string  `yaml:"url"`
	Version    string  `yaml:"version"`
	Layer      string  `yaml:"layer"`
	Format     string  `yaml:"format"`
	Resolution float64 `yaml:"resolution"`
	CRS        string  `yaml:"crs"`
}

// DefaultCRS is the CRS every catalog service publishes (ETRS89 / UTM 32N).
const DefaultCRS = "EPSG:25832"

// EPSGCode returns the numeric EPSG code of the service CRS.
func (s Service) EPSGCode() (int, error) {
	var code int
	if _, err := fmt.Sscanf(s.CRS, "EPSG:%d", &code); err != nil {
		return 0, eris.Errorf("wms: CRS %q is not an EPSG code", s.CRS)
	}
	return code, nil
}

//go:embed services.yaml
var servicesYAML []byte

// Catalog maps federal state codes to their registered services.
type Catalog struct {
	states map[string]map[Product]Service
}

type catalogFile struct {
	States map[string]map[Product]Service `yaml:"states"`
}

// DefaultCatalog parses the embedded service catalog.
func DefaultCatalog() (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(servicesYAML, &f); err != nil {
		return nil, eris.Wrap(err, "wms: parse service catalog")
	}
	return NewCatalog(f.States)
}

// NewCatalog builds a catalog from explicit service registrations,
// filling in state, product and the default CRS on each entry.
func NewCatalog(states map[string]map[Product]Service) (*Catalog, error) {
	c := &Catalog{states: make(map[string]map[Product]Service, len(states))}
	for state, products := range states {
		m := make(map[Product]Service, len(products))
		for product, svc := range products {
			svc.State = state
			svc.Product = product
			if svc.CRS == "" {
				svc.CRS = DefaultCRS
			}
			if svc.URL == "" || svc.Layer == "" || svc.Resolution <= 0 {
				return nil, eris.Errorf("wms: incomplete catalog entry %s/%s", state, product)
			}
			m[product] = svc
		}
		c.states[state] = m
	}
	return c, nil
}

// Service returns the registered service for a state and product.
func (c *Catalog) Service(state string, product Product) (Service, error) {
	svc, ok := c.states[state][product]
	if !ok {
		return Service{}, eris.Errorf("wms: no %s service registered for state %s", product, state)
	}
	return svc, nil
}

// Has reports whether a service is registered for the state and product.
func (c *Catalog) Has(state string, product Product) bool {
	_, ok := c.states[state][product]
	return ok
}

// States returns the sorted state codes present in the catalog.
func (c *Catalog) States() []string {
	codes := make([]string, 0, len(c.states))
	for code := range c.states {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ServicesFor returns the services registered for one state,
// RGB before CIR.
func (c *Catalog) ServicesFor(state string) []Service {
	var out []Service
	for _, p := range []Product{ProductRGB, ProductCIR} {
		if svc, ok := c.states[state][p]; ok {
			out = append(out, svc)
		}
	}
	return out
}

// BKGService returns the nationwide BKG DOP service. Access requires a
// purchased UUID, which becomes part of the endpoint path.
func BKGService(uuid string) Service {
	return Service{
		State:      "DE",
		Product:    ProductRGB,
		URL:        fmt.Sprintf("https://sg.geodatenzentrum.de/wms_dop__%s?", uuid),
		Version:    "1.1.1",
		Layer:      "rgb",
		Format:     "image/tiff",
		Resolution: 0.2,
		CRS:        DefaultCRS,
	}
}
