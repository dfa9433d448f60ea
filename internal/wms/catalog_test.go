package wms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	// All 16 federal states carry an RGB service.
	assert.Len(t, c.States(), 16)
	for _, state := range c.States() {
		assert.True(t, c.Has(state, ProductRGB), "state %s missing rgb", state)
	}

	// CIR coverage is partial.
	assert.True(t, c.Has("BY", ProductCIR))
	assert.False(t, c.Has("NI", ProductCIR))
	assert.False(t, c.Has("SH", ProductCIR))
}

func TestCatalogService(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	svc, err := c.Service("BY", ProductRGB)
	require.NoError(t, err)
	assert.Equal(t, "BY", svc.State)
	assert.Equal(t, ProductRGB, svc.Product)
	assert.Equal(t, "by_dop20c", svc.Layer)
	assert.Equal(t, "1.1.1", svc.Version)
	assert.Equal(t, 0.2, svc.Resolution)
	assert.Equal(t, DefaultCRS, svc.CRS)

	_, err = c.Service("HB", ProductCIR)
	require.Error(t, err)
}

func TestBerlinBrandenburgShareEndpoint(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	be, err := c.Service("BE", ProductRGB)
	require.NoError(t, err)
	bb, err := c.Service("BB", ProductRGB)
	require.NoError(t, err)
	assert.Equal(t, be.URL, bb.URL)
	assert.Equal(t, be.Layer, bb.Layer)
}

func TestEPSGCode(t *testing.T) {
	svc := Service{CRS: "EPSG:25832"}
	code, err := svc.EPSGCode()
	require.NoError(t, err)
	assert.Equal(t, 25832, code)

	svc.CRS = "CRS:84"
	_, err = svc.EPSGCode()
	require.Error(t, err)
}

func TestParseProduct(t *testing.T) {
	p, err := ParseProduct("rgbi")
	require.NoError(t, err)
	assert.Equal(t, ProductRGBI, p)

	_, err = ParseProduct("thermal")
	require.Error(t, err)
}

func TestBKGService(t *testing.T) {
	svc := BKGService("deadbeef")
	assert.Contains(t, svc.URL, "wms_dop__deadbeef")
	assert.Equal(t, "DE", svc.State)
}
