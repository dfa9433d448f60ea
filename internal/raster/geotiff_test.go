package raster

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tiffTags parses the first IFD of a little-endian TIFF into a map of
// tag -> (type, count, raw value/offset word).
func tiffTags(t *testing.T, data []byte) map[uint16][3]uint32 {
	t.Helper()
	le := binary.LittleEndian
	require.Equal(t, "II", string(data[:2]))
	require.Equal(t, uint16(42), le.Uint16(data[2:]))
	ifd := le.Uint32(data[4:])
	n := int(le.Uint16(data[ifd:]))
	tags := make(map[uint16][3]uint32, n)
	for i := 0; i < n; i++ {
		e := data[int(ifd)+2+12*i:]
		tags[le.Uint16(e)] = [3]uint32{
			uint32(le.Uint16(e[2:])),
			le.Uint32(e[4:]),
			le.Uint32(e[8:]),
		}
	}
	return tags
}

func TestWriteGeoTIFFRGB(t *testing.T) {
	r := Raster{Width: 4, Height: 3, Samples: 3}
	r.Pixels = make([]byte, 4*3*3)
	for i := range r.Pixels {
		r.Pixels[i] = byte(i)
	}
	ref := GeoRef{UpperLeftX: 690000, UpperLeftY: 5336000, Resolution: 0.2, EPSG: 25832}

	path := filepath.Join(t.TempDir(), "tile.tif")
	require.NoError(t, WriteGeoTIFF(path, r, ref))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tags := tiffTags(t, data)
	le := binary.LittleEndian

	assert.Equal(t, uint32(4), tags[tagImageWidth][2])
	assert.Equal(t, uint32(3), tags[tagImageLength][2])
	assert.Equal(t, uint32(3), tags[tagSamplesPerPixel][2])
	assert.Equal(t, uint32(1), tags[tagCompression][2])
	assert.Equal(t, uint32(2), tags[tagPhotometric][2])
	assert.Equal(t, uint32(36), tags[tagStripByteCounts][2])

	// pixel data must round-trip through the strip offset
	off := tags[tagStripOffsets][2]
	assert.Equal(t, r.Pixels, data[off:off+36])

	// pixel scale doubles
	require.Equal(t, uint32(3), tags[tagModelPixelScale][1])
	ps := tags[tagModelPixelScale][2]
	assert.Equal(t, 0.2, math.Float64frombits(le.Uint64(data[ps:])))

	// tiepoint maps raster origin to the world upper-left corner
	tp := tags[tagModelTiepoint][2]
	assert.Equal(t, 690000.0, math.Float64frombits(le.Uint64(data[tp+24:])))
	assert.Equal(t, 5336000.0, math.Float64frombits(le.Uint64(data[tp+32:])))

	// the EPSG code sits in the last geokey entry
	gk := tags[tagGeoKeyDirectory][2]
	assert.Equal(t, uint16(3072), le.Uint16(data[gk+24:]))
	assert.Equal(t, uint16(25832), le.Uint16(data[gk+30:]))
}

func TestWriteGeoTIFFGray(t *testing.T) {
	r := Raster{Width: 2, Height: 2, Samples: 1, Pixels: []byte{0, 255, 128, 64}}
	path := filepath.Join(t.TempDir(), "mask.tif")
	require.NoError(t, WriteGeoTIFF(path, r, GeoRef{Resolution: 1, EPSG: 25832}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tags := tiffTags(t, data)
	assert.Equal(t, uint32(1), tags[tagPhotometric][2])
	assert.Equal(t, uint32(8), tags[tagBitsPerSample][2])
	_, hasExtra := tags[tagExtraSamples]
	assert.False(t, hasExtra)
}

func TestWriteGeoTIFFFourBand(t *testing.T) {
	r := Raster{Width: 1, Height: 1, Samples: 4, Pixels: []byte{1, 2, 3, 4}}
	path := filepath.Join(t.TempDir(), "rgbi.tif")
	require.NoError(t, WriteGeoTIFF(path, r, GeoRef{Resolution: 0.2, EPSG: 25832}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tags := tiffTags(t, data)
	assert.Equal(t, uint32(4), tags[tagSamplesPerPixel][2])
	assert.Equal(t, uint32(0), tags[tagExtraSamples][2])
}

func TestWriteGeoTIFFBadBuffer(t *testing.T) {
	r := Raster{Width: 2, Height: 2, Samples: 3, Pixels: []byte{1}}
	err := WriteGeoTIFF(filepath.Join(t.TempDir(), "x.tif"), r, GeoRef{})
	assert.Error(t, err)

	r2 := Raster{Width: 1, Height: 1, Samples: 2, Pixels: []byte{1, 2}}
	err = WriteGeoTIFF(filepath.Join(t.TempDir(), "y.tif"), r2, GeoRef{})
	assert.Error(t, err)
}
