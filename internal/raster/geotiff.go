package raster

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"

	"github.com/rotisserie/eris"
)

// GeoRef places a raster in a projected coordinate system. X/Y are
// the world coordinates of the upper-left corner of the upper-left
// pixel.
type GeoRef struct {
	UpperLeftX float64
	UpperLeftY float64
	Resolution float64
	EPSG       int
}

// TIFF tag IDs used by the encoder.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284
	tagExtraSamples    = 338
	tagModelPixelScale = 33550
	tagModelTiepoint   = 33922
	tagGeoKeyDirectory = 34735
)

const (
	typeShort  = 3
	typeLong   = 4
	typeDouble = 12
)

type ifdEntry struct {
	tag      uint16
	typ      uint16
	count    uint32
	value    uint32 // inline value or offset to external data
	external []byte // nil when the value fits in four bytes
}

// WriteGeoTIFF encodes r as an uncompressed, single-strip baseline
// TIFF with GeoTIFF tags for a north-up raster in the given projected
// CRS, and writes it to path.
func WriteGeoTIFF(path string, r Raster, ref GeoRef) error {
	if r.Samples != 1 && r.Samples != 3 && r.Samples != 4 {
		return eris.Errorf("raster: unsupported sample count %d", r.Samples)
	}
	if len(r.Pixels) != r.Width*r.Height*r.Samples {
		return eris.Errorf("raster: pixel buffer is %d bytes, want %d",
			len(r.Pixels), r.Width*r.Height*r.Samples)
	}

	data, err := encodeGeoTIFF(r, ref)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "raster: write %s", path)
	}
	return nil
}

func encodeGeoTIFF(r Raster, ref GeoRef) ([]byte, error) {
	photometric := uint32(2) // RGB
	if r.Samples == 1 {
		photometric = 1 // BlackIsZero
	}

	entries := []ifdEntry{
		{tag: tagImageWidth, typ: typeLong, count: 1, value: uint32(r.Width)},
		{tag: tagImageLength, typ: typeLong, count: 1, value: uint32(r.Height)},
		bitsPerSampleEntry(r.Samples),
		{tag: tagCompression, typ: typeShort, count: 1, value: 1},
		{tag: tagPhotometric, typ: typeShort, count: 1, value: photometric},
		{tag: tagStripOffsets, typ: typeLong, count: 1}, // patched below
		{tag: tagSamplesPerPixel, typ: typeShort, count: 1, value: uint32(r.Samples)},
		{tag: tagRowsPerStrip, typ: typeLong, count: 1, value: uint32(r.Height)},
		{tag: tagStripByteCounts, typ: typeLong, count: 1, value: uint32(len(r.Pixels))},
		{tag: tagPlanarConfig, typ: typeShort, count: 1, value: 1},
	}
	if r.Samples == 4 {
		// The fourth band is NIR, not alpha.
		entries = append(entries, ifdEntry{tag: tagExtraSamples, typ: typeShort, count: 1, value: 0})
	}
	entries = append(entries,
		ifdEntry{tag: tagModelPixelScale, typ: typeDouble, count: 3,
			external: doubles(ref.Resolution, ref.Resolution, 0)},
		ifdEntry{tag: tagModelTiepoint, typ: typeDouble, count: 6,
			external: doubles(0, 0, 0, ref.UpperLeftX, ref.UpperLeftY, 0)},
		ifdEntry{tag: tagGeoKeyDirectory, typ: typeShort, count: 16,
			external: shorts(
				1, 1, 0, 3, // version, revision 1.0, 3 keys
				1024, 0, 1, 1, // GTModelType: projected
				1025, 0, 1, 1, // GTRasterType: pixel-is-area
				3072, 0, 1, uint16(ref.EPSG), // ProjectedCSType
			)},
	)

	headerSize := uint32(8)
	ifdSize := uint32(2 + 12*len(entries) + 4)
	extOffset := headerSize + ifdSize
	for i := range entries {
		if entries[i].external != nil {
			entries[i].value = extOffset
			extOffset += uint32(len(entries[i].external))
		}
	}
	pixelOffset := extOffset
	if pixelOffset%2 != 0 {
		pixelOffset++
	}
	for i := range entries {
		if entries[i].tag == tagStripOffsets {
			entries[i].value = pixelOffset
		}
	}

	var buf bytes.Buffer
	buf.Grow(int(pixelOffset) + len(r.Pixels))
	buf.WriteString("II")
	writeU16(&buf, 42)
	writeU32(&buf, headerSize) // first IFD directly after the header

	writeU16(&buf, uint16(len(entries)))
	for _, e := range entries {
		writeU16(&buf, e.tag)
		writeU16(&buf, e.typ)
		writeU32(&buf, e.count)
		if e.external == nil && e.typ == typeShort {
			// inline SHORT values sit in the low-order bytes
			writeU16(&buf, uint16(e.value))
			writeU16(&buf, 0)
		} else {
			writeU32(&buf, e.value)
		}
	}
	writeU32(&buf, 0) // no next IFD

	for _, e := range entries {
		if e.external != nil {
			buf.Write(e.external)
		}
	}
	for uint32(buf.Len()) < pixelOffset {
		buf.WriteByte(0)
	}
	buf.Write(r.Pixels)

	return buf.Bytes(), nil
}

func bitsPerSampleEntry(samples int) ifdEntry {
	e := ifdEntry{tag: tagBitsPerSample, typ: typeShort, count: uint32(samples)}
	switch samples {
	case 1:
		e.value = 8
	default:
		vals := make([]uint16, samples)
		for i := range vals {
			vals[i] = 8
		}
		e.external = shorts(vals...)
	}
	return e
}

func doubles(vals ...float64) []byte {
	out := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
	}
	return out
}

func shorts(vals ...uint16) []byte {
	out := make([]byte, 0, 2*len(vals))
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

func writeU16(buf *bytes.Buffer, v uint16) {
	buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func writeU32(buf *bytes.Buffer, v uint32) {
	buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}
