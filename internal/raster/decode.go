package raster

import (
	"bytes"
	"image"

	_ "image/jpeg"
	_ "image/png"

	"github.com/rotisserie/eris"
	_ "golang.org/x/image/tiff"
)

// Raster is decoded pixel data ready to be written as a GeoTIFF.
// Pixels are row-major with samples interleaved.
type Raster struct {
	Pixels  []byte
	Width   int
	Height  int
	Samples int
}

// Decode parses an encoded WMS map image into an 8-bit RGB raster.
// Any alpha channel is dropped; the services deliver fully opaque
// tiles inside their coverage.
func Decode(data []byte) (Raster, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Raster{}, eris.Wrap(err, "raster: decode image")
	}

	b := img.Bounds()
	r := Raster{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Samples: 3,
	}
	r.Pixels = make([]byte, r.Width*r.Height*3)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r.Pixels[i] = byte(cr >> 8)
			r.Pixels[i+1] = byte(cg >> 8)
			r.Pixels[i+2] = byte(cb >> 8)
			i += 3
		}
	}
	return r, nil
}

// Band extracts a single zero-indexed band as a new grayscale raster.
func (r Raster) Band(n int) (Raster, error) {
	if n < 0 || n >= r.Samples {
		return Raster{}, eris.Errorf("raster: band %d out of range (%d samples)", n, r.Samples)
	}
	out := Raster{Width: r.Width, Height: r.Height, Samples: 1}
	out.Pixels = make([]byte, r.Width*r.Height)
	for i := range out.Pixels {
		out.Pixels[i] = r.Pixels[i*r.Samples+n]
	}
	return out, nil
}

// Stack appends the bands of other onto r, pixel by pixel. Both
// rasters must share the same dimensions.
func (r Raster) Stack(other Raster) (Raster, error) {
	if r.Width != other.Width || r.Height != other.Height {
		return Raster{}, eris.Errorf("raster: cannot stack %dx%d onto %dx%d",
			other.Width, other.Height, r.Width, r.Height)
	}
	out := Raster{
		Width:   r.Width,
		Height:  r.Height,
		Samples: r.Samples + other.Samples,
	}
	out.Pixels = make([]byte, r.Width*r.Height*out.Samples)
	for p := 0; p < r.Width*r.Height; p++ {
		copy(out.Pixels[p*out.Samples:], r.Pixels[p*r.Samples:(p+1)*r.Samples])
		copy(out.Pixels[p*out.Samples+r.Samples:], other.Pixels[p*other.Samples:(p+1)*other.Samples])
	}
	return out, nil
}
