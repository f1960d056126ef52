// Package normalize converts bitmapper output (palette indices, or raw
// samples at any rescaled-but-not-yet-expanded depth) into the canonical
// 8-bit RGBA buffer a Raster carries.
package normalize

import (
	"github.com/pkg/errors"

	"github.com/pngcodec/pngcodec/raster"
)

// ErrPaletteIndex reports a palette index outside the palette's range.
var ErrPaletteIndex = errors.New("png: palette index out of range")

// ExpandPalette substitutes each index in idx (one byte per pixel) with
// its palette RGBA quad, writing into a freshly allocated 4*len(idx)
// buffer. It never aliases idx, per spec.md §9's buffer-aliasing note.
func ExpandPalette(idx []byte, pal raster.Palette) ([]byte, error) {
	out := make([]byte, len(idx)*4)
	for i, v := range idx {
		if int(v) >= len(pal) {
			return nil, errors.WithStack(ErrPaletteIndex)
		}
		c := pal[v]
		out[i*4+0] = c.R
		out[i*4+1] = c.G
		out[i*4+2] = c.B
		out[i*4+3] = c.A
	}
	return out, nil
}

// KeyTransparency zeroes every RGBA channel of pixels in rgba (u16 samples
// packed 4 per pixel: R,G,B,A at the source sample scale, A ignored) whose
// color matches opts.Trans. For colorType 0, only R is compared (the
// bitmapper stores gray into R at this stage); for colorType 2, R/G/B are
// compared as a triple. rgba is mutated in place.
func KeyTransparency(rgba []uint16, colorType uint8, trans *raster.TransColor) {
	if trans == nil {
		return
	}
	for i := 0; i < len(rgba); i += 4 {
		match := false
		switch colorType {
		case 0:
			match = rgba[i+0] == trans.Gray
		case 2:
			match = rgba[i+0] == trans.R && rgba[i+1] == trans.G && rgba[i+2] == trans.B
		}
		if match {
			rgba[i+0] = 0
			rgba[i+1] = 0
			rgba[i+2] = 0
			rgba[i+3] = 0
		}
	}
}

// Rescale8 narrows a u16-sample RGBA buffer (produced by the bitmapper at
// the source bit depth) down to 8-bit samples, rounding
// sample*255/maxIn per pixel channel. If depth is already 8, this is a
// cheap byte-narrowing copy with no rounding arithmetic.
func Rescale8(rgba []uint16, depth int) []byte {
	maxIn := (1 << uint(depth)) - 1
	out := make([]byte, len(rgba))
	if depth == 8 {
		for i, v := range rgba {
			out[i] = byte(v)
		}
		return out
	}
	for i, v := range rgba {
		out[i] = byte((int(v)*255 + maxIn/2) / maxIn)
	}
	return out
}
