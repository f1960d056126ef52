// Package raster defines the codec's core data model: the decoded Raster,
// the decoder-internal Metadata, the Palette, simple-transparency
// TransColor, and the encoder's EncodeOptions.
package raster

import "github.com/pkg/errors"

// ErrDimensions reports a Raster whose buffer length does not match
// 4*width*height.
var ErrDimensions = errors.New("png: raster buffer length does not match width*height*4")

// PixelsPerUnit carries a pHYs chunk's pixel-density hint through decode
// (and optionally back out through encode). It never affects pixel
// values; spec.md's Non-goals exclude pHYs from pixel processing, not
// from metadata pass-through.
type PixelsPerUnit struct {
	X, Y uint32
	Unit byte // 0 = unknown, 1 = meter
}

// Raster is a normalized, 8-bit-per-channel RGBA image.
type Raster struct {
	Width, Height uint32
	Pix           []byte // len == 4*Width*Height
	Gamma         float64 // 0 means unset
	PixelsPerUnit *PixelsPerUnit
}

// Validate checks the Width/Height/Pix invariant.
func (r *Raster) Validate() error {
	want := 4 * int(r.Width) * int(r.Height)
	if len(r.Pix) != want {
		return errors.WithStack(ErrDimensions)
	}
	if r.Width == 0 || r.Height == 0 {
		return errors.WithStack(ErrDimensions)
	}
	return nil
}

// ColorType values, per the PNG spec: sums of palette=1, color=2, alpha=4.
const (
	ColorTypeGrayscale      = 0
	ColorTypeTrueColor      = 2
	ColorTypePaletted       = 3
	ColorTypeGrayscaleAlpha = 4
	ColorTypeTrueColorAlpha = 6
)

const (
	flagPalette = 1
	flagColor   = 2
	flagAlpha   = 4
)

// BPPTable maps a color type to the number of channels (bpp, not bytes)
// implied by that color type, per spec.md §6.
var BPPTable = map[int]int{
	ColorTypeGrayscale:      1,
	ColorTypeTrueColor:      3,
	ColorTypePaletted:       1,
	ColorTypeGrayscaleAlpha: 2,
	ColorTypeTrueColorAlpha: 4,
}

// Metadata holds everything the decoder learns from IHDR plus whatever
// ancillary chunks arrive before IDAT. It is immutable once IHDR parsing
// completes except for the fields ancillary chunks fill in afterward
// (Palette, Trans, Gamma, PixelsPerUnit), which only ever arrive before
// the first IDAT per spec.md §3's chunk-ordering invariant.
type Metadata struct {
	Width, Height uint32
	Depth         uint8
	ColorType     uint8
	Interlace     uint8
	BPP           int

	HasPalette bool
	HasColor   bool
	HasAlpha   bool

	Palette       Palette
	Trans         *TransColor
	Gamma         float64
	PixelsPerUnit *PixelsPerUnit
}

// NewMetadata builds a Metadata from the raw IHDR fields, deriving the
// hasPalette/hasColor/hasAlpha flags and the bpp from colorType.
func NewMetadata(width, height uint32, depth, colorType, interlace uint8) Metadata {
	return Metadata{
		Width:      width,
		Height:     height,
		Depth:      depth,
		ColorType:  colorType,
		Interlace:  interlace,
		BPP:        BPPTable[int(colorType)],
		HasPalette: int(colorType)&flagPalette != 0,
		HasColor:   int(colorType)&flagColor != 0,
		HasAlpha:   int(colorType)&flagAlpha != 0,
	}
}

// RGBA is an opaque-by-default palette entry or pixel value.
type RGBA struct {
	R, G, B, A uint8
}

// Palette is an ordered sequence of up to 256 RGBA entries, read from
// PLTE (alpha defaults to 255) and optionally patched by tRNS.
type Palette []RGBA

// TransColor is simple transparency: either a single gray sample
// (colorType 0) or an RGB triple (colorType 2), each stored at the
// input's full sample range (so a 16-bit sample can be keyed exactly).
type TransColor struct {
	Gray       uint16
	R, G, B    uint16
	IsGray     bool // true selects Gray, false selects R/G/B
}

// EncodeOptions controls the encoder's output representation.
type EncodeOptions struct {
	OutputColorType byte // 0, 2, 4, or 6; palette output is not required
	InputColorType  byte // 0, 2, 4, or 6
	InputHasAlpha   bool
	BitDepth        int // must be 8; see DESIGN.md Open Question 1
	FilterType      int // -1 (adaptive) or 0..4

	DeflateLevel    int
	DeflateStrategy int
	ChunkSize       int

	BackgroundColor RGBA // used at outputMax when alpha is collapsed

	Gamma         float64 // optional; 0 means "do not write gAMA"
	PixelsPerUnit *PixelsPerUnit
}
