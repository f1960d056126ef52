// Package chunk implements the PNG chunk wire format: the length/type/
// data/CRC layout, the per-chunk-type semantic parsers (IHDR, PLTE, tRNS,
// gAMA, pHYs), the pull-style chunk parser state machine, and the
// encode-side chunk packer.
package chunk

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/pngcodec/pngcodec/raster"
)

// Signature is the fixed 8-byte PNG magic.
var Signature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Well-known chunk type codes.
var (
	TypeIHDR = [4]byte{'I', 'H', 'D', 'R'}
	TypePLTE = [4]byte{'P', 'L', 'T', 'E'}
	TypeIDAT = [4]byte{'I', 'D', 'A', 'T'}
	TypeIEND = [4]byte{'I', 'E', 'N', 'D'}
	TypeTRNS = [4]byte{'t', 'R', 'N', 'S'}
	TypeGAMA = [4]byte{'g', 'A', 'M', 'A'}
	TypePHYS = [4]byte{'p', 'H', 'Y', 's'}
)

// GammaScale is the divisor applied to a gAMA chunk's stored integer.
const GammaScale = 100000

// Header is a chunk's length/type framing, without its data payload or
// its trailing CRC.
type Header struct {
	Length uint32
	Type   [4]byte
}

// IsAncillary reports whether the chunk type is ancillary (lowercase
// first byte, bit 0x20 set) rather than critical.
func (h Header) IsAncillary() bool {
	return h.Type[0]&0x20 != 0
}

// IsASCIILetters reports whether every byte of the type is an ASCII
// letter, per spec.md §4.8.
func (h Header) IsASCIILetters() bool {
	for _, b := range h.Type {
		if !(b >= 'A' && b <= 'Z') && !(b >= 'a' && b <= 'z') {
			return false
		}
	}
	return true
}

func (h Header) String() string {
	return string(h.Type[:])
}

// ErrBadIHDR reports an IHDR with an unsupported field combination.
var ErrBadIHDR = errors.New("png: unsupported IHDR field combination")

// ParseIHDR decodes the 13-byte IHDR body into a Metadata, rejecting any
// unsupported depth/colorType/compression/filter/interlace combination
// per spec.md §4.8.
func ParseIHDR(data []byte) (raster.Metadata, error) {
	if len(data) != 13 {
		return raster.Metadata{}, errors.Wrap(ErrBadIHDR, "IHDR must be 13 bytes")
	}
	width := binary.BigEndian.Uint32(data[0:4])
	height := binary.BigEndian.Uint32(data[4:8])
	depth := data[8]
	colorType := data[9]
	compression := data[10]
	filterMethod := data[11]
	interlace := data[12]

	if width == 0 || height == 0 {
		return raster.Metadata{}, errors.Wrap(ErrBadIHDR, "zero width or height")
	}
	if !validDepthForColorType(depth, colorType) {
		return raster.Metadata{}, errors.Wrapf(ErrBadIHDR, "depth %d invalid for color type %d", depth, colorType)
	}
	if compression != 0 {
		return raster.Metadata{}, errors.Wrap(ErrBadIHDR, "unsupported compression method")
	}
	if filterMethod != 0 {
		return raster.Metadata{}, errors.Wrap(ErrBadIHDR, "unsupported filter method")
	}
	if interlace != 0 && interlace != 1 {
		return raster.Metadata{}, errors.Wrap(ErrBadIHDR, "unsupported interlace method")
	}

	return raster.NewMetadata(width, height, depth, colorType, interlace), nil
}

func validDepthForColorType(depth, colorType byte) bool {
	switch colorType {
	case raster.ColorTypeGrayscale:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case raster.ColorTypeTrueColor, raster.ColorTypeGrayscaleAlpha, raster.ColorTypeTrueColorAlpha:
		return depth == 8 || depth == 16
	case raster.ColorTypePaletted:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	default:
		return false
	}
}

// ErrBadPLTE reports a PLTE chunk whose length is not a multiple of 3.
var ErrBadPLTE = errors.New("png: PLTE length not a multiple of 3")

// ParsePLTE decodes a PLTE body into an opaque Palette (alpha 255).
func ParsePLTE(data []byte) (raster.Palette, error) {
	if len(data)%3 != 0 {
		return nil, errors.WithStack(ErrBadPLTE)
	}
	n := len(data) / 3
	pal := make(raster.Palette, n)
	for i := 0; i < n; i++ {
		pal[i] = raster.RGBA{R: data[i*3], G: data[i*3+1], B: data[i*3+2], A: 255}
	}
	return pal, nil
}

// ErrBadTRNS reports a malformed tRNS chunk.
var ErrBadTRNS = errors.New("png: malformed tRNS chunk")

// ApplyTRNSPalette patches alpha values of pal in place from a tRNS body
// for colorType 3. Entries beyond len(data) keep alpha 255 (already the
// PLTE default).
func ApplyTRNSPalette(data []byte, pal raster.Palette) error {
	if len(data) > len(pal) {
		return errors.WithStack(ErrBadTRNS)
	}
	for i, a := range data {
		pal[i].A = a
	}
	return nil
}

// ParseTRNSSimple decodes a tRNS body for colorType 0 or 2 into a
// TransColor.
func ParseTRNSSimple(data []byte, colorType uint8) (*raster.TransColor, error) {
	switch colorType {
	case raster.ColorTypeGrayscale:
		if len(data) != 2 {
			return nil, errors.WithStack(ErrBadTRNS)
		}
		return &raster.TransColor{IsGray: true, Gray: binary.BigEndian.Uint16(data)}, nil
	case raster.ColorTypeTrueColor:
		if len(data) != 6 {
			return nil, errors.WithStack(ErrBadTRNS)
		}
		return &raster.TransColor{
			R: binary.BigEndian.Uint16(data[0:2]),
			G: binary.BigEndian.Uint16(data[2:4]),
			B: binary.BigEndian.Uint16(data[4:6]),
		}, nil
	default:
		return nil, errors.WithStack(ErrBadTRNS)
	}
}

// ParseGAMA decodes a 4-byte gAMA body into a gamma scalar.
func ParseGAMA(data []byte) (float64, error) {
	if len(data) != 4 {
		return 0, errors.New("png: gAMA length must be 4 bytes")
	}
	v := binary.BigEndian.Uint32(data)
	return float64(v) / GammaScale, nil
}

// ParsePHYS decodes a 9-byte pHYs body.
func ParsePHYS(data []byte) (*raster.PixelsPerUnit, error) {
	if len(data) != 9 {
		return nil, errors.New("png: pHYs length must be 9 bytes")
	}
	return &raster.PixelsPerUnit{
		X:    binary.BigEndian.Uint32(data[0:4]),
		Y:    binary.BigEndian.Uint32(data[4:8]),
		Unit: data[8],
	}, nil
}
