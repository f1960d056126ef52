package pngcodec

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/pngcodec/pngcodec/adam7"
	"github.com/pngcodec/pngcodec/bitstream"
	"github.com/pngcodec/pngcodec/chunk"
	"github.com/pngcodec/pngcodec/filter"
	"github.com/pngcodec/pngcodec/normalize"
	"github.com/pngcodec/pngcodec/raster"
)

// Decode reads one PNG image from r and returns its normalized 8-bit
// RGBA raster.
func Decode(r io.Reader) (*raster.Raster, error) {
	p := chunk.NewParser(r)
	md, err := p.ReadHeaders()
	if err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(p)
	if err != nil {
		return nil, errors.Wrap(err, "png: opening compressed stream")
	}

	var rgba []uint16 // non-palette path, 4 samples/pixel at source depth
	var idx []byte    // palette path, 1 index byte/pixel
	width, height := int(md.Width), int(md.Height)
	samplesPerPixel := md.BPP

	if md.HasPalette {
		idx = make([]byte, width*height)
	} else {
		rgba = make([]uint16, width*height*4)
	}

	dist := byteDistance(samplesPerPixel, int(md.Depth))
	maxSample := uint16(bitstream.MaxSample(int(md.Depth)))

	if md.Interlace == 1 {
		expected := 0
		for pass := 0; pass < 7; pass++ {
			pw, ph := adam7.PassDimensions(pass, width, height)
			if pw == 0 || ph == 0 {
				continue
			}
			expected += (rowSize(pw, samplesPerPixel, int(md.Depth))) * ph
		}
		inflated := make([]byte, expected)
		if _, err := io.ReadFull(zr, inflated); err != nil {
			return nil, errors.Wrap(err, "png: truncated compressed stream")
		}

		mapCoord := adam7.Iterator(width, height)
		offset := 0
		for pass := 0; pass < 7; pass++ {
			pw, ph := adam7.PassDimensions(pass, width, height)
			if pw == 0 || ph == 0 {
				continue
			}
			rs := rowSize(pw, samplesPerPixel, int(md.Depth))
			var prev []byte
			for y := 0; y < ph; y++ {
				row := inflated[offset : offset+rs]
				offset += rs
				cur, err := unfilterRow(row, prev, dist)
				if err != nil {
					return nil, err
				}
				if err := placeRow(cur, pw, int(md.Depth), md.ColorType, samplesPerPixel,
					func(x int, samples []int) {
						ax, ay := mapCoord(pass, x, y)
						writePixel(idx, rgba, ax, ay, width, md.ColorType, samples, maxSample)
					}); err != nil {
					return nil, err
				}
				prev = cur
			}
		}
	} else {
		rs := rowSize(width, samplesPerPixel, int(md.Depth))
		expected := rs * height
		inflated := make([]byte, expected)
		if _, err := io.ReadFull(zr, inflated); err != nil {
			return nil, errors.Wrap(err, "png: truncated compressed stream")
		}

		var prev []byte
		for y := 0; y < height; y++ {
			row := inflated[y*rs : (y+1)*rs]
			cur, err := unfilterRow(row, prev, dist)
			if err != nil {
				return nil, err
			}
			if err := placeRow(cur, width, int(md.Depth), md.ColorType, samplesPerPixel,
				func(x int, samples []int) {
					writePixel(idx, rgba, x, y, width, md.ColorType, samples, maxSample)
				}); err != nil {
				return nil, err
			}
			prev = cur
		}
	}

	// The zlib reader stopped pulling from p as soon as the expected
	// plane size was produced; anything left of the compressed stream
	// (the adler32 trailer, any encoder trailing garbage) still needs to
	// be drained from p directly so Finish can find the chunk boundary
	// after the last IDAT. Per spec.md §9, errors surfacing only here
	// are suppressed.
	drainIDAT(p)

	if err := p.Finish(); err != nil {
		return nil, err
	}

	var pix []byte
	if md.HasPalette {
		pix, err = normalize.ExpandPalette(idx, md.Palette)
		if err != nil {
			return nil, err
		}
	} else {
		normalize.KeyTransparency(rgba, md.ColorType, md.Trans)
		pix = normalize.Rescale8(rgba, int(md.Depth))
	}

	out := &raster.Raster{
		Width:         md.Width,
		Height:        md.Height,
		Pix:           pix,
		Gamma:         md.Gamma,
		PixelsPerUnit: md.PixelsPerUnit,
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// drainIDAT reads and discards whatever remains of the IDAT stream so the
// Parser's internal cursor lands on the chunk header following the last
// IDAT, regardless of whether the zlib reader consumed it.
func drainIDAT(p *chunk.Parser) {
	scratch := make([]byte, 4096)
	for {
		if _, err := p.Read(scratch); err != nil {
			return
		}
	}
}

// byteDistance is the left/up-left reference distance filter.Reverse and
// filter.Forward use: 1 byte for sub-byte depths, bpp bytes at depth 8,
// 2*bpp bytes at depth 16.
func byteDistance(bpp, depth int) int {
	if depth < 8 {
		return 1
	}
	return bpp * (depth / 8)
}

// rowSize is the packed scanline length in bytes, including the leading
// filter-type byte: ceil(width*bpp*depth/8) + 1.
func rowSize(width, bpp, depth int) int {
	bits := width * bpp * depth
	return (bits+7)/8 + 1
}

// unfilterRow strips the leading filter-type byte from row and reverses
// it in place against prev (the previously unfiltered row, or nil for the
// first row of a pass), returning the unfiltered scanline bytes.
func unfilterRow(row, prev []byte, dist int) ([]byte, error) {
	ft := filter.Type(row[0])
	cur := append([]byte(nil), row[1:]...)
	if err := filter.Reverse(ft, cur, prev, dist); err != nil {
		return nil, err
	}
	return cur, nil
}

// placeRow unpacks an unfiltered scanline of rowWidth pixels into
// per-pixel sample groups and invokes place for each pixel's x coordinate
// (within the pass) and its raw samples.
func placeRow(cur []byte, rowWidth, depth int, colorType uint8, bpp int, place func(x int, samples []int)) error {
	u := bitstream.NewUnpacker(cur, depth, rowWidth*bpp)
	samples := make([]int, bpp)
	for x := 0; x < rowWidth; x++ {
		for c := 0; c < bpp; c++ {
			s, ok, err := u.Next()
			if err != nil {
				return err
			}
			if !ok {
				return errors.WithStack(bitstream.ErrUnderrun)
			}
			samples[c] = s
		}
		place(x, samples)
	}
	return nil
}

// writePixel stores one pixel's decoded samples into either the palette
// index plane or the u16 RGBA plane, depending on colorType.
func writePixel(idx []byte, rgba []uint16, x, y, width int, colorType uint8, samples []int, maxSample uint16) {
	if idx != nil {
		idx[y*width+x] = byte(samples[0])
		return
	}
	base := (y*width + x) * 4
	switch colorType {
	case raster.ColorTypeGrayscale:
		g := uint16(samples[0])
		rgba[base+0], rgba[base+1], rgba[base+2] = g, g, g
		rgba[base+3] = maxSample
	case raster.ColorTypeTrueColor:
		rgba[base+0] = uint16(samples[0])
		rgba[base+1] = uint16(samples[1])
		rgba[base+2] = uint16(samples[2])
		rgba[base+3] = maxSample
	case raster.ColorTypeGrayscaleAlpha:
		g := uint16(samples[0])
		rgba[base+0], rgba[base+1], rgba[base+2] = g, g, g
		rgba[base+3] = uint16(samples[1])
	case raster.ColorTypeTrueColorAlpha:
		rgba[base+0] = uint16(samples[0])
		rgba[base+1] = uint16(samples[1])
		rgba[base+2] = uint16(samples[2])
		rgba[base+3] = uint16(samples[3])
	}
}

// StreamingDecoder accepts PNG bytes through successive Write calls and
// produces the final raster on End. Bytes are buffered and the decode
// pipeline above runs once, in End, over the accumulated stream - Write
// never blocks on demand the way a fully incremental parser would, but
// the observable contract (push bytes in arbitrary-sized pieces, get a
// raster back exactly once, no goroutines, no shared state between
// instances) matches spec.md §4.12 and §5. See DESIGN.md.
type StreamingDecoder struct {
	buf    bytes.Buffer
	closed bool
}

// NewStreamingDecoder returns a StreamingDecoder ready to accept input.
func NewStreamingDecoder() *StreamingDecoder {
	return &StreamingDecoder{}
}

// Write appends p to the accumulated input. It never fails except after
// End has been called.
func (s *StreamingDecoder) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errors.WithStack(ErrStreamClosed)
	}
	return s.buf.Write(p)
}

// End signals that no further input is coming and runs the decode
// pipeline over everything written so far.
func (s *StreamingDecoder) End() (*raster.Raster, error) {
	s.closed = true
	return Decode(&s.buf)
}

// Encode serializes rst per opts into a complete PNG byte stream.
func Encode(rst *raster.Raster, opts raster.EncodeOptions) ([]byte, error) {
	if err := rst.Validate(); err != nil {
		return nil, err
	}
	if opts.BitDepth != 8 {
		return nil, errors.Wrapf(ErrUnsupportedOption, "bit depth %d", opts.BitDepth)
	}
	if math.IsNaN(opts.Gamma) || math.IsInf(opts.Gamma, 0) || opts.Gamma < 0 {
		return nil, errors.Wrapf(ErrUnsupportedOption, "gamma %v", opts.Gamma)
	}

	if opts.OutputColorType == raster.ColorTypePaletted {
		// Palette output would require building and writing a PLTE chunk
		// from the source pixels; spec.md's EncodeOptions explicitly
		// notes palette output is not required.
		return nil, errors.Wrapf(ErrUnsupportedOption, "palette output color type %d", opts.OutputColorType)
	}
	width, height := int(rst.Width), int(rst.Height)
	bpp := raster.BPPTable[int(opts.OutputColorType)]
	if bpp == 0 {
		return nil, errors.Wrapf(ErrUnsupportedOption, "output color type %d", opts.OutputColorType)
	}

	// spec.md §3: the background defaults to white (R,G,B at output
	// maxValue) when the caller leaves it unset.
	bg := bitstream.Background{R: 255, G: 255, B: 255}
	if opts.BackgroundColor != (raster.RGBA{}) {
		bg = bitstream.Background{R: opts.BackgroundColor.R, G: opts.BackgroundColor.G, B: opts.BackgroundColor.B}
	}
	packed := bitstream.Pack(rst.Pix, width, height, bitstream.ColorType(opts.OutputColorType), bg)

	rowBytes := width * bpp
	filtered := make([]byte, 0, (rowBytes+1)*height)
	var prevRaw []byte
	for y := 0; y < height; y++ {
		raw := packed[y*rowBytes : (y+1)*rowBytes]
		var ft filter.Type
		var row []byte
		if opts.FilterType < 0 {
			ft, row = filter.ChooseFilter(raw, prevRaw, bpp, nil)
		} else {
			ft = filter.Type(opts.FilterType)
			row = make([]byte, rowBytes)
			filter.Forward(ft, raw, prevRaw, bpp, row)
		}
		filtered = append(filtered, byte(ft))
		filtered = append(filtered, row...)
		prevRaw = raw
	}

	var compressed bytes.Buffer
	level := opts.DeflateLevel
	if level == 0 {
		level = flate.DefaultCompression
	}
	zw, err := zlib.NewWriterLevel(&compressed, level)
	if err != nil {
		return nil, errors.Wrap(err, "png: opening compressor")
	}
	if _, err := zw.Write(filtered); err != nil {
		return nil, errors.Wrap(err, "png: compressing scanlines")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "png: flushing compressor")
	}

	var out bytes.Buffer
	if err := chunk.WriteSignature(&out); err != nil {
		return nil, err
	}
	if err := chunk.WriteIHDR(&out, rst.Width, rst.Height, opts.OutputColorType); err != nil {
		return nil, err
	}
	if opts.Gamma != 0 {
		if err := chunk.WriteGAMA(&out, opts.Gamma); err != nil {
			return nil, err
		}
	}
	if opts.PixelsPerUnit != nil {
		if err := chunk.WritePHYS(&out, opts.PixelsPerUnit.X, opts.PixelsPerUnit.Y, opts.PixelsPerUnit.Unit); err != nil {
			return nil, err
		}
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = compressed.Len()
	}
	data := compressed.Bytes()
	wrote := false
	for len(data) > 0 {
		n := chunkSize
		if n <= 0 || n > len(data) {
			n = len(data)
		}
		if err := chunk.WriteIDAT(&out, data[:n]); err != nil {
			return nil, err
		}
		data = data[n:]
		wrote = true
	}
	if !wrote {
		if err := chunk.WriteIDAT(&out, nil); err != nil {
			return nil, err
		}
	}

	if err := chunk.WriteIEND(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
