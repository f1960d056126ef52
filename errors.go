// Package pngcodec decodes and encodes PNG images: chunk framing, zlib
// compression, the five scanline filters, Adam7 interlacing, and the
// per-color-type/bit-depth sample packing, wired together behind a small
// Decode/Encode/StreamingDecoder façade.
package pngcodec

import (
	"github.com/pkg/errors"

	"github.com/pngcodec/pngcodec/chunk"
)

// Re-exported so callers can test for a specific failure with
// errors.Is(err, pngcodec.ErrInvalidSignature) without importing the
// chunk subpackage directly.
var (
	ErrInvalidSignature = chunk.ErrInvalidSignature
	ErrInvalidChunkType = chunk.ErrInvalidChunkType
	ErrUnsupportedChunk = chunk.ErrUnsupportedChunk
	ErrChunkOrder       = chunk.ErrChunkOrder
	ErrCRC              = chunk.ErrCRC
	ErrTruncated        = chunk.ErrTruncated
	ErrExtraData        = chunk.ErrExtraData
	ErrBadIHDR          = chunk.ErrBadIHDR
	ErrBadPLTE          = chunk.ErrBadPLTE
	ErrBadTRNS          = chunk.ErrBadTRNS
)

// ErrUnsupportedOption reports an EncodeOptions value this codec cannot
// honor: a bit depth other than 8, a non-finite or negative gamma, or an
// output color type other than 0, 2, 4 or 6.
// See DESIGN.md's Open Question decisions.
var ErrUnsupportedOption = errors.New("png: unsupported encode option")

// ErrStreamClosed reports a Write call made after End on a
// StreamingDecoder.
var ErrStreamClosed = errors.New("png: Write called after End")
