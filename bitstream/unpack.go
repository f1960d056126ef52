// Package bitstream extracts samples from packed PNG scanline bytes at
// bit depths 1, 2, 4, 8 and 16 (decode side), and packs samples back into
// bytes for the encoder.
package bitstream

import "github.com/pkg/errors"

// ErrUnderrun reports a scanline shorter than its declared sample count.
var ErrUnderrun = errors.New("png: scanline shorter than expected")

// Unpacker extracts samples from a single packed scanline, MSB-first,
// discarding any partial-byte remainder once all samples are consumed.
type Unpacker struct {
	data  []byte
	depth int
	pos   int // sample index already produced
	count int // total samples on this line
}

// NewUnpacker prepares an Unpacker over a packed scanline (the bytes after
// the filter-type byte) that is expected to contain count samples at the
// given bit depth.
func NewUnpacker(data []byte, depth, count int) *Unpacker {
	return &Unpacker{data: data, depth: depth, count: count}
}

// Next returns the next sample (0..2^depth-1). ok is false once count
// samples have been produced. err is non-nil if the underlying data is
// too short to hold the declared sample count.
func (u *Unpacker) Next() (sample int, ok bool, err error) {
	if u.pos >= u.count {
		return 0, false, nil
	}
	switch u.depth {
	case 1, 2, 4:
		perByte := 8 / u.depth
		byteIdx := u.pos / perByte
		if byteIdx >= len(u.data) {
			return 0, false, errors.WithStack(ErrUnderrun)
		}
		shift := 8 - u.depth*(u.pos%perByte+1)
		mask := (1 << u.depth) - 1
		sample = int(u.data[byteIdx]>>shift) & mask
	case 8:
		if u.pos >= len(u.data) {
			return 0, false, errors.WithStack(ErrUnderrun)
		}
		sample = int(u.data[u.pos])
	case 16:
		idx := u.pos * 2
		if idx+1 >= len(u.data) {
			return 0, false, errors.WithStack(ErrUnderrun)
		}
		sample = int(u.data[idx])<<8 | int(u.data[idx+1])
	default:
		return 0, false, errors.Errorf("png: unsupported bit depth %d", u.depth)
	}
	u.pos++
	return sample, true, nil
}

// MaxSample returns 2^depth - 1 for the given bit depth.
func MaxSample(depth int) int {
	return (1 << uint(depth)) - 1
}
