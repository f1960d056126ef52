package chunk

import (
	"encoding/binary"
	"io"

	"github.com/pngcodec/pngcodec/crc"
)

// WriteSignature writes the 8-byte PNG magic to w.
func WriteSignature(w io.Writer) error {
	_, err := w.Write(Signature[:])
	return err
}

// WriteChunk writes one length-prefixed, CRC-suffixed chunk: big-endian
// length, 4-byte type, body, then CRC32(type||body).
func WriteChunk(w io.Writer, typ [4]byte, data []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}

	c := crc.New()
	c.Write(typ[:])
	c.Write(data)

	if _, err := w.Write(typ[:]); err != nil {
		return err
	}
	if len(data) > 0 {
		if _, err := w.Write(data); err != nil {
			return err
		}
	}

	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], c.Sum32())
	_, err := w.Write(crcBuf[:])
	return err
}

// WriteIHDR writes the IHDR chunk. Encoder output is always depth-8,
// non-interlaced per spec.md's Non-goals.
func WriteIHDR(w io.Writer, width, height uint32, colorType byte) error {
	var data [13]byte
	binary.BigEndian.PutUint32(data[0:4], width)
	binary.BigEndian.PutUint32(data[4:8], height)
	data[8] = 8 // bit depth
	data[9] = colorType
	data[10] = 0 // compression method
	data[11] = 0 // filter method
	data[12] = 0 // interlace method
	return WriteChunk(w, TypeIHDR, data[:])
}

// WriteGAMA writes a gAMA chunk for the given gamma scalar.
func WriteGAMA(w io.Writer, gamma float64) error {
	var data [4]byte
	binary.BigEndian.PutUint32(data[:], uint32(gamma*GammaScale))
	return WriteChunk(w, TypeGAMA, data[:])
}

// WritePHYS writes a pHYs chunk.
func WritePHYS(w io.Writer, x, y uint32, unit byte) error {
	var data [9]byte
	binary.BigEndian.PutUint32(data[0:4], x)
	binary.BigEndian.PutUint32(data[4:8], y)
	data[8] = unit
	return WriteChunk(w, TypePHYS, data[:])
}

// WriteIDAT writes a single IDAT chunk containing data. Callers wanting
// multiple IDAT chunks (streaming encode) call this once per chunk of the
// deflated stream.
func WriteIDAT(w io.Writer, data []byte) error {
	return WriteChunk(w, TypeIDAT, data)
}

// WriteIEND writes the empty terminal IEND chunk.
func WriteIEND(w io.Writer) error {
	return WriteChunk(w, TypeIEND, nil)
}
