package chunk

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/pngcodec/pngcodec/crc"
	"github.com/pngcodec/pngcodec/raster"
)

// Stage names the chunk parser's position in spec.md §4.8's state
// machine: ExpectSignature -> ExpectChunkHeader -> ExpectChunkBody ->
// ExpectChunkCRC -> (ExpectChunkHeader | Terminal).
type Stage int

const (
	ExpectSignature Stage = iota
	ExpectChunkHeader
	ExpectChunkBody
	ExpectChunkCRC
	Terminal
)

// Error kinds, matching spec.md §7's taxonomy.
var (
	ErrInvalidSignature  = errors.New("png: invalid signature")
	ErrInvalidChunkType  = errors.New("png: invalid chunk type")
	ErrUnsupportedChunk  = errors.New("png: unsupported critical chunk")
	ErrChunkOrder        = errors.New("png: chunk out of order")
	ErrCRC               = errors.New("png: CRC mismatch")
	ErrTruncated         = errors.New("png: truncated PNG stream")
	ErrExtraData         = errors.New("png: extra data after IEND")
)

// Parser drives an io.Reader through the chunk state machine up through
// (and including) the headers that must precede IDAT: IHDR, optional
// PLTE, optional tRNS, optional gAMA, optional pHYs. After ReadHeaders
// returns, the Parser itself is an io.Reader presenting the concatenation
// of all IDAT chunk bodies, suitable for wrapping in a zlib.Reader.
type Parser struct {
	r       io.Reader
	crc     *crc.CRC
	stage   Stage
	sawPLTE bool

	meta raster.Metadata

	idatRemaining uint32 // bytes left in the current IDAT chunk
	sawIDAT       bool
	done          bool // true once IEND has been consumed
	pending       *Header // a header read past the last IDAT chunk, for Finish
}

// NewParser wraps r for chunk-level parsing.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r, crc: crc.New(), stage: ExpectSignature}
}

// CheckSignature reads and validates the 8-byte PNG magic.
func (p *Parser) CheckSignature() error {
	var buf [8]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return wrapEOF(err)
	}
	if buf != Signature {
		return errors.WithStack(ErrInvalidSignature)
	}
	p.stage = ExpectChunkHeader
	return nil
}

func wrapEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.WithStack(ErrTruncated)
	}
	return errors.WithStack(err)
}

// readHeader reads a chunk's length+type, priming p.crc with the type
// bytes (the CRC runs over type+data, not length).
func (p *Parser) readHeader() (Header, error) {
	var lt [8]byte
	if _, err := io.ReadFull(p.r, lt[:]); err != nil {
		return Header{}, wrapEOF(err)
	}
	h := Header{Length: binary.BigEndian.Uint32(lt[0:4])}
	copy(h.Type[:], lt[4:8])
	if !h.IsASCIILetters() {
		return Header{}, errors.WithStack(ErrInvalidChunkType)
	}
	p.crc.Reset()
	p.crc.Write(h.Type[:])
	return h, nil
}

func (p *Parser) readBody(h Header) ([]byte, error) {
	data := make([]byte, h.Length)
	if _, err := io.ReadFull(p.r, data); err != nil {
		return nil, wrapEOF(err)
	}
	p.crc.Write(data)
	return data, nil
}

func (p *Parser) verifyCRC() error {
	var buf [4]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return wrapEOF(err)
	}
	want := binary.BigEndian.Uint32(buf[:])
	if want != p.crc.Sum32() {
		return errors.WithStack(ErrCRC)
	}
	return nil
}

// ReadHeaders drives the parser from the signature through the chunk
// immediately preceding the first IDAT byte, returning the accumulated
// Metadata (with Palette/Trans/Gamma/PixelsPerUnit populated from
// whatever ancillary chunks were present). After it returns, p.Read
// serves the IDAT stream.
func (p *Parser) ReadHeaders() (raster.Metadata, error) {
	if err := p.CheckSignature(); err != nil {
		return raster.Metadata{}, err
	}

	sawIHDR := false
	for {
		h, err := p.readHeader()
		if err != nil {
			return raster.Metadata{}, err
		}

		switch h.Type {
		case TypeIHDR:
			if sawIHDR {
				return raster.Metadata{}, errors.WithStack(ErrChunkOrder)
			}
			data, err := p.readBody(h)
			if err != nil {
				return raster.Metadata{}, err
			}
			if err := p.verifyCRC(); err != nil {
				return raster.Metadata{}, err
			}
			md, err := ParseIHDR(data)
			if err != nil {
				return raster.Metadata{}, err
			}
			p.meta = md
			sawIHDR = true

		case TypePLTE:
			if !sawIHDR || p.sawPLTE || p.sawIDAT {
				return raster.Metadata{}, errors.WithStack(ErrChunkOrder)
			}
			data, err := p.readBody(h)
			if err != nil {
				return raster.Metadata{}, err
			}
			if err := p.verifyCRC(); err != nil {
				return raster.Metadata{}, err
			}
			pal, err := ParsePLTE(data)
			if err != nil {
				return raster.Metadata{}, err
			}
			p.meta.Palette = pal
			p.sawPLTE = true

		case TypeTRNS:
			if !sawIHDR || p.sawIDAT {
				return raster.Metadata{}, errors.WithStack(ErrChunkOrder)
			}
			data, err := p.readBody(h)
			if err != nil {
				return raster.Metadata{}, err
			}
			if err := p.verifyCRC(); err != nil {
				return raster.Metadata{}, err
			}
			if p.meta.HasPalette {
				if !p.sawPLTE {
					return raster.Metadata{}, errors.WithStack(ErrChunkOrder)
				}
				if err := ApplyTRNSPalette(data, p.meta.Palette); err != nil {
					return raster.Metadata{}, err
				}
			} else {
				trans, err := ParseTRNSSimple(data, p.meta.ColorType)
				if err != nil {
					return raster.Metadata{}, err
				}
				p.meta.Trans = trans
			}

		case TypeGAMA:
			if !sawIHDR || p.sawPLTE || p.sawIDAT {
				return raster.Metadata{}, errors.WithStack(ErrChunkOrder)
			}
			data, err := p.readBody(h)
			if err != nil {
				return raster.Metadata{}, err
			}
			if err := p.verifyCRC(); err != nil {
				return raster.Metadata{}, err
			}
			gamma, err := ParseGAMA(data)
			if err != nil {
				return raster.Metadata{}, err
			}
			p.meta.Gamma = gamma

		case TypePHYS:
			if !sawIHDR || p.sawIDAT {
				return raster.Metadata{}, errors.WithStack(ErrChunkOrder)
			}
			data, err := p.readBody(h)
			if err != nil {
				return raster.Metadata{}, err
			}
			if err := p.verifyCRC(); err != nil {
				return raster.Metadata{}, err
			}
			ppu, err := ParsePHYS(data)
			if err != nil {
				return raster.Metadata{}, err
			}
			p.meta.PixelsPerUnit = ppu

		case TypeIDAT:
			if !sawIHDR || (p.meta.HasPalette && !p.sawPLTE) {
				return raster.Metadata{}, errors.WithStack(ErrChunkOrder)
			}
			p.sawIDAT = true
			p.idatRemaining = h.Length
			return p.meta, nil

		default:
			if !sawIHDR {
				return raster.Metadata{}, errors.WithStack(ErrChunkOrder)
			}
			if !h.IsAncillary() {
				return raster.Metadata{}, errors.WithStack(ErrUnsupportedChunk)
			}
			if _, err := p.readBody(h); err != nil {
				return raster.Metadata{}, err
			}
			if err := p.verifyCRC(); err != nil {
				return raster.Metadata{}, err
			}
		}
	}
}

// Read implements io.Reader, presenting the concatenation of all IDAT
// chunk bodies as a single stream, transparently hopping from one IDAT
// chunk to the next (and verifying each chunk's CRC as it is exhausted).
func (p *Parser) Read(out []byte) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}
	for p.idatRemaining == 0 {
		if err := p.verifyCRC(); err != nil {
			return 0, err
		}
		h, err := p.readHeader()
		if err != nil {
			return 0, err
		}
		if h.Type != TypeIDAT {
			// No more IDAT data; rewind the state machine so Finish can
			// pick up this header as the chunk following the image data.
			p.pending = &h
			return 0, io.EOF
		}
		p.idatRemaining = h.Length
		if p.idatRemaining == 0 {
			continue
		}
	}
	n := len(out)
	if uint32(n) > p.idatRemaining {
		n = int(p.idatRemaining)
	}
	if _, err := io.ReadFull(p.r, out[:n]); err != nil {
		return 0, wrapEOF(err)
	}
	p.crc.Write(out[:n])
	p.idatRemaining -= uint32(n)
	return n, nil
}

// Finish drives the parser from wherever Read() left off (the chunk
// header immediately after the last IDAT) through IEND, verifying CRCs
// and rejecting unsupported critical chunks or extra trailing data.
func (p *Parser) Finish() error {
	var h Header
	var err error
	if p.pending != nil {
		h = *p.pending
		p.pending = nil
	} else {
		h, err = p.readHeader()
		if err != nil {
			return err
		}
	}

	for {
		switch h.Type {
		case TypeIEND:
			if _, err := p.readBody(h); err != nil {
				return err
			}
			if err := p.verifyCRC(); err != nil {
				return err
			}
			p.done = true
			var extra [1]byte
			if n, _ := p.r.Read(extra[:]); n > 0 {
				return errors.WithStack(ErrExtraData)
			}
			return nil
		case TypeIDAT:
			return errors.WithStack(ErrChunkOrder)
		default:
			if !h.IsAncillary() {
				return errors.WithStack(ErrUnsupportedChunk)
			}
			if _, err := p.readBody(h); err != nil {
				return err
			}
			if err := p.verifyCRC(); err != nil {
				return err
			}
		}
		h, err = p.readHeader()
		if err != nil {
			return err
		}
	}
}
