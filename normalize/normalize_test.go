package normalize

import (
	"bytes"
	"testing"

	"github.com/pngcodec/pngcodec/raster"
)

func TestExpandPaletteSecondBufferDoesNotAlias(t *testing.T) {
	pal := raster.Palette{
		{R: 255, A: 255},
		{G: 255, A: 255},
	}
	idx := []byte{0, 1, 0}
	out, err := ExpandPalette(idx, pal)
	if err != nil {
		t.Fatalf("ExpandPalette: %v", err)
	}
	want := []byte{255, 0, 0, 255, 0, 255, 0, 255, 255, 0, 0, 255}
	if !bytes.Equal(out, want) {
		t.Fatalf("ExpandPalette = %v, want %v", out, want)
	}
	// idx must be untouched - out is a distinct allocation.
	if len(idx) != 3 {
		t.Fatalf("idx length changed: %d", len(idx))
	}
}

func TestExpandPaletteOutOfRange(t *testing.T) {
	pal := raster.Palette{{R: 1}}
	_, err := ExpandPalette([]byte{5}, pal)
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestKeyTransparencyGrayscale(t *testing.T) {
	// Two pixels: one matches the trans gray value, one does not.
	rgba := []uint16{5, 5, 5, 255, 9, 9, 9, 255}
	trans := &raster.TransColor{IsGray: true, Gray: 5}
	KeyTransparency(rgba, 0, trans)
	want := []uint16{0, 0, 0, 0, 9, 9, 9, 255}
	for i := range want {
		if rgba[i] != want[i] {
			t.Fatalf("pixel data = %v, want %v", rgba, want)
		}
	}
}

func TestRescale8Depth16(t *testing.T) {
	in := []uint16{0, 65535, 32768}
	out := Rescale8(in, 16)
	want := []byte{0, 255, 128}
	if !bytes.Equal(out, want) {
		t.Fatalf("Rescale8 = %v, want %v", out, want)
	}
}

func TestRescale8Depth8IsIdentity(t *testing.T) {
	in := []uint16{0, 128, 255}
	out := Rescale8(in, 8)
	want := []byte{0, 128, 255}
	if !bytes.Equal(out, want) {
		t.Fatalf("Rescale8 depth 8 = %v, want %v", out, want)
	}
}
