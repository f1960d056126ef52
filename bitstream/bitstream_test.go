package bitstream

import (
	"bytes"
	"testing"
)

func TestUnpackerDepth1(t *testing.T) {
	// 0b10110000 -> samples 1,0,1,1,0,0,0,0
	u := NewUnpacker([]byte{0b10110000}, 1, 8)
	want := []int{1, 0, 1, 1, 0, 0, 0, 0}
	for i, w := range want {
		s, ok, err := u.Next()
		if err != nil {
			t.Fatalf("Next() #%d: %v", i, err)
		}
		if !ok {
			t.Fatalf("Next() #%d: ok=false, want true", i)
		}
		if s != w {
			t.Fatalf("sample %d = %d, want %d", i, s, w)
		}
	}
	if _, ok, _ := u.Next(); ok {
		t.Fatal("expected exhausted unpacker")
	}
}

func TestUnpackerDepth16(t *testing.T) {
	u := NewUnpacker([]byte{0x01, 0x02, 0xFF, 0xFF}, 16, 2)
	s1, _, _ := u.Next()
	s2, _, _ := u.Next()
	if s1 != 0x0102 {
		t.Fatalf("sample 0 = %#x, want 0x0102", s1)
	}
	if s2 != 0xFFFF {
		t.Fatalf("sample 1 = %#x, want 0xFFFF", s2)
	}
}

func TestUnpackerUnderrun(t *testing.T) {
	u := NewUnpacker([]byte{0xFF}, 8, 3)
	u.Next()
	if _, _, err := u.Next(); err == nil {
		t.Fatal("expected underrun error")
	}
}

func TestPackFastPathRGBA(t *testing.T) {
	rgba := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	out := Pack(rgba, 2, 1, TrueColorAlpha, Background{})
	if !bytes.Equal(out, rgba) {
		t.Fatalf("Pack RGBA fast path = %v, want %v", out, rgba)
	}
}

func TestPackGrayscaleLuminance(t *testing.T) {
	rgba := []byte{90, 90, 90, 255}
	out := Pack(rgba, 1, 1, Grayscale, Background{})
	if len(out) != 1 || out[0] != 90 {
		t.Fatalf("Pack grayscale = %v, want [90]", out)
	}
}

func TestPackCollapseAlphaPremultipliesAgainstBackground(t *testing.T) {
	// Fully transparent red over a white background should become white.
	rgba := []byte{255, 0, 0, 0}
	out := Pack(rgba, 1, 1, TrueColor, Background{R: 255, G: 255, B: 255})
	want := []byte{255, 255, 255}
	if !bytes.Equal(out, want) {
		t.Fatalf("Pack over white bg = %v, want %v", out, want)
	}
}

func TestPackOpaqueIgnoresBackground(t *testing.T) {
	rgba := []byte{10, 20, 30, 255}
	out := Pack(rgba, 1, 1, TrueColor, Background{R: 0, G: 0, B: 0})
	want := []byte{10, 20, 30}
	if !bytes.Equal(out, want) {
		t.Fatalf("Pack opaque = %v, want %v", out, want)
	}
}
