package filter

import (
	"bytes"
	"testing"
)

func TestPaethProperties(t *testing.T) {
	for a := 0; a < 256; a += 17 {
		for b := 0; b < 256; b += 23 {
			for c := 0; c < 256; c += 29 {
				got := Paeth(a, b, c)
				if got != a && got != b && got != c {
					t.Fatalf("Paeth(%d,%d,%d) = %d, want one of a,b,c", a, b, c, got)
				}
			}
		}
	}
}

func TestPaethSameInputsReturnsThatValue(t *testing.T) {
	for _, v := range []int{0, 1, 127, 255} {
		if got := Paeth(v, v, v); got != v {
			t.Fatalf("Paeth(%d,%d,%d) = %d, want %d", v, v, v, got, v)
		}
	}
}

func TestReverseForwardRoundTrip(t *testing.T) {
	raw := []byte{10, 200, 3, 250, 128, 0, 255, 64}
	prev := []byte{5, 5, 5, 5, 5, 5, 5, 5}
	dist := 2

	for _, ft := range []Type{None, Sub, Up, Avg, PaethType} {
		filtered := make([]byte, len(raw))
		Forward(ft, raw, prev, dist, filtered)

		cur := append([]byte(nil), filtered...)
		if err := Reverse(ft, cur, prev, dist); err != nil {
			t.Fatalf("Reverse(%v): %v", ft, err)
		}
		if !bytes.Equal(cur, raw) {
			t.Fatalf("filter %v round trip: got %v, want %v", ft, cur, raw)
		}
	}
}

func TestReverseBadFilterType(t *testing.T) {
	cur := []byte{1, 2, 3}
	if err := Reverse(Type(5), cur, nil, 1); err == nil {
		t.Fatal("expected error for bad filter type")
	}
}

func TestChooseFilterPicksMinimalSum(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	ft, filtered := ChooseFilter(raw, nil, 1, nil)
	if len(filtered) != len(raw) {
		t.Fatalf("filtered length = %d, want %d", len(filtered), len(raw))
	}
	// Sub filter should win on a monotonic ramp: every delta is constant,
	// producing a 0 followed by all 1s (sum of abs = len(raw)-1), beating
	// None's large raw-value sum.
	if ft != Sub {
		t.Fatalf("ChooseFilter on ramp = %v, want Sub", ft)
	}
}
