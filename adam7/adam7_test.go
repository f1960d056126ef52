package adam7

import "testing"

func TestPassesPartitionImage(t *testing.T) {
	w, h := 23, 17
	covered := make(map[[2]int]bool, w*h)
	iter := Iterator(w, h)

	for pass := 0; pass < 7; pass++ {
		pw, ph := PassDimensions(pass, w, h)
		for y := 0; y < ph; y++ {
			for x := 0; x < pw; x++ {
				ax, ay := iter(pass, x, y)
				key := [2]int{ax, ay}
				if covered[key] {
					t.Fatalf("pixel (%d,%d) covered by more than one pass", ax, ay)
				}
				if ax < 0 || ax >= w || ay < 0 || ay >= h {
					t.Fatalf("pass %d produced out-of-range pixel (%d,%d)", pass, ax, ay)
				}
				covered[key] = true
			}
		}
	}

	if len(covered) != w*h {
		t.Fatalf("covered %d pixels, want %d (partition must be exact)", len(covered), w*h)
	}
}

func TestPassDimensionsSkipsEmptyPasses(t *testing.T) {
	// A 3x3 image: pass 2 needs x offset 4, which doesn't exist in a
	// width of 3, so it must report zero width.
	pw, ph := PassDimensions(1, 3, 3)
	if pw != 0 {
		t.Fatalf("pass 1 width for 3x3 image = %d, want 0", pw)
	}
	_ = ph
}

func TestPassDimensionsFullBlock(t *testing.T) {
	// 8x8 image: every pass should get exactly the pixel counts the spec
	// table implies (1,1,2,4,8,16,32).
	want := []int{1, 1, 2, 4, 8, 16, 32}
	for pass := 0; pass < 7; pass++ {
		pw, ph := PassDimensions(pass, 8, 8)
		if pw*ph != want[pass] {
			t.Fatalf("pass %d: %d*%d = %d pixels, want %d", pass, pw, ph, pw*ph, want[pass])
		}
	}
}
