// Package adam7 implements the geometry of PNG's Adam7 interlacing scheme:
// per-pass dimensions and the mapping from (pass, x, y) within a pass back
// to absolute image coordinates.
package adam7

// Point is an (x, y) offset within an 8x8 Adam7 block.
type Point struct {
	X, Y int
}

// Passes lists, for each of the seven Adam7 passes, the block offsets that
// belong to it. Offsets are in raster order within the 8x8 tile.
var Passes = [7][]Point{
	{{0, 0}},
	{{4, 0}},
	{{0, 4}, {4, 4}},
	{{2, 0}, {6, 0}, {2, 4}, {6, 4}},
	{{0, 2}, {2, 2}, {4, 2}, {6, 2}, {0, 6}, {2, 6}, {4, 6}, {6, 6}},
	xRangePass([]int{1, 3, 5, 7}, []int{0, 2, 4, 6}),
	xRangePass([]int{0, 1, 2, 3, 4, 5, 6, 7}, []int{1, 3, 5, 7}),
}

func xRangePass(xs, ys []int) []Point {
	pts := make([]Point, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			pts = append(pts, Point{x, y})
		}
	}
	return pts
}

// PassDimensions returns the width and height, in pixels, of the given
// pass (0-based, 0..6) for a full image of size w x h. Either dimension
// may be 0, meaning the pass is empty and should be skipped entirely.
func PassDimensions(pass int, w, h int) (pw, ph int) {
	offsets := Passes[pass]
	xs := map[int]bool{}
	ys := map[int]bool{}
	for _, p := range offsets {
		xs[p.X] = true
		ys[p.Y] = true
	}
	pw = countCovered(xs, w)
	ph = countCovered(ys, h)
	return pw, ph
}

// countCovered returns how many of the 0..n-1 coordinates are covered by
// at least one offset in offsets, when the 8-wide offset pattern repeats
// across the full extent n.
func countCovered(offsets map[int]bool, n int) int {
	full := n / 8
	rem := n % 8
	count := 0
	for off := range offsets {
		count += full
		if off < rem {
			count++
		}
	}
	return count
}

// Iterator returns a function mapping (pass, xInPass, yInPass) - the
// zero-based column/row within that pass's reduced image - to the
// absolute (x, y) pixel coordinate in the full w x h image.
func Iterator(w, h int) func(pass, x, y int) (int, int) {
	return func(pass, x, y int) (int, int) {
		offsets := Passes[pass]
		xs := sortedUnique(offsets, true)
		ys := sortedUnique(offsets, false)
		return mapCoord(xs, x), mapCoord(ys, y)
	}
}

func sortedUnique(offsets []Point, wantX bool) []int {
	seen := map[int]bool{}
	var vals []int
	for _, p := range offsets {
		v := p.Y
		if wantX {
			v = p.X
		}
		if !seen[v] {
			seen[v] = true
			vals = append(vals, v)
		}
	}
	// insertion order in Passes is already ascending for every entry above
	return vals
}

// mapCoord maps the i-th occurrence (0-based, across repeated 8-blocks) of
// one of the given within-block offsets back to an absolute coordinate.
func mapCoord(offsets []int, i int) int {
	n := len(offsets)
	block := i / n
	off := offsets[i%n]
	return block*8 + off
}
