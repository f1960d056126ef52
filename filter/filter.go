package filter

import "github.com/pkg/errors"

// Type identifies one of the five PNG scanline filters.
type Type byte

const (
	None      Type = 0
	Sub       Type = 1
	Up        Type = 2
	Avg       Type = 3
	PaethType Type = 4

	// Adaptive is not a wire filter type; it names minimal-sum selection
	// per scanline. Encode does not read this value: it selects adaptive
	// filtering when EncodeOptions.FilterType is negative.
	Adaptive Type = 0xFF
)

// ErrBadFilterType reports a scanline filter byte outside 0..4.
var ErrBadFilterType = errors.New("png: scanline filter byte not in 0..4")

// Reverse undoes the filter applied to cur in place, given the previous
// (already-unfiltered) scanline prev and the byte distance used for the
// left/up-left references (1 for depth<8, bpp for depth 8, 2*bpp for
// depth 16). prev may be nil or all-zero for the first scanline of a pass.
func Reverse(ft Type, cur, prev []byte, dist int) error {
	switch ft {
	case None:
		// no-op
	case Sub:
		for i := dist; i < len(cur); i++ {
			cur[i] += cur[i-dist]
		}
	case Up:
		for i := range cur {
			cur[i] += upAt(prev, i)
		}
	case Avg:
		for i := 0; i < len(cur); i++ {
			left := 0
			if i >= dist {
				left = int(cur[i-dist])
			}
			up := int(upAt(prev, i))
			cur[i] += byte((left + up) / 2)
		}
	case PaethType:
		for i := 0; i < len(cur); i++ {
			var left, up, upLeft int
			if i >= dist {
				left = int(cur[i-dist])
			}
			up = int(upAt(prev, i))
			if i >= dist && len(prev) > i-dist {
				upLeft = int(prev[i-dist])
			}
			cur[i] += byte(Paeth(left, up, upLeft))
		}
	default:
		return errors.WithStack(ErrBadFilterType)
	}
	return nil
}

func upAt(prev []byte, i int) byte {
	if prev == nil || i >= len(prev) {
		return 0
	}
	return prev[i]
}

// Forward applies filter ft to raw (the unfiltered scanline), writing the
// filtered bytes into out (which must be the same length as raw). prev is
// the previous unfiltered scanline, or nil for the first row of a pass.
func Forward(ft Type, raw, prev []byte, dist int, out []byte) {
	switch ft {
	case None:
		copy(out, raw)
	case Sub:
		for i, v := range raw {
			left := byte(0)
			if i >= dist {
				left = raw[i-dist]
			}
			out[i] = v - left
		}
	case Up:
		for i, v := range raw {
			out[i] = v - upAt(prev, i)
		}
	case Avg:
		for i, v := range raw {
			left := 0
			if i >= dist {
				left = int(raw[i-dist])
			}
			up := int(upAt(prev, i))
			out[i] = v - byte((left+up)/2)
		}
	case PaethType:
		for i, v := range raw {
			var left, up, upLeft int
			if i >= dist {
				left = int(raw[i-dist])
			}
			up = int(upAt(prev, i))
			if i >= dist && prev != nil && len(prev) > i-dist {
				upLeft = int(prev[i-dist])
			}
			out[i] = v - byte(Paeth(left, up, upLeft))
		}
	}
}

// ChooseFilter picks the filter type whose forward-filtered row has the
// smallest sum of |signed byte| values, per the PNG spec's recommended
// heuristic. It returns the chosen type and the filtered bytes, which are
// always freshly allocated; scratch is not used.
func ChooseFilter(raw, prev []byte, dist int, scratch []byte) (Type, []byte) {
	candidates := []Type{None, Sub, Up, Avg, PaethType}
	var best Type
	var bestSum int
	var bestBytes []byte

	row := make([]byte, len(raw))
	for i, ft := range candidates {
		Forward(ft, raw, prev, dist, row)
		sum := sumAbsSigned(row)
		if i == 0 || sum < bestSum {
			best = ft
			bestSum = sum
			bestBytes = append(bestBytes[:0], row...)
		}
	}
	return best, bestBytes
}

func sumAbsSigned(row []byte) int {
	sum := 0
	for _, b := range row {
		v := int(int8(b))
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum
}
