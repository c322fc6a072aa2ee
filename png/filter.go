package png

import (
	"fmt"

	"github.com/cocosip/go-raster-codec/codec"
)

// Filter type, as per the PNG spec.
const (
	FilterNone    = 0
	FilterSub     = 1
	FilterUp      = 2
	FilterAverage = 3
	FilterPaeth   = 4

	// FilterAuto selects a filter per row by the minimum-sum heuristic
	FilterAuto = -1

	nFilter = 5
)

// paeth returns the PNG Paeth predictor: whichever of a (left), b (above)
// or c (upper left) is closest to a+b-c, ties resolved a, then b, then c.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// unfilterRow reconstructs one scanline in place. cur holds the filtered
// bytes of the row, prior the already-reconstructed previous row (all
// zero for the first row). All arithmetic wraps modulo 256.
func unfilterRow(ft byte, cur, prior []byte, bpp int) error {
	switch ft {
	case FilterNone:
		// No-op.
	case FilterSub:
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case FilterUp:
		for i, p := range prior {
			cur[i] += p
		}
	case FilterAverage:
		for i := 0; i < bpp && i < len(cur); i++ {
			cur[i] += prior[i] / 2
		}
		for i := bpp; i < len(cur); i++ {
			cur[i] += byte((int(cur[i-bpp]) + int(prior[i])) / 2)
		}
	case FilterPaeth:
		for i := 0; i < bpp && i < len(cur); i++ {
			cur[i] += prior[i] // paeth(0, b, 0) == b
		}
		for i := bpp; i < len(cur); i++ {
			cur[i] += paeth(cur[i-bpp], prior[i], prior[i-bpp])
		}
	default:
		return fmt.Errorf("png: filter byte %d: %w", ft, codec.ErrInvalidFilterType)
	}
	return nil
}

// filterRow applies the forward filter ft to cur, writing into dst.
// prior is the raw previous row (all zero for the first row).
func filterRow(ft byte, dst, cur, prior []byte, bpp int) {
	switch ft {
	case FilterNone:
		copy(dst, cur)
	case FilterSub:
		copy(dst[:bpp], cur[:min(bpp, len(cur))])
		for i := bpp; i < len(cur); i++ {
			dst[i] = cur[i] - cur[i-bpp]
		}
	case FilterUp:
		for i := range cur {
			dst[i] = cur[i] - prior[i]
		}
	case FilterAverage:
		for i := 0; i < bpp && i < len(cur); i++ {
			dst[i] = cur[i] - prior[i]/2
		}
		for i := bpp; i < len(cur); i++ {
			dst[i] = cur[i] - byte((int(cur[i-bpp])+int(prior[i]))/2)
		}
	case FilterPaeth:
		for i := 0; i < bpp && i < len(cur); i++ {
			dst[i] = cur[i] - prior[i]
		}
		for i := bpp; i < len(cur); i++ {
			dst[i] = cur[i] - paeth(cur[i-bpp], prior[i], prior[i-bpp])
		}
	}
}

// chooseFilter picks the filter minimizing the sum of absolute filtered
// values interpreted as signed bytes, reusing dst as scratch. Rows that
// compress well tend to score low under this heuristic.
func chooseFilter(dst, cur, prior []byte, bpp int) byte {
	best := FilterNone
	bestScore := -1
	for ft := 0; ft < nFilter; ft++ {
		filterRow(byte(ft), dst, cur, prior, bpp)
		score := 0
		for _, v := range dst {
			score += abs(int(int8(v)))
		}
		if bestScore < 0 || score < bestScore {
			best = ft
			bestScore = score
		}
	}
	return byte(best)
}
