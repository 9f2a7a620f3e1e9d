package stitch

import "fmt"

// Signature is a compact per-row brightness summary of a frame's luma
// plane: one averaged column value per cropped row per sample group. It is
// the only data the offset search ever compares.
type Signature struct {
	rows   int
	groups int
	v      []float64 // rows*groups, row-major
}

// Rows returns the number of cropped rows covered by the signature.
func (s *Signature) Rows() int { return s.rows }

// DefaultSampleColumns partitions the width into three small column groups
// around the first quarter, the middle and right of center. The edges are
// avoided on purpose: scrollbars and window chrome live there.
func DefaultSampleColumns(width int) [][]int {
	return [][]int{
		linspace(20, width/4, 3),
		linspace(width/2, 5*width/8, 3),
		linspace(6*width/8, 7*width/8, 3),
	}
}

// validateColumns rejects sample columns that fall outside the plane. The
// default groups anchor at column 20, so frames narrower than 21 pixels
// cannot be aligned with them.
func validateColumns(cols [][]int, width int) error {
	for _, group := range cols {
		for _, c := range group {
			if c < 0 || c >= width {
				return fmt.Errorf("%w: sample column %d outside frame width %d",
					ErrMalformedFrameData, c, width)
			}
		}
	}
	return nil
}

// linspace returns n integers evenly spaced from start to stop inclusive,
// truncating intermediate values toward zero.
func linspace(start, stop, n int) []int {
	out := make([]int, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := float64(stop-start) / float64(n-1)
	for i := range out {
		out[i] = int(float64(start) + step*float64(i))
	}
	return out
}

// SampleSignature reduces one height×width luma plane, restricted to rows
// [cropTop, height-cropBottom), to its signature. Pure function of its
// inputs; every column index in cols must be below width.
func SampleSignature(plane []byte, width, height, cropTop, cropBottom int, cols [][]int) *Signature {
	rows := height - cropTop - cropBottom
	sig := &Signature{rows: rows, groups: len(cols), v: make([]float64, rows*len(cols))}
	for r := 0; r < rows; r++ {
		rowOff := (cropTop + r) * width
		for g, group := range cols {
			var sum float64
			for _, c := range group {
				sum += float64(plane[rowOff+c])
			}
			sig.v[r*sig.groups+g] = sum / float64(len(group))
		}
	}
	return sig
}
