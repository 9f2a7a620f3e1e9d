package stitch

// Params are the user-facing tuning knobs of a conversion. CropTop,
// CropBottom, ExpectOffset and MinOverlap accept either a fraction of the
// scroll-axis extent (values below 1) or an absolute pixel count (values of
// 1 and above).
type Params struct {
	CropTop      float64
	CropBottom   float64
	ExpectOffset float64
	MinOverlap   float64
	ApproxDiff   float64
	Transpose    bool
	SeamWidth    int
	Verbose      bool
}

// DefaultParams returns the tuning defaults: crop 15% off both edges,
// expect a scroll of 30% of the height per alignment, require 15% overlap.
func DefaultParams() Params {
	return Params{
		CropTop:      0.15,
		CropBottom:   0.15,
		ExpectOffset: 0.3,
		MinOverlap:   0.15,
		ApproxDiff:   1.0,
	}
}

// Options is the integer-resolved configuration the engine works with.
// Transpose does not appear here: orientation is the caller's concern, the
// engine always aligns along the row axis.
type Options struct {
	CropTop      int
	CropBottom   int
	ExpectOffset int
	MinOverlap   int
	ApproxDiff   float64
	SeamWidth    int

	// SampleColumns overrides the column groups used for signatures.
	// When nil, DefaultSampleColumns of the frame width is used.
	SampleColumns [][]int

	Verbose bool
}

// Resolve converts the params to absolute pixel counts against the
// scroll-axis extent. This happens exactly once, at the boundary; the
// engine's internal contract is integer-only.
func (p Params) Resolve(height int) Options {
	return Options{
		CropTop:      toPixels(p.CropTop, height),
		CropBottom:   toPixels(p.CropBottom, height),
		ExpectOffset: toPixels(p.ExpectOffset, height),
		MinOverlap:   toPixels(p.MinOverlap, height),
		ApproxDiff:   p.ApproxDiff,
		SeamWidth:    p.SeamWidth,
		Verbose:      p.Verbose,
	}
}

func toPixels(v float64, extent int) int {
	if v < 1 {
		return int(v * float64(extent))
	}
	return int(v)
}
